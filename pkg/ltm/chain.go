package ltm

import "fmt"

// Chains builds one fully resolved record per virtual server, in
// declaration order. Unresolved rule names pass through as their literal
// name; a missing pool or SSL profile leaves the corresponding fields
// empty. Records are independent of each other.
func (l *LTM) Chains() ([]*Chain, error) {
	vss := l.VirtualServers()
	chains := make([]*Chain, 0, len(vss))
	for _, vs := range vss {
		c := &Chain{}
		c.Partition, c.Name = splitPartition(vs.Name)

		if vs.Destination != "" {
			addr, err := ParseAddr(vs.Destination)
			if err != nil {
				return nil, fmt.Errorf("virtual server %s: %w", vs.Name, err)
			}
			c.VIP = addr.Address
			c.Port = addr.Port
		}

		if vs.PoolName != "" && vs.PoolName != "none" {
			c.PoolName = vs.PoolName
			members, err := l.PoolMembers(vs.PoolName)
			if err != nil {
				return nil, fmt.Errorf("virtual server %s: %w", vs.Name, err)
			}
			c.Nodes = members
		}

		if name, prof := l.VirtualServerSSLProfile(vs.Name); prof != nil {
			c.SSLProfile = name
			c.Certificate = prof.Cert
		}

		for _, rn := range vs.RuleNames {
			if r := l.Rule(rn); r != nil {
				c.Rules = append(c.Rules, r.Body)
			} else {
				c.Rules = append(c.Rules, rn)
			}
		}

		chains = append(chains, c)
	}
	return chains, nil
}
