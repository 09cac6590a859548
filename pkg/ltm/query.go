package ltm

import (
	"fmt"
	"strings"

	"github.com/veepee-oss/f5-reader/pkg/config"
)

// LTM is a read-only query view over a parsed configuration tree. Lookups
// return nil when the entity does not exist; absence is not an error.
type LTM struct {
	tree *config.Tree
}

// New wraps a parsed tree.
func New(tree *config.Tree) *LTM {
	return &LTM{tree: tree}
}

// Tree returns the underlying configuration tree.
func (l *LTM) Tree() *config.Tree {
	return l.tree
}

func (l *LTM) section(keys ...string) *config.Value {
	return l.tree.Path(keys...)
}

// Nodes returns all nodes in declaration order.
func (l *LTM) Nodes() []*Node {
	sec := l.section("ltm", "node")
	nodes := make([]*Node, 0, sec.Len())
	for _, name := range sec.Keys() {
		nodes = append(nodes, nodeFrom(name, sec.Get(name)))
	}
	return nodes
}

// Node looks up a node by name.
func (l *LTM) Node(name string) *Node {
	v := l.section("ltm", "node").Get(name)
	if v == nil {
		return nil
	}
	return nodeFrom(name, v)
}

func nodeFrom(name string, v *config.Value) *Node {
	n := &Node{Name: name}
	n.Partition, _ = splitPartition(name)
	addr := v.Get("address").Text()
	if i := strings.Index(addr, "%"); i >= 0 {
		n.RouteDomain = addr[i+1:]
		addr = addr[:i]
	}
	n.Address = addr
	n.Description = Unquote(v.Get("description").Text())
	n.State = v.Get("state").Text()
	n.Session = v.Get("session").Text()
	n.Monitor = v.Get("monitor").Text()
	return n
}

// Pools returns all pools in declaration order.
func (l *LTM) Pools() []*Pool {
	sec := l.section("ltm", "pool")
	pools := make([]*Pool, 0, sec.Len())
	for _, name := range sec.Keys() {
		pools = append(pools, poolFrom(name, sec.Get(name)))
	}
	return pools
}

// Pool looks up a pool by name.
func (l *LTM) Pool(name string) *Pool {
	v := l.section("ltm", "pool").Get(name)
	if v == nil {
		return nil
	}
	return poolFrom(name, v)
}

func poolFrom(name string, v *config.Value) *Pool {
	p := &Pool{
		Name:              name,
		Monitor:           v.Get("monitor").Text(),
		LoadBalancingMode: v.Get("load-balancing-mode").Text(),
		Description:       Unquote(v.Get("description").Text()),
	}
	if members := v.Get("members"); members.Kind() == config.Mapping {
		p.MemberTokens = members.Keys()
	}
	return p
}

// PoolMembers resolves a pool's members: each member token is decoded and
// merged with the referenced node record. Node-record fields win; values
// declared on the pool member fill in only when the node record lacks
// them, for compatibility with older exports. A pool whose members field
// is the literal "none" resolves to an empty list.
func (l *LTM) PoolMembers(poolName string) ([]*PoolMember, error) {
	v := l.section("ltm", "pool").Get(poolName)
	if v == nil {
		return nil, nil
	}
	members := v.Get("members")
	if members.Kind() != config.Mapping {
		return nil, nil
	}

	resolved := make([]*PoolMember, 0, members.Len())
	for _, token := range members.Keys() {
		addr, err := ParseAddr(token)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", poolName, err)
		}
		m := &PoolMember{
			Token:       token,
			Name:        addr.Name,
			Partition:   addr.Partition,
			Address:     addr.Address,
			RouteDomain: addr.RouteDomain,
			Port:        addr.Port,
		}

		mv := members.Get(token)
		node := l.Node(addr.Name)
		if node != nil && node.Address != "" {
			m.Address = node.Address
			if node.RouteDomain != "" {
				m.RouteDomain = node.RouteDomain
			}
		} else if a := mv.Get("address").Text(); a != "" {
			if i := strings.Index(a, "%"); i >= 0 {
				m.RouteDomain = a[i+1:]
				a = a[:i]
			}
			m.Address = a
		}
		if node != nil && node.Description != "" {
			m.Description = node.Description
		} else {
			m.Description = Unquote(mv.Get("description").Text())
		}
		if node != nil && node.State != "" {
			m.State = node.State
		} else {
			m.State = mv.Get("state").Text()
		}

		resolved = append(resolved, m)
	}
	return resolved, nil
}

// PoolsForNode returns every pool with a member whose decoded name matches
// the given node name.
func (l *LTM) PoolsForNode(nodeName string) ([]*Pool, error) {
	var pools []*Pool
	for _, p := range l.Pools() {
		for _, token := range p.MemberTokens {
			addr, err := ParseAddr(token)
			if err != nil {
				return nil, fmt.Errorf("pool %s: %w", p.Name, err)
			}
			if addr.Name == nodeName {
				pools = append(pools, p)
				break
			}
		}
	}
	return pools, nil
}

// VirtualServers returns all virtual servers in declaration order.
func (l *LTM) VirtualServers() []*VirtualServer {
	sec := l.section("ltm", "virtual")
	vss := make([]*VirtualServer, 0, sec.Len())
	for _, name := range sec.Keys() {
		vss = append(vss, vsFrom(name, sec.Get(name)))
	}
	return vss
}

// VirtualServer looks up a virtual server by name.
func (l *LTM) VirtualServer(name string) *VirtualServer {
	v := l.section("ltm", "virtual").Get(name)
	if v == nil {
		return nil
	}
	return vsFrom(name, v)
}

func vsFrom(name string, v *config.Value) *VirtualServer {
	vs := &VirtualServer{Name: name}
	vs.Partition, _ = splitPartition(name)
	vs.Destination = v.Get("destination").Text()
	vs.PoolName = v.Get("pool").Text()
	vs.RuleNames = v.Get("rules").Keys()
	vs.ProfileNames = v.Get("profiles").Keys()
	vs.IPProtocol = v.Get("ip-protocol").Text()
	vs.Description = Unquote(v.Get("description").Text())
	return vs
}

// VirtualServersByPool returns the virtual servers whose pool is one of
// the given pool names.
func (l *LTM) VirtualServersByPool(poolNames []string) []*VirtualServer {
	set := make(map[string]bool, len(poolNames))
	for _, n := range poolNames {
		set[n] = true
	}
	var vss []*VirtualServer
	for _, vs := range l.VirtualServers() {
		if set[vs.PoolName] {
			vss = append(vss, vs)
		}
	}
	return vss
}

// SSLProfiles returns all client-ssl profiles in declaration order.
func (l *LTM) SSLProfiles() []*SSLProfile {
	sec := l.section("ltm", "profile", "client-ssl")
	profiles := make([]*SSLProfile, 0, sec.Len())
	for _, name := range sec.Keys() {
		profiles = append(profiles, sslFrom(name, sec.Get(name)))
	}
	return profiles
}

// SSLProfile looks up a client-ssl profile by name.
func (l *LTM) SSLProfile(name string) *SSLProfile {
	v := l.section("ltm", "profile", "client-ssl").Get(name)
	if v == nil {
		return nil
	}
	return sslFrom(name, v)
}

func sslFrom(name string, v *config.Value) *SSLProfile {
	p := &SSLProfile{
		Name:         name,
		Cert:         v.Get("cert").Text(),
		Key:          v.Get("key").Text(),
		Chain:        v.Get("chain").Text(),
		DefaultsFrom: v.Get("defaults-from").Text(),
	}
	if p.Cert == "" {
		// Newer exports carry the certificate inside cert-key-chain.
		ckc := v.Get("cert-key-chain")
		for _, k := range ckc.Keys() {
			e := ckc.Get(k)
			if c := e.Get("cert").Text(); c != "" {
				p.Cert = c
				if p.Key == "" {
					p.Key = e.Get("key").Text()
				}
				break
			}
		}
	}
	return p
}

// VirtualServerSSLProfile returns the first of a virtual server's declared
// profile names that resolves to a client-ssl profile, in declaration
// order, plus the profile itself. Both results are zero when none resolve.
func (l *LTM) VirtualServerSSLProfile(vsName string) (string, *SSLProfile) {
	vs := l.VirtualServer(vsName)
	if vs == nil {
		return "", nil
	}
	for _, name := range vs.ProfileNames {
		if p := l.SSLProfile(name); p != nil {
			return name, p
		}
	}
	return "", nil
}

// Rules returns all iRules in declaration order.
func (l *LTM) Rules() []*Rule {
	sec := l.section("ltm", "rule")
	rules := make([]*Rule, 0, sec.Len())
	for _, name := range sec.Keys() {
		rules = append(rules, &Rule{Name: name, Body: sec.Get(name).Raw()})
	}
	return rules
}

// Rule looks up an iRule by name.
func (l *LTM) Rule(name string) *Rule {
	v := l.section("ltm", "rule").Get(name)
	if v == nil {
		return nil
	}
	return &Rule{Name: name, Body: v.Raw()}
}

// Monitors returns all health monitors. Monitors sit one level deeper in
// the tree than the other entities (ltm monitor <type> <name>).
func (l *LTM) Monitors() []*Monitor {
	sec := l.section("ltm", "monitor")
	var monitors []*Monitor
	for _, typ := range sec.Keys() {
		byName := sec.Get(typ)
		for _, name := range byName.Keys() {
			monitors = append(monitors, monitorFrom(name, typ, byName.Get(name)))
		}
	}
	return monitors
}

// Monitor looks up a health monitor by name across all monitor types.
func (l *LTM) Monitor(name string) *Monitor {
	sec := l.section("ltm", "monitor")
	for _, typ := range sec.Keys() {
		if v := sec.Get(typ).Get(name); v != nil {
			return monitorFrom(name, typ, v)
		}
	}
	return nil
}

func monitorFrom(name, typ string, v *config.Value) *Monitor {
	return &Monitor{
		Name:         name,
		Type:         typ,
		DefaultsFrom: v.Get("defaults-from").Text(),
	}
}
