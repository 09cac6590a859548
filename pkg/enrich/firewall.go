// Package enrich attaches firewall NAT and DNS information to resolved
// virtual-server chains. It only appends optional fields; it never touches
// the chains' node or pool sub-structures.
package enrich

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

// natRule is one NAT rule entry in the firewall export. Only the internal
// IP matters here; other fields are ignored.
type natRule struct {
	IPInt string `json:"ipInt"`
}

// PublicIPs reads a firewall NAT export (public IP -> NAT rules) and sets
// each chain's public IP where a rule's internal IP matches the chain VIP.
func PublicIPs(fwFile string, chains []*ltm.Chain) error {
	data, err := os.ReadFile(fwFile)
	if err != nil {
		return fmt.Errorf("read firewall file: %w", err)
	}
	var fw map[string][]natRule
	if err := json.Unmarshal(data, &fw); err != nil {
		return fmt.Errorf("parse firewall file %s: %w", fwFile, err)
	}

	byInternal := make(map[string]string)
	for pubIP, rules := range fw {
		for _, rule := range rules {
			if rule.IPInt != "" {
				byInternal[rule.IPInt] = pubIP
			}
		}
	}

	for _, c := range chains {
		if pub, ok := byInternal[c.VIP]; ok {
			c.PublicIP = pub
		}
	}
	return nil
}
