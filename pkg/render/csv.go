// Package render formats resolved virtual-server chains for output.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

// CSV writes one semicolon-separated record per chain. The public IP and
// FQDN columns appear only when at least one chain carries enrichment
// data.
func CSV(w io.Writer, chains []*ltm.Chain) error {
	withPublicIP := false
	withFQDNs := false
	for _, c := range chains {
		if c.PublicIP != "" {
			withPublicIP = true
		}
		if len(c.FQDNs) > 0 {
			withFQDNs = true
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := []string{"Product name", "VIP name", "VIP", "Port", "SSL profile", "Pool name", "Nodes"}
	if withPublicIP {
		header = append(header, "Public IP")
	}
	if withFQDNs {
		header = append(header, "FQDNs")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, c := range chains {
		record := []string{
			"", // product name, filled by hand downstream
			c.Name,
			c.VIP,
			c.Port,
			c.SSLProfile,
			c.PoolName,
			nodesSummary(c.Nodes),
		}
		if withPublicIP {
			record = append(record, c.PublicIP)
		}
		if withFQDNs {
			record = append(record, strings.Join(c.FQDNs, ", "))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// nodesSummary renders a member list as "addr:port (description)" entries.
func nodesSummary(nodes []*ltm.PoolMember) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, fmt.Sprintf("%s:%s (%s)", n.Address, n.Port, n.Description))
	}
	return strings.Join(parts, ", ")
}
