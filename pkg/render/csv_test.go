package render

import (
	"strings"
	"testing"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

func TestCSV(t *testing.T) {
	chains := []*ltm.Chain{
		{
			Partition:  "Common",
			Name:       "web-vs",
			VIP:        "192.0.2.10",
			Port:       "443",
			SSLProfile: "/Common/web-ssl",
			PoolName:   "/Common/web-pool",
			Nodes: []*ltm.PoolMember{
				{Address: "10.0.1.1", Port: "80", Description: "front web 1"},
				{Address: "10.0.1.2", Port: "80"},
			},
		},
		{Name: "bare-vs", VIP: "192.0.2.12", Port: "8080"},
	}

	var b strings.Builder
	if err := CSV(&b, chains); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3:\n%s", len(lines), b.String())
	}
	if lines[0] != "Product name;VIP name;VIP;Port;SSL profile;Pool name;Nodes" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "10.0.1.1:80 (front web 1), 10.0.1.2:80 ()") {
		t.Errorf("nodes column = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], ";bare-vs;192.0.2.12;8080;;;") {
		t.Errorf("bare record = %q", lines[2])
	}
}

func TestCSVEnrichmentColumns(t *testing.T) {
	chains := []*ltm.Chain{
		{Name: "web-vs", VIP: "192.0.2.10", PublicIP: "203.0.113.10", FQDNs: []string{"web.example.com"}},
		{Name: "db-vs", VIP: "192.0.2.11"},
	}
	var b strings.Builder
	if err := CSV(&b, chains); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if !strings.HasSuffix(lines[0], ";Public IP;FQDNs") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], ";203.0.113.10;web.example.com") {
		t.Errorf("record = %q", lines[1])
	}
	// Chains without enrichment still get the empty columns.
	if !strings.HasSuffix(lines[2], ";;") {
		t.Errorf("record = %q", lines[2])
	}
}
