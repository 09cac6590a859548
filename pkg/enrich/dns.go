package enrich

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

// Resolver maps an IP address to the DNS names pointing at it. A nil
// result with nil error means the address is simply unknown.
type Resolver interface {
	Lookup(ip string) ([]string, error)
}

// FileResolver resolves IPs from a JSON file mapping IP -> FQDN list. The
// file is read once on first use and cached on the resolver; callers own
// the resolver and thereby the cache lifetime.
type FileResolver struct {
	Path  string
	table map[string][]string
}

// Lookup returns the FQDNs recorded for ip, loading the file on first
// call.
func (r *FileResolver) Lookup(ip string) ([]string, error) {
	if r.table == nil {
		data, err := os.ReadFile(r.Path)
		if err != nil {
			return nil, fmt.Errorf("read dns file: %w", err)
		}
		if err := json.Unmarshal(data, &r.table); err != nil {
			return nil, fmt.Errorf("parse dns file %s: %w", r.Path, err)
		}
	}
	return r.table[ip], nil
}

// PowerDNSResolver resolves IPs through a PowerDNS API's search-data
// endpoint.
type PowerDNSResolver struct {
	BaseURL  string
	APIKey   string
	Insecure bool // skip TLS verification, some installs run self-signed

	client *http.Client
}

func (r *PowerDNSResolver) httpClient() *http.Client {
	if r.client == nil {
		r.client = &http.Client{Timeout: 10 * time.Second}
		if r.Insecure {
			r.client.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}
	return r.client
}

// Lookup queries the PowerDNS search API for records pointing at ip.
// Responses that are not valid JSON yield no names, not an error.
func (r *PowerDNSResolver) Lookup(ip string) ([]string, error) {
	u := fmt.Sprintf("%s/search-data?q=%s", r.BaseURL, url.QueryEscape(ip))
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", r.APIKey)

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("powerdns query: %w", err)
	}
	defer resp.Body.Close()

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// FQDNs fills each chain's FQDN list from the resolver. Lookup failures
// leave the chain untouched; enrichment is best-effort.
func FQDNs(r Resolver, chains []*ltm.Chain) {
	for _, c := range chains {
		if c.VIP == "" {
			continue
		}
		names, err := r.Lookup(c.VIP)
		if err != nil || len(names) == 0 {
			continue
		}
		c.FQDNs = names
	}
}
