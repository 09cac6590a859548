// Package ltm exposes typed views over a parsed BigIP configuration tree:
// local-traffic entities, relational queries and the resolved
// virtual-server chains.
package ltm

import "strings"

// Node is a back-end endpoint.
type Node struct {
	Name        string `json:"name"`
	Partition   string `json:"partition,omitempty"`
	Address     string `json:"address"`
	RouteDomain string `json:"route_domain,omitempty"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
	Session     string `json:"session,omitempty"`
	Monitor     string `json:"monitor,omitempty"`
}

// Pool is a named group of back-end endpoints.
type Pool struct {
	Name              string   `json:"name"`
	Monitor           string   `json:"monitor,omitempty"`
	LoadBalancingMode string   `json:"load_balancing_mode,omitempty"`
	Description       string   `json:"description,omitempty"`
	MemberTokens      []string `json:"member_tokens"`
}

// PoolMember is one resolved pool member: the decoded member token merged
// with the referenced node record.
type PoolMember struct {
	Token       string `json:"token"`
	Name        string `json:"name"`
	Partition   string `json:"partition,omitempty"`
	Address     string `json:"address"`
	RouteDomain string `json:"route_domain,omitempty"`
	Port        string `json:"port,omitempty"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
}

// VirtualServer is a load-balancer front-end entry.
type VirtualServer struct {
	Name         string   `json:"name"`
	Partition    string   `json:"partition,omitempty"`
	Destination  string   `json:"destination"`
	PoolName     string   `json:"pool,omitempty"`
	RuleNames    []string `json:"rules,omitempty"`
	ProfileNames []string `json:"profiles,omitempty"`
	IPProtocol   string   `json:"ip_protocol,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// SSLProfile is a client-ssl profile and its certificate reference.
type SSLProfile struct {
	Name         string `json:"name"`
	Cert         string `json:"cert,omitempty"`
	Key          string `json:"key,omitempty"`
	Chain        string `json:"chain,omitempty"`
	DefaultsFrom string `json:"defaults_from,omitempty"`
}

// Rule is a named iRule script, stored as opaque text.
type Rule struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Monitor is a health monitor, opaque beyond identity.
type Monitor struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	DefaultsFrom string `json:"defaults_from,omitempty"`
}

// Chain is the fully resolved record for one virtual server. PublicIP and
// FQDNs start empty and are filled in place by the enrichment steps.
type Chain struct {
	Partition   string        `json:"partition,omitempty"`
	Name        string        `json:"name"`
	VIP         string        `json:"vip"`
	Port        string        `json:"port,omitempty"`
	PoolName    string        `json:"pool,omitempty"`
	Nodes       []*PoolMember `json:"nodes"`
	SSLProfile  string        `json:"ssl_profile,omitempty"`
	Certificate string        `json:"certificate,omitempty"`
	Rules       []string      `json:"rules,omitempty"`
	PublicIP    string        `json:"public_ip,omitempty"`
	FQDNs       []string      `json:"fqdns,omitempty"`
}

// Unquote strips the surrounding double quotes of a parsed scalar field
// and unescapes embedded \" sequences.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s
}

// splitPartition splits a slash-qualified entity name into its partition
// and short name. Names without a partition yield an empty partition.
func splitPartition(name string) (partition, short string) {
	trimmed := strings.TrimPrefix(name, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[:i], trimmed[i+1:]
	}
	return "", name
}
