package ltm

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrBadToken reports a member or destination token that does not match
// the node-string grammar. Entity identity cannot be established from such
// a token, so callers treat this as fatal.
var ErrBadToken = errors.New("malformed node token")

// Addr is a decoded node-string token of the form
// [[/]partition/]address[%route-domain][:port-or-service].
type Addr struct {
	Name        string // token without the trailing port part
	Partition   string
	Address     string
	RouteDomain string
	Port        string // numeric when resolvable, empty when absent
}

// ParseAddr decodes a node-string token. Service names that resolve in the
// host's service database become numeric ports; unresolvable names pass
// through literally.
func ParseAddr(token string) (Addr, error) {
	if token == "" {
		return Addr{}, fmt.Errorf("%w: empty token", ErrBadToken)
	}
	a := Addr{Name: token}
	rest := token

	if i := strings.Index(strings.TrimPrefix(rest, "/"), "/"); i >= 0 {
		trimmed := strings.TrimPrefix(rest, "/")
		a.Partition = trimmed[:i]
		rest = trimmed[i+1:]
		if a.Partition == "" || rest == "" {
			return Addr{}, fmt.Errorf("%w: %q", ErrBadToken, token)
		}
	}

	if i := strings.LastIndex(rest, ":"); i >= 0 {
		port := rest[i+1:]
		rest = rest[:i]
		if port == "" || rest == "" {
			return Addr{}, fmt.Errorf("%w: %q", ErrBadToken, token)
		}
		a.Port = resolvePort(port)
		a.Name = strings.TrimSuffix(token, ":"+port)
	}

	if i := strings.Index(rest, "%"); i >= 0 {
		a.RouteDomain = rest[i+1:]
		rest = rest[:i]
		if a.RouteDomain == "" || rest == "" {
			return Addr{}, fmt.Errorf("%w: %q", ErrBadToken, token)
		}
	}

	if rest == "" || strings.ContainsAny(rest, "/{}\" ") {
		return Addr{}, fmt.Errorf("%w: %q", ErrBadToken, token)
	}
	a.Address = rest
	return a, nil
}

// resolvePort maps a port token to its numeric form. Integers pass
// through; names are looked up as TCP services, falling back to the
// literal token when the environment cannot resolve them.
func resolvePort(tok string) string {
	if _, err := strconv.Atoi(tok); err == nil {
		return tok
	}
	if p, err := net.LookupPort("tcp", tok); err == nil {
		return strconv.Itoa(p)
	}
	return tok
}
