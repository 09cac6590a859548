package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veepee-oss/f5-reader/pkg/store"
)

const fixture = `ltm node /Common/web1 {
    address 10.0.1.1
}
ltm node /Common/web2 {
    address 10.0.1.2
}
ltm pool /Common/web-pool {
    members {
        /Common/web1:80 { }
        /Common/web2:80 { }
    }
}
ltm rule /Common/redirect {
    when HTTP_REQUEST {
        HTTP::redirect "https://[HTTP::host][HTTP::uri]"
    }
}
ltm virtual /Common/web-vs {
    destination /Common/192.0.2.10:443
    pool /Common/web-pool
}
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bigip.conf")
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}
	st := store.New(path)
	if err := st.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewServer(Config{Addr: "127.0.0.1:0", Store: st}), path
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("GET %s: bad body %q: %v", path, rec.Body.String(), err)
	}
	return rec, resp
}

func TestEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/api/v1/status", http.StatusOK},
		{"/api/v1/nodes", http.StatusOK},
		{"/api/v1/pools", http.StatusOK},
		{"/api/v1/pools/Common/web-pool", http.StatusOK},
		{"/api/v1/pools/Common/web-pool/members", http.StatusOK},
		{"/api/v1/pools/Common/no-such-pool", http.StatusNotFound},
		{"/api/v1/virtual-servers", http.StatusOK},
		{"/api/v1/virtual-servers/Common/web-vs", http.StatusOK},
		{"/api/v1/rules", http.StatusOK},
		{"/api/v1/rules/Common/redirect", http.StatusOK},
		{"/api/v1/ssl-profiles", http.StatusOK},
		{"/api/v1/chains", http.StatusOK},
	}

	for _, tt := range tests {
		rec, resp := get(t, s, tt.path)
		if rec.Code != tt.want {
			t.Errorf("GET %s: got %d, want %d", tt.path, rec.Code, tt.want)
		}
		if (rec.Code == http.StatusOK) != resp.Success {
			t.Errorf("GET %s: success=%v with status %d", tt.path, resp.Success, rec.Code)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	s, _ := newTestServer(t)

	_, resp := get(t, s, "/api/v1/status")
	raw, _ := json.Marshal(resp.Data)
	var st StatusResponse
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatal(err)
	}
	if !st.ConfigLoaded {
		t.Error("ConfigLoaded = false")
	}
	if st.Nodes != 2 || st.Pools != 1 || st.VirtualServers != 1 || st.Rules != 1 {
		t.Errorf("counts: %+v", st)
	}
	if st.Generation != 1 {
		t.Errorf("generation: got %d, want 1", st.Generation)
	}
}

func TestPoolMembersEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	_, resp := get(t, s, "/api/v1/pools/Common/web-pool/members")
	raw, _ := json.Marshal(resp.Data)
	var members []struct {
		Address string `json:"address"`
		Port    string `json:"port"`
	}
	if err := json.Unmarshal(raw, &members); err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].Address != "10.0.1.1" || members[0].Port != "80" {
		t.Errorf("first member: %+v", members[0])
	}
}

func TestReload(t *testing.T) {
	s, path := newTestServer(t)

	extended := fixture + "ltm node /Common/web3 {\n    address 10.0.1.3\n}\n"
	if err := os.WriteFile(path, []byte(extended), 0644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload: got %d: %s", rec.Code, rec.Body.String())
	}

	_, resp := get(t, s, "/api/v1/nodes")
	raw, _ := json.Marshal(resp.Data)
	var nodes []json.RawMessage
	if err := json.Unmarshal(raw, &nodes); err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Errorf("after reload: got %d nodes, want 3", len(nodes))
	}
}

func TestReloadBadConfig(t *testing.T) {
	s, path := newTestServer(t)

	if err := os.WriteFile(path, []byte("ltm node /Common/x {\n"), 0644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("reload: got %d, want 422", rec.Code)
	}

	// previous topology stays queryable
	rec2, resp := get(t, s, "/api/v1/nodes")
	if rec2.Code != http.StatusOK || !resp.Success {
		t.Errorf("nodes after failed reload: status %d", rec2.Code)
	}
}

func TestNotLoaded(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "missing.conf"))
	s := NewServer(Config{Addr: "127.0.0.1:0", Store: st})

	rec, resp := get(t, s, "/api/v1/chains")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}
	if resp.Success || !strings.Contains(resp.Error, "not loaded") {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"f5reader_nodes 2",
		"f5reader_pools 1",
		"f5reader_virtual_servers 1",
		"f5reader_config_loads_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
