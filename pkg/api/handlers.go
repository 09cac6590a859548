package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

// view returns the active query layer, or reports 503 when no
// configuration has been loaded yet.
func (s *Server) view(w http.ResponseWriter) *ltm.LTM {
	l := s.store.LTM()
	if l == nil {
		writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
	}
	return l
}

// pathName recovers a slash-qualified entity name from a wildcard path
// segment: the router strips the leading slash of "/Common/web-pool".
func pathName(r *http.Request) string {
	name := r.PathValue("name")
	if strings.Contains(name, "/") && !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Uptime:     time.Since(s.startTime).Truncate(time.Second).String(),
		ConfigFile: s.store.Path(),
		Generation: s.store.Generation(),
	}
	if l := s.store.LTM(); l != nil {
		resp.ConfigLoaded = true
		resp.LoadedAt = s.store.LoadedAt().UTC().Format(time.RFC3339)
		resp.Nodes = len(l.Nodes())
		resp.Pools = len(l.Pools())
		resp.VirtualServers = len(l.VirtualServers())
		resp.Rules = len(l.Rules())
		resp.SSLProfiles = len(l.SSLProfiles())
		resp.Monitors = len(l.Monitors())
	}
	writeOK(w, resp)
}

func (s *Server) nodesHandler(w http.ResponseWriter, _ *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	writeOK(w, l.Nodes())
}

func (s *Server) poolsHandler(w http.ResponseWriter, _ *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	writeOK(w, l.Pools())
}

func (s *Server) poolHandler(w http.ResponseWriter, r *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	name := pathName(r)

	if base, ok := strings.CutSuffix(name, "/members"); ok && l.Pool(base) != nil {
		members, err := l.PoolMembers(base)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeOK(w, members)
		return
	}

	p := l.Pool(name)
	if p == nil {
		writeError(w, http.StatusNotFound, "pool not found: "+name)
		return
	}
	writeOK(w, p)
}

func (s *Server) virtualServersHandler(w http.ResponseWriter, _ *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	writeOK(w, l.VirtualServers())
}

func (s *Server) virtualServerHandler(w http.ResponseWriter, r *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	name := pathName(r)
	vs := l.VirtualServer(name)
	if vs == nil {
		writeError(w, http.StatusNotFound, "virtual server not found: "+name)
		return
	}
	writeOK(w, vs)
}

func (s *Server) rulesHandler(w http.ResponseWriter, _ *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	writeOK(w, l.Rules())
}

func (s *Server) ruleHandler(w http.ResponseWriter, r *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	name := pathName(r)
	rule := l.Rule(name)
	if rule == nil {
		writeError(w, http.StatusNotFound, "rule not found: "+name)
		return
	}
	writeOK(w, rule)
}

func (s *Server) sslProfilesHandler(w http.ResponseWriter, _ *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	writeOK(w, l.SSLProfiles())
}

func (s *Server) chainsHandler(w http.ResponseWriter, _ *http.Request) {
	l := s.view(w)
	if l == nil {
		return
	}
	chains, err := l.Chains()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, chains)
}

func (s *Server) reloadHandler(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Load(); err != nil {
		slog.Error("configuration reload failed", "err", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	slog.Info("configuration reloaded", "generation", s.store.Generation())
	writeOK(w, ReloadResponse{
		Generation: s.store.Generation(),
		LoadedAt:   s.store.LoadedAt().UTC().Format(time.RFC3339),
	})
}
