package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veepee-oss/f5-reader/pkg/store"
)

// Config configures the API server.
type Config struct {
	Addr  string
	Auth  *AuthConfig // nil = no authentication
	Store *store.Store
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	startTime  time.Time
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()

	// Health + metrics
	mux.HandleFunc("GET /health", s.healthHandler)

	// Prometheus metrics with isolated registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(s))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// REST API v1. Entity names are slash-qualified ("/Common/web-pool"),
	// so the name segments are trailing wildcards.
	mux.HandleFunc("GET /api/v1/status", s.statusHandler)
	mux.HandleFunc("GET /api/v1/nodes", s.nodesHandler)
	mux.HandleFunc("GET /api/v1/pools", s.poolsHandler)
	mux.HandleFunc("GET /api/v1/pools/{name...}", s.poolHandler)
	mux.HandleFunc("GET /api/v1/virtual-servers", s.virtualServersHandler)
	mux.HandleFunc("GET /api/v1/virtual-servers/{name...}", s.virtualServerHandler)
	mux.HandleFunc("GET /api/v1/rules", s.rulesHandler)
	mux.HandleFunc("GET /api/v1/rules/{name...}", s.ruleHandler)
	mux.HandleFunc("GET /api/v1/ssl-profiles", s.sslProfilesHandler)
	mux.HandleFunc("GET /api/v1/chains", s.chainsHandler)

	// Mutations
	mux.HandleFunc("POST /api/v1/reload", s.reloadHandler)

	var handler http.Handler = mux
	if cfg.Auth != nil {
		handler = authMiddleware(*cfg.Auth, mux)
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	return s
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the configured handler chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
