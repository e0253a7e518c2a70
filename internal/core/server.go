// Package core provides the read-only HTTP API over the monitoring data:
// locations, rules, interventions, evaluation results, and the per-site
// dashboard. It enforces cross-cutting concerns (recovery, request ids,
// logging, CORS) before requests reach the handlers.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"weatherguard/internal/config"
	"weatherguard/internal/store"
)

// Server bundles the API's dependencies so tests can inject their own.
type Server struct {
	Config *config.Config
	Store  *store.Store
	Logger *slog.Logger

	router *chi.Mux
}

// NewServer validates dependencies and prepares the router. The caller
// mounts routes afterwards, which lets tests customize registration.
func NewServer(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Store:  st,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}
