package core

import (
	"github.com/go-chi/cors"
)

// MountRoutes registers middleware and the read-only API surface. Write
// access to the tables stays with the daemon and the seed tool; the API
// only exposes what operators need to inspect.
func (s *Server) MountRoutes() {
	r := s.router

	r.Use(s.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger(s.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.Config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/locations", s.handleListLocations)
	r.Get("/locations/{buildingCode}", s.handleGetLocation)
	r.Get("/weather-alerts", s.handleListRules)
	r.Get("/interventions", s.handleListInterventions)
	r.Get("/results", s.handleListResults)
	r.Get("/dashboard", s.handleDashboard)
}
