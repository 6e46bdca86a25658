/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Metrics:    Request count and latency per route pattern
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. RequestID:  Unique ID per request for tracing
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/*          Users
  /api/entries/*        Time entries
  /api/profiles/*       Capacity and working days
  /api/holidays/*       Holidays
  /api/time-off/*       Approved time off
  /api/overrides/*      Per-user overrides
  /api/settings         Feature flags and defaults
  /api/reports/*        Reports and CSV exports
  /api/scenarios/*      Demo scenarios
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(h.Metrics.Middleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.ImportEntries)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Put("/{userID}", h.PutProfile)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/time-off", func(r chi.Router) {
			r.Get("/", h.ListTimeOff)
			r.Post("/", h.CreateTimeOff)
			r.Delete("/{id}", h.DeleteTimeOff)
		})

		r.Route("/overrides", func(r chi.Router) {
			r.Get("/", h.ListOverrides)
			r.Put("/{userID}", h.PutOverride)
			r.Delete("/{userID}", h.DeleteOverride)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.PutSettings)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.GetReport)
			r.Post("/calculate", h.CalculateStateless)
			r.Get("/export.csv", h.ExportDetailCSV)
			r.Get("/summary.csv", h.ExportSummaryCSV)
			r.Get("/latest", h.LatestReport)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
