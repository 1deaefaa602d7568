/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. zerolog:    Structured request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*       Base employee management
  /api/overhead-types/*  Cost pools and allocation workflows
  /api/settings/*        Global configuration
  /api/views/*           Pricing views and their overrides
  /api/effective         Effective dataset (?view=)
  /api/quotes/*          Computed pricing (?view=&breakdown=)
  /api/diagnostics       Allocation sum checks
  /api/scenarios/*       Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Base employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
		})

		// Overhead type and allocation routes
		r.Route("/overhead-types", func(r chi.Router) {
			r.Get("/", h.ListOverheadTypes)
			r.Post("/", h.SaveOverheadType)
			r.Get("/{id}", h.GetOverheadType)
			r.Post("/{id}/allocate/equal", h.AllocateEqually)
			r.Post("/{id}/allocate/proportional", h.AllocateProportionally)
			r.Post("/{id}/allocate/normalize", h.NormalizeAllocations)
		})

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.ListSettings)
			r.Post("/", h.SaveSetting)
		})

		// View and override routes
		r.Route("/views", func(r chi.Router) {
			r.Get("/", h.ListViews)
			r.Post("/", h.CreateView)
			r.Delete("/{id}", h.DeleteView)
			r.Put("/{id}/employees/{empID}/active", h.OverrideEmployeeActive)
			r.Put("/{id}/overhead-types/{typeID}/active", h.OverrideOverheadTypeActive)
			r.Put("/{id}/settings/{key}", h.OverrideSetting)
			r.Put("/{id}/allocations/{empID}/{typeID}", h.OverrideAllocation)
		})

		// Computation routes
		r.Get("/effective", h.GetEffective)
		r.Get("/quotes", h.GetQuotes)
		r.Get("/quotes/{category}", h.GetQuote)
		r.Get("/diagnostics", h.GetDiagnostics)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
