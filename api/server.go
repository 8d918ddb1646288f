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
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: Structured request logging via zap
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/resources/*     Resources and utilization
  /api/projects/*      Projects, financials, coverage, matches
  /api/allocations/*   Allocation CRUD
  /api/capacity/*      Capacity forecast
  /api/scenarios/*     What-if scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - scenarios.go: Scenario handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Resource routes
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.ListResources)
			r.Post("/", h.SaveResource)
			r.Get("/{id}", h.GetResource)
			r.Get("/{id}/utilization", h.GetUtilization)
		})

		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.SaveProject)
			r.Get("/{id}", h.GetProject)
			r.Get("/{id}/financials", h.GetProjectFinancials)
			r.Get("/{id}/skills-coverage", h.GetSkillsCoverage)
			r.Get("/{id}/matches", h.GetProjectMatches)
		})

		// Allocation routes
		r.Route("/allocations", func(r chi.Router) {
			r.Post("/", h.SaveAllocation)
			r.Delete("/{id}", h.DeleteAllocation)
		})

		// Capacity routes
		r.Route("/capacity", func(r chi.Router) {
			r.Get("/forecast", h.GetCapacityForecast)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/", h.CreateScenario)
			r.Post("/compare", h.CompareScenarios)
			r.Get("/{id}", h.GetScenario)
			r.Post("/{id}/changes/resource", h.RecordResourceChange)
			r.Post("/{id}/changes/timeline", h.RecordTimelineChange)
			r.Get("/{id}/metrics", h.GetMetrics)
			r.Post("/{id}/metrics", h.CalculateMetrics)
			r.Post("/{id}/promote", h.PromoteScenario)
		})

		// Demo data
		r.Post("/demo/load", h.LoadDemoData)
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
