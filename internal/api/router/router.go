package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/guardline/restoreaudit/internal/api/handlers"
	"github.com/guardline/restoreaudit/internal/api/middleware"
	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/pkg/metrics"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Health     *handlers.HealthHandler
	Assessment *handlers.AssessmentHandler
	Logger     *logger.Logger
}

// New builds the HTTP router with the full middleware chain.
func New(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	r.Use(rateLimiter.Middleware)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/assessments", deps.Assessment.Run)
		r.Get("/posture/latest", deps.Assessment.LatestPosture)
		r.Get("/snapshots", deps.Assessment.ListSnapshots)
		r.Get("/snapshots/{id}", deps.Assessment.GetSnapshot)
	})

	return r
}
