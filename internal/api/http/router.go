package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticket-report/internal/api/http/handlers"
	"github.com/spec-kit/ticket-report/internal/auth"
	"github.com/spec-kit/ticket-report/internal/observability"
)

// SharedReportsPath is the public prefix of share links.
const SharedReportsPath = "/shared/reports"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Reports *handlers.ReportsHandler
	APIKey  *auth.APIKeyMiddleware
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Get(SharedReportsPath+"/:token", cfg.Reports.Shared)

	api := app.Group("/api/v1", cfg.APIKey.Handle)
	reports := api.Group("/reports")
	reports.Post("/preview", cfg.Reports.Preview)
	reports.Post("/stats", cfg.Reports.Stats)
	reports.Get("/latest", cfg.Reports.Latest)
	reports.Post("/:client_id/generate", cfg.Reports.Generate)
	reports.Get("/:client_id/runs", cfg.Reports.ListRuns)
	reports.Post("/:client_id/share", cfg.Reports.Share)
}
