package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/ticket-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Dashboard *handlers.DashboardHandler
	Metrics   *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	sessions := app.Group("/dashboard/sessions")
	sessions.Post("/", cfg.Dashboard.CreateSession)
	sessions.Get("/:id", cfg.Dashboard.GetSession)
	sessions.Delete("/:id", cfg.Dashboard.DeleteSession)
	sessions.Put("/:id/filters", cfg.Dashboard.SetFilters)
	sessions.Delete("/:id/filters", cfg.Dashboard.ClearFilters)
	sessions.Put("/:id/page", cfg.Dashboard.SetPage)
	sessions.Post("/:id/refresh", cfg.Dashboard.Refresh)
	sessions.Post("/:id/selection", cfg.Dashboard.SelectTicket)
	sessions.Delete("/:id/selection", cfg.Dashboard.CloseSelection)
}
