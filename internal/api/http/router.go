package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Registry  *handlers.RegistryHandler
	Dashboard *handlers.DashboardHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/tickets", cfg.Tickets.Submit)
	app.Get("/tickets/:id", cfg.Tickets.Get)
	app.Post("/tickets/:id/escalate", cfg.Tickets.Escalate)
	app.Post("/tickets/:id/resolve", cfg.Tickets.Resolve)
	app.Post("/tickets/:id/reroute", cfg.Tickets.Reroute)

	app.Post("/agents", cfg.Registry.RegisterAgent)
	app.Get("/agents", cfg.Registry.ListAgents)
	app.Post("/agents/:id/release", cfg.Registry.ReleaseAgent)
	app.Post("/customers", cfg.Registry.RegisterCustomer)
	app.Post("/patterns", cfg.Registry.RegisterPattern)

	app.Get("/dashboard/summary", cfg.Dashboard.Summary)
}
