package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-io/ticketdesk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tickets  *handlers.TicketsHandler
	Classify *handlers.ClassifyHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Post("/classify", cfg.Classify.Classify)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
}
