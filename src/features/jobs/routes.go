package jobs

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the jobs feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/jobs", handler.ListJobs)
	app.Get("/jobs/:id", handler.GetJob)
	app.Post("/jobs/:id/cancel", handler.CancelJob)
}
