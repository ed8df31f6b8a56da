package downloading

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the downloading feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/download/probe", handler.Probe)
	app.Post("/download", handler.StartDownload)
}
