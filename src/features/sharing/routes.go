package sharing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the sharing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/share/export", handler.ExportArchive)
	app.Post("/share/export/m3u", handler.ExportM3U)
	app.Post("/share/import", handler.ImportArchive)
}
