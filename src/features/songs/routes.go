package songs

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the songs feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/songs/query", handler.GetSongs)
	app.Put("/songs/markers", handler.SaveMarkers)
	app.Post("/songs/accent", handler.GetAccentColor)
	app.Patch("/songs/details", handler.UpdateDetails)
	app.Delete("/songs", handler.DeleteSongs)
	app.Put("/songs/cover", handler.ChangeCover)
	app.Post("/songs/import/candidates", handler.ImportCandidates)
	app.Post("/songs/import", handler.ImportFiles)
}
