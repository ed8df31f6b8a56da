package tags

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the tags feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/tags", handler.GetCategoryTree)
	app.Post("/tags", handler.CreateTag)
	app.Put("/tags/name", handler.RenameTag)
	app.Delete("/tags", handler.DeleteTag)
	app.Post("/tags/merge", handler.MergeTags)
}
