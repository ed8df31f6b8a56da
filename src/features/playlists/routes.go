package playlists

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the playlists feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/library", handler.GetInitialData)
	app.Put("/playlists/active", handler.SetActivePlaylist)
	app.Post("/playlists", handler.CreatePlaylist)
	app.Put("/playlists/name", handler.RenamePlaylist)
	app.Put("/playlists/order", handler.ReorderPlaylists)
	app.Post("/playlists/songs", handler.AddSongs)
	app.Put("/playlists/songs/order", handler.ReorderSongs)
	app.Put("/playlists/songs/move", handler.MoveSongs)
	app.Delete("/playlists", handler.DeletePlaylist)
}
