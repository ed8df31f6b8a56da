package search

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/features/songs"
)

// Handler is the handler for the search feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the search feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Search runs a query against the library, optionally scoped to a playlist.
func (h *Handler) Search(c *fiber.Ctx) error {
	var req struct {
		Query    string `json:"query"`
		Playlist string `json:"playlist"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var result *catalog.SearchResult
	var err error
	if req.Playlist != "" {
		result, err = h.service.SearchPlaylist(c.Context(), req.Playlist, req.Query)
	} else {
		result, err = h.service.SearchAll(c.Context(), req.Query)
	}
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(result)
}
