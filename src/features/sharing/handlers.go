package sharing

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/features/songs"
)

// Handler is the handler for the sharing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the sharing feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ExportArchive packs a playlist into a zip at the given destination.
func (h *Handler) ExportArchive(c *fiber.Ctx) error {
	slog.Debug("ExportArchive handler called")

	var req struct {
		Playlist string `json:"playlist"`
		DestPath string `json:"destPath"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.ExportArchive(c.Context(), req.Playlist, req.DestPath); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ExportM3U writes a playlist as an extended M3U file.
func (h *Handler) ExportM3U(c *fiber.Ctx) error {
	slog.Debug("ExportM3U handler called")

	var req struct {
		Playlist string `json:"playlist"`
		DestPath string `json:"destPath"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.ExportM3U(c.Context(), req.Playlist, req.DestPath); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ImportArchive unpacks a playlist archive into the library.
func (h *Handler) ImportArchive(c *fiber.Ctx) error {
	slog.Debug("ImportArchive handler called")

	var req struct {
		ArchivePath string `json:"archivePath"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	result, err := h.service.ImportArchive(c.Context(), req.ArchivePath)
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(result)
}
