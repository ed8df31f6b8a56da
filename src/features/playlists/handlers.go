package playlists

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/features/songs"
)

// Handler is the handler for the playlists feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the playlists feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetInitialData returns the full startup snapshot.
func (h *Handler) GetInitialData(c *fiber.Ctx) error {
	slog.Debug("GetInitialData handler called")

	data, err := h.service.InitialData(c.Context())
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(data)
}

// SetActivePlaylist persists the playlist the UI switched to.
func (h *Handler) SetActivePlaylist(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.SetActivePlaylist(req.Name); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// CreatePlaylist creates a new empty playlist.
func (h *Handler) CreatePlaylist(c *fiber.Ctx) error {
	slog.Debug("CreatePlaylist handler called")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.CreatePlaylist(c.Context(), req.Name); err != nil {
		return songs.JSONError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RenamePlaylist renames a playlist.
func (h *Handler) RenamePlaylist(c *fiber.Ctx) error {
	slog.Debug("RenamePlaylist handler called")

	var req struct {
		OldName string `json:"oldName"`
		NewName string `json:"newName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.RenamePlaylist(c.Context(), req.OldName, req.NewName); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ReorderPlaylists reassigns playlist display order.
func (h *Handler) ReorderPlaylists(c *fiber.Ctx) error {
	var req struct {
		Order []string `json:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.ReorderPlaylists(c.Context(), req.Order); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// AddSongs appends songs to a playlist.
func (h *Handler) AddSongs(c *fiber.Ctx) error {
	slog.Debug("AddSongs handler called")

	var req struct {
		Playlist string            `json:"playlist"`
		Songs    []catalog.SongRef `json:"songs"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.AddSongs(c.Context(), req.Playlist, req.Songs); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ReorderSongs reassigns membership order within a playlist.
func (h *Handler) ReorderSongs(c *fiber.Ctx) error {
	var req struct {
		Playlist string   `json:"playlist"`
		Order    []string `json:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.ReorderSongs(c.Context(), req.Playlist, req.Order); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MoveSongs moves songs between playlists.
func (h *Handler) MoveSongs(c *fiber.Ctx) error {
	slog.Debug("MoveSongs handler called")

	var req struct {
		Source string   `json:"source"`
		Target string   `json:"target"`
		Paths  []string `json:"paths"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.MoveSongs(c.Context(), req.Source, req.Target, req.Paths); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeletePlaylist removes a playlist and sweeps orphaned songs.
func (h *Handler) DeletePlaylist(c *fiber.Ctx) error {
	slog.Debug("DeletePlaylist handler called")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.DeletePlaylist(c.Context(), req.Name); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
