package songs

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/catalog"
)

// Handler is the handler for the songs feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the songs feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, catalog.ErrNameConflict), errors.Is(err, catalog.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, catalog.ErrImmutableTag), errors.Is(err, catalog.ErrInvalidOperation),
		errors.Is(err, catalog.ErrInvalidArchive):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// JSONError maps catalog sentinel errors onto HTTP statuses.
func JSONError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// GetSongs hydrates songs for the given paths.
func (h *Handler) GetSongs(c *fiber.Ctx) error {
	slog.Debug("GetSongs handler called")

	var req struct {
		Paths []string `json:"paths"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	songs, err := h.service.SongsByPaths(c.Context(), req.Paths)
	if err != nil {
		return JSONError(c, err)
	}
	return c.JSON(songs)
}

// SaveMarkers replaces a song's markers.
func (h *Handler) SaveMarkers(c *fiber.Ctx) error {
	slog.Debug("SaveMarkers handler called")

	var req struct {
		Path       string    `json:"path"`
		Timestamps []float64 `json:"timestamps"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.SaveMarkers(c.Context(), req.Path, req.Timestamps); err != nil {
		return JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetAccentColor returns (deriving if needed) a song's accent color.
func (h *Handler) GetAccentColor(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	color, err := h.service.EnsureAccentColor(c.Context(), req.Path)
	if err != nil {
		return JSONError(c, err)
	}
	return c.JSON(fiber.Map{"accentColor": color})
}

// UpdateDetails edits name/artist/tags for one or more songs.
func (h *Handler) UpdateDetails(c *fiber.Ctx) error {
	slog.Debug("UpdateDetails handler called")

	var req struct {
		Paths  []string              `json:"paths"`
		Update catalog.DetailsUpdate `json:"update"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	updated, err := h.service.UpdateDetails(c.Context(), req.Paths, req.Update)
	if err != nil {
		return JSONError(c, err)
	}
	return c.JSON(fiber.Map{"updatedSongsMap": updated})
}

// DeleteSongs removes songs and their media files.
func (h *Handler) DeleteSongs(c *fiber.Ctx) error {
	slog.Debug("DeleteSongs handler called")

	var req struct {
		Paths []string `json:"paths"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.DeleteSongs(c.Context(), req.Paths); err != nil {
		return JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ChangeCover installs a new cover image for a song.
func (h *Handler) ChangeCover(c *fiber.Ctx) error {
	slog.Debug("ChangeCover handler called")

	var req struct {
		Path      string `json:"path"`
		ImagePath string `json:"imagePath"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	song, err := h.service.ChangeCover(c.Context(), req.Path, req.ImagePath)
	if err != nil {
		return JSONError(c, err)
	}
	return c.JSON(song)
}

// ImportCandidates previews local files for import with duplicates marked.
func (h *Handler) ImportCandidates(c *fiber.Ctx) error {
	var req struct {
		Paths []string `json:"paths"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	candidates, err := h.service.ImportCandidates(c.Context(), req.Paths)
	if err != nil {
		return JSONError(c, err)
	}
	return c.JSON(candidates)
}

// ImportFiles imports local files into a playlist.
func (h *Handler) ImportFiles(c *fiber.Ctx) error {
	slog.Debug("ImportFiles handler called")

	var req struct {
		Paths    []string `json:"paths"`
		Playlist string   `json:"playlist"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	result, err := h.service.ImportFiles(c.Context(), req.Paths, req.Playlist)
	if err != nil {
		return JSONError(c, err)
	}
	return c.JSON(result)
}
