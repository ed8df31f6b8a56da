package downloading

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/features/songs"
)

// Handler is the handler for the downloading feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the downloading feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Probe lists the downloadable entries behind a URL.
func (h *Handler) Probe(c *fiber.Ctx) error {
	slog.Debug("Probe handler called")

	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	candidates, err := h.service.Probe(c.Context(), req.URL)
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(candidates)
}

// StartDownload queues a background download job.
func (h *Handler) StartDownload(c *fiber.Ctx) error {
	slog.Debug("StartDownload handler called")

	var req struct {
		URLs     []string `json:"urls"`
		Playlist string   `json:"playlist"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	jobID, err := h.service.StartDownload(req.URLs, req.Playlist)
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"jobId": jobID})
}
