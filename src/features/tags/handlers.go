package tags

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/features/songs"
)

// Handler is the handler for the tags feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the tags feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetCategoryTree returns every category with its tags.
func (h *Handler) GetCategoryTree(c *fiber.Ctx) error {
	tree, err := h.service.CategoryTree(c.Context())
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(tree)
}

// CreateTag creates a custom tag inside a category.
func (h *Handler) CreateTag(c *fiber.Ctx) error {
	slog.Debug("CreateTag handler called")

	var req struct {
		Name       string `json:"name"`
		CategoryID int64  `json:"categoryId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	tag, err := h.service.CreateTag(c.Context(), req.Name, req.CategoryID)
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// RenameTag renames a custom tag.
func (h *Handler) RenameTag(c *fiber.Ctx) error {
	slog.Debug("RenameTag handler called")

	var req struct {
		TagID   int64  `json:"tagId"`
		NewName string `json:"newName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.RenameTag(c.Context(), req.TagID, req.NewName); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteTag removes a tag.
func (h *Handler) DeleteTag(c *fiber.Ctx) error {
	slog.Debug("DeleteTag handler called")

	var req struct {
		TagID int64 `json:"tagId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.DeleteTag(c.Context(), req.TagID); err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MergeTags folds one tag into another.
func (h *Handler) MergeTags(c *fiber.Ctx) error {
	slog.Debug("MergeTags handler called")

	var req struct {
		SourceID int64 `json:"sourceId"`
		DestID   int64 `json:"destId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	result, err := h.service.MergeTags(c.Context(), req.SourceID, req.DestID)
	if err != nil {
		return songs.JSONError(c, err)
	}
	return c.JSON(result)
}
