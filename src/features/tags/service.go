package tags

import (
	"context"
	"log/slog"

	"github.com/zqily/FNote-v2/src/catalog"
)

// Service is the domain service for the tags feature.
type Service struct {
	store catalog.Store
}

// NewService creates a new tags service.
func NewService(store catalog.Store) *Service {
	return &Service{store: store}
}

// CategoryTree returns every category with its tags.
func (s *Service) CategoryTree(ctx context.Context) ([]catalog.TagCategory, error) {
	slog.Debug("CategoryTree service called")

	tree, err := s.store.CategoryTree(ctx)
	if err != nil {
		slog.Error("CategoryTree failed", "error", err)
		return nil, err
	}
	return tree, nil
}

// CreateTag creates a custom tag inside a category.
func (s *Service) CreateTag(ctx context.Context, name string, categoryID int64) (*catalog.Tag, error) {
	slog.Debug("CreateTag service called", "name", name, "category", categoryID)

	tag, err := s.store.CreateTag(ctx, name, categoryID)
	if err != nil {
		slog.Error("CreateTag failed", "name", name, "error", err)
		return nil, err
	}
	return tag, nil
}

// RenameTag renames a custom tag. Default tags are immutable.
func (s *Service) RenameTag(ctx context.Context, tagID int64, newName string) error {
	slog.Debug("RenameTag service called", "tag", tagID, "name", newName)

	if err := s.store.RenameTag(ctx, tagID, newName); err != nil {
		slog.Error("RenameTag failed", "tag", tagID, "error", err)
		return err
	}
	return nil
}

// DeleteTag removes a tag and its song associations.
func (s *Service) DeleteTag(ctx context.Context, tagID int64) error {
	slog.Debug("DeleteTag service called", "tag", tagID)

	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		slog.Error("DeleteTag failed", "tag", tagID, "error", err)
		return err
	}
	return nil
}

// MergeTags folds the source tag into the destination tag.
func (s *Service) MergeTags(ctx context.Context, sourceID, destID int64) (*catalog.MergeResult, error) {
	slog.Debug("MergeTags service called", "source", sourceID, "dest", destID)

	result, err := s.store.MergeTags(ctx, sourceID, destID)
	if err != nil {
		slog.Error("MergeTags failed", "source", sourceID, "dest", destID, "error", err)
		return nil, err
	}
	slog.Info("MergeTags completed", "source", sourceID, "dest", destID, "updatedSongs", len(result.UpdatedSongs))
	return result, nil
}
