package metrics

import (
	"context"
	"log/slog"

	"github.com/zqily/FNote-v2/src/catalog"
)

// Service refreshes the library gauges from the catalog.
type Service struct {
	store catalog.Store
}

// NewService creates a new metrics service.
func NewService(store catalog.Store) *Service {
	return &Service{store: store}
}

// Refresh recomputes the library size gauges. Failures are logged and leave
// the previous values standing.
func (s *Service) Refresh(ctx context.Context) {
	if paths, err := s.store.AllSongPaths(ctx); err == nil {
		songsTotal.Set(float64(len(paths)))
	} else {
		slog.Warn("Metrics refresh: song count failed", "error", err)
	}

	if names, err := s.store.AllPlaylistNames(ctx); err == nil {
		playlistsTotal.Set(float64(len(names)))
	} else {
		slog.Warn("Metrics refresh: playlist count failed", "error", err)
	}

	if tree, err := s.store.CategoryTree(ctx); err == nil {
		count := 0
		for _, category := range tree {
			count += len(category.Tags)
		}
		tagsTotal.Set(float64(count))
	} else {
		slog.Warn("Metrics refresh: tag count failed", "error", err)
	}
}
