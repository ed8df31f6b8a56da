package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
)

// Service is the domain service for the search feature.
type Service struct {
	store catalog.Store
}

// NewService creates a new search service.
func NewService(store catalog.Store) *Service {
	return &Service{store: store}
}

// SearchAll runs a raw query against the whole library. A blank query short
// circuits to an empty result without touching the database.
func (s *Service) SearchAll(ctx context.Context, raw string) (*catalog.SearchResult, error) {
	slog.Debug("SearchAll service called", "query", raw)

	if strings.TrimSpace(raw) == "" {
		return &catalog.SearchResult{Songs: []*catalog.Song{}, Suggestions: []string{}}, nil
	}
	q := catalog.ParseQuery(raw)
	if q.IsEmpty() {
		return &catalog.SearchResult{Songs: []*catalog.Song{}, Suggestions: []string{}}, nil
	}

	result, err := s.store.SearchAll(ctx, q)
	if err != nil {
		slog.Error("SearchAll failed", "query", raw, "error", err)
		return nil, err
	}
	return result, nil
}

// SearchPlaylist runs a raw query scoped to one playlist. Unlike the global
// search a blank query returns the whole playlist in membership order.
func (s *Service) SearchPlaylist(ctx context.Context, playlist, raw string) (*catalog.SearchResult, error) {
	slog.Debug("SearchPlaylist service called", "playlist", playlist, "query", raw)

	result, err := s.store.SearchPlaylist(ctx, playlist, catalog.ParseQuery(raw))
	if err != nil {
		slog.Error("SearchPlaylist failed", "playlist", playlist, "error", err)
		return nil, err
	}
	return result, nil
}
