package playlists

import (
	"context"
	"log/slog"

	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/features/config"
)

// Service is the domain service for the playlists feature.
type Service struct {
	store         catalog.Store
	deleter       catalog.FileDeleter
	configManager *config.Manager
}

// NewService creates a new playlists service.
func NewService(store catalog.Store, deleter catalog.FileDeleter, cfgManager *config.Manager) *Service {
	return &Service{
		store:         store,
		deleter:       deleter,
		configManager: cfgManager,
	}
}

// InitialData returns the startup snapshot using the persisted active
// playlist, saving the fallback when the remembered one is gone.
func (s *Service) InitialData(ctx context.Context) (*catalog.InitialData, error) {
	slog.Debug("InitialData service called")

	remembered := s.configManager.Get().Player.ActivePlaylist
	data, err := s.store.InitialData(ctx, remembered)
	if err != nil {
		slog.Error("InitialData failed", "error", err)
		return nil, err
	}
	if data.ActivePlaylist != remembered {
		if err := s.configManager.SetActivePlaylist(data.ActivePlaylist); err != nil {
			slog.Warn("InitialData: could not persist active playlist", "error", err)
		}
	}
	return data, nil
}

// SetActivePlaylist persists the playlist the UI switched to.
func (s *Service) SetActivePlaylist(name string) error {
	slog.Debug("SetActivePlaylist service called", "name", name)
	return s.configManager.SetActivePlaylist(name)
}

// CreatePlaylist creates a new empty playlist.
func (s *Service) CreatePlaylist(ctx context.Context, name string) error {
	slog.Debug("CreatePlaylist service called", "name", name)

	if err := s.store.CreatePlaylist(ctx, name); err != nil {
		slog.Error("CreatePlaylist failed", "name", name, "error", err)
		return err
	}
	return nil
}

// RenamePlaylist renames a playlist, keeping the persisted active playlist
// in sync.
func (s *Service) RenamePlaylist(ctx context.Context, oldName, newName string) error {
	slog.Debug("RenamePlaylist service called", "old", oldName, "new", newName)

	if err := s.store.RenamePlaylist(ctx, oldName, newName); err != nil {
		slog.Error("RenamePlaylist failed", "old", oldName, "error", err)
		return err
	}
	if s.configManager.Get().Player.ActivePlaylist == oldName {
		if err := s.configManager.SetActivePlaylist(newName); err != nil {
			slog.Warn("RenamePlaylist: could not persist active playlist", "error", err)
		}
	}
	return nil
}

// ReorderPlaylists reassigns display order.
func (s *Service) ReorderPlaylists(ctx context.Context, nameOrder []string) error {
	slog.Debug("ReorderPlaylists service called", "count", len(nameOrder))

	if err := s.store.ReorderPlaylists(ctx, nameOrder); err != nil {
		slog.Error("ReorderPlaylists failed", "error", err)
		return err
	}
	return nil
}

// AddSongs appends songs to a playlist.
func (s *Service) AddSongs(ctx context.Context, playlist string, songs []catalog.SongRef) error {
	slog.Debug("AddSongs service called", "playlist", playlist, "count", len(songs))

	if err := s.store.AddSongs(ctx, playlist, songs); err != nil {
		slog.Error("AddSongs failed", "playlist", playlist, "error", err)
		return err
	}
	return nil
}

// ReorderSongs reassigns membership order within a playlist.
func (s *Service) ReorderSongs(ctx context.Context, playlist string, pathOrder []string) error {
	slog.Debug("ReorderSongs service called", "playlist", playlist, "count", len(pathOrder))

	if err := s.store.ReorderSongs(ctx, playlist, pathOrder); err != nil {
		slog.Error("ReorderSongs failed", "playlist", playlist, "error", err)
		return err
	}
	return nil
}

// MoveSongs moves songs between playlists atomically.
func (s *Service) MoveSongs(ctx context.Context, source, target string, paths []string) error {
	slog.Debug("MoveSongs service called", "source", source, "target", target, "count", len(paths))

	if err := s.store.MoveSongs(ctx, source, target, paths); err != nil {
		slog.Error("MoveSongs failed", "source", source, "target", target, "error", err)
		return err
	}
	return nil
}

// DeletePlaylist removes a playlist and deletes the files of songs orphaned
// by it. When the active playlist dies, the first remaining one takes over.
func (s *Service) DeletePlaylist(ctx context.Context, name string) error {
	slog.Debug("DeletePlaylist service called", "name", name)

	files, err := s.store.DeletePlaylist(ctx, name)
	if err != nil {
		slog.Error("DeletePlaylist failed", "name", name, "error", err)
		return err
	}
	s.deleter.DeleteFiles(files)

	if s.configManager.Get().Player.ActivePlaylist == name {
		data, err := s.store.InitialData(ctx, "")
		if err == nil {
			if err := s.configManager.SetActivePlaylist(data.ActivePlaylist); err != nil {
				slog.Warn("DeletePlaylist: could not persist active playlist", "error", err)
			}
		}
	}
	return nil
}

// SongPaths returns the playlist's song paths in order.
func (s *Service) SongPaths(ctx context.Context, playlist string) ([]string, error) {
	slog.Debug("SongPaths service called", "playlist", playlist)

	paths, err := s.store.SongPaths(ctx, playlist)
	if err != nil {
		slog.Error("SongPaths failed", "playlist", playlist, "error", err)
		return nil, err
	}
	return paths, nil
}
