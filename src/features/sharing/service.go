package sharing

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
)

const manifestName = "playlist_data.json"

// MediaStore is the slice of the media layer the sharing feature needs.
type MediaStore interface {
	catalog.PathResolver
	SongsDir() string
	AllocateFilename(filename string) string
}

// Service packs playlists into portable zip archives and unpacks them back.
type Service struct {
	store catalog.Store
	media MediaStore
}

// NewService creates a new sharing service.
func NewService(store catalog.Store, media MediaStore) *Service {
	return &Service{store: store, media: media}
}

// ExportArchive writes the playlist, its media files and the manifest into a
// zip at destPath. Manifest paths are rewritten to archive-relative names.
func (s *Service) ExportArchive(ctx context.Context, playlist, destPath string) error {
	slog.Debug("ExportArchive service called", "playlist", playlist, "dest", destPath)

	export, err := s.store.ExportData(ctx, playlist)
	if err != nil {
		slog.Error("ExportArchive failed", "playlist", playlist, "error", err)
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", destPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	seen := make(map[string]string)

	addFile := func(webPath string) (string, error) {
		if name, ok := seen[webPath]; ok {
			return name, nil
		}
		osPath := s.media.ToOSPath(webPath)
		name := "media/" + filepath.Base(osPath)
		part, err := zw.Create(name)
		if err != nil {
			return "", err
		}
		file, err := os.Open(osPath)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(part, file)
		file.Close()
		if err != nil {
			return "", err
		}
		seen[webPath] = name
		return name, nil
	}

	for i := range export.Songs {
		song := &export.Songs[i]
		name, err := addFile(song.Path)
		if err != nil {
			slog.Error("ExportArchive: failed to pack file", "path", song.Path, "error", err)
			return err
		}
		song.Path = name
		if song.CoverPath != "" {
			coverName, err := addFile(song.CoverPath)
			if err != nil {
				slog.Warn("ExportArchive: cover skipped", "path", song.CoverPath, "error", err)
				song.CoverPath = ""
			} else {
				song.CoverPath = coverName
			}
		}
	}

	manifest, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(manifest)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	slog.Info("ExportArchive completed", "playlist", playlist, "songs", len(export.Songs), "dest", destPath)
	return out.Close()
}

// ExportM3U writes the playlist as an M3U file: the header followed by one
// absolute path per song, in membership order.
func (s *Service) ExportM3U(ctx context.Context, playlist, destPath string) error {
	slog.Debug("ExportM3U service called", "playlist", playlist, "dest", destPath)

	export, err := s.store.ExportData(ctx, playlist)
	if err != nil {
		slog.Error("ExportM3U failed", "playlist", playlist, "error", err)
		return err
	}

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, song := range export.Songs {
		b.WriteString(s.media.ToOSPath(song.Path) + "\n")
	}
	if err := os.WriteFile(destPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write m3u %s: %w", destPath, err)
	}
	return nil
}

// ImportArchive unpacks a playlist archive: the playlist name is
// disambiguated against existing ones, media files are copied into the
// managed dir under unique names, and the manifest is loaded in one batch.
func (s *Service) ImportArchive(ctx context.Context, archivePath string) (*catalog.ImportResult, error) {
	slog.Debug("ImportArchive service called", "archive", archivePath)

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a readable zip", catalog.ErrInvalidArchive, archivePath)
	}
	defer zr.Close()

	manifest, entries, err := readManifest(&zr.Reader)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.AllPlaylistNames(ctx)
	if err != nil {
		return nil, err
	}
	name := disambiguate(manifest.Name, existing)

	// Extract media and rewrite manifest paths to their new web form.
	extracted := make(map[string]string)
	extract := func(zipName string) (string, error) {
		if webPath, ok := extracted[zipName]; ok {
			return webPath, nil
		}
		entry, ok := entries[zipName]
		if !ok {
			return "", fmt.Errorf("%w: manifest references missing file %s", catalog.ErrInvalidArchive, zipName)
		}
		final := s.media.AllocateFilename(filepath.Base(zipName))
		dest := filepath.Join(s.media.SongsDir(), final)
		if err := writeEntry(entry, dest); err != nil {
			return "", err
		}
		webPath := s.media.ToWebPath(dest)
		extracted[zipName] = webPath
		return webPath, nil
	}

	for i := range manifest.Songs {
		song := &manifest.Songs[i]
		webPath, err := extract(song.Path)
		if err != nil {
			slog.Error("ImportArchive: extraction failed", "file", song.Path, "error", err)
			return nil, err
		}
		song.Path = webPath
		if song.CoverPath != "" {
			coverPath, err := extract(song.CoverPath)
			if err != nil {
				slog.Warn("ImportArchive: cover skipped", "file", song.CoverPath, "error", err)
				song.CoverPath = ""
			} else {
				song.CoverPath = coverPath
			}
		}
	}

	result, err := s.store.ImportData(ctx, manifest, name)
	if err != nil {
		slog.Error("ImportArchive failed", "archive", archivePath, "error", err)
		return nil, err
	}
	slog.Info("ImportArchive completed", "playlist", result.Name, "songs", len(result.Paths))
	return result, nil
}

func readManifest(zr *zip.Reader) (*catalog.PlaylistExport, map[string]*zip.File, error) {
	entries := make(map[string]*zip.File, len(zr.File))
	var manifestFile *zip.File
	for _, f := range zr.File {
		clean := path.Clean(f.Name)
		if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
			return nil, nil, fmt.Errorf("%w: unsafe entry path %s", catalog.ErrInvalidArchive, f.Name)
		}
		if clean == manifestName {
			manifestFile = f
			continue
		}
		entries[clean] = f
	}
	if manifestFile == nil {
		return nil, nil, fmt.Errorf("%w: missing %s", catalog.ErrInvalidArchive, manifestName)
	}

	rc, err := manifestFile.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unreadable manifest", catalog.ErrInvalidArchive)
	}
	defer rc.Close()

	var manifest catalog.PlaylistExport
	if err := json.NewDecoder(rc).Decode(&manifest); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed manifest: %v", catalog.ErrInvalidArchive, err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, nil, fmt.Errorf("%w: manifest has no playlist name", catalog.ErrInvalidArchive)
	}
	return &manifest, entries, nil
}

func writeEntry(entry *zip.File, dest string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// disambiguate appends " (n)" until the name is free.
func disambiguate(name string, existing map[string]struct{}) string {
	if _, taken := existing[name]; !taken {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
