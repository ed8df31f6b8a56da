package songs

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/features/jobs"
	"github.com/zqily/FNote-v2/src/infra/tagmeta"
	"github.com/zqily/FNote-v2/src/infra/watcher"
)

// MediaStore is the slice of the media layer the songs feature needs.
type MediaStore interface {
	catalog.PathResolver
	CopyIn(srcPath string) (string, error)
	MoveIn(srcPath string) (string, error)
	SaveCover(data []byte, baseName, ext string) (string, error)
	DeleteFiles(paths []string)
}

// MetadataReader extracts tags from audio files.
type MetadataReader interface {
	ReadFile(path string) (*tagmeta.Meta, error)
}

// MetadataWriter writes tags back into audio files.
type MetadataWriter interface {
	WriteFile(path string, meta *tagmeta.Meta) error
}

// AccentFinder derives an accent color from a cover image and normalizes
// covers for embedding into audio files.
type AccentFinder interface {
	DominantColor(path string) (catalog.Color, error)
	NormalizeCover(data []byte, maxSize int) ([]byte, error)
}

// Covers are downscaled to at most this before being embedded into a file.
const coverEmbedMaxSize = 1024

// ImportCandidate is a local file offered to the user before import, with
// duplicate titles marked.
type ImportCandidate struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// Service is the domain service for the songs feature.
type Service struct {
	store  catalog.Store
	media  MediaStore
	reader MetadataReader
	writer MetadataWriter
	accent AccentFinder
}

// NewService creates a new songs service.
func NewService(store catalog.Store, media MediaStore, reader MetadataReader, writer MetadataWriter, accent AccentFinder) *Service {
	return &Service{
		store:  store,
		media:  media,
		reader: reader,
		writer: writer,
		accent: accent,
	}
}

// SongsByPaths returns hydrated songs keyed by path.
func (s *Service) SongsByPaths(ctx context.Context, paths []string) (map[string]*catalog.Song, error) {
	slog.Debug("SongsByPaths service called", "count", len(paths))

	songs, err := s.store.SongsByPaths(ctx, paths)
	if err != nil {
		slog.Error("SongsByPaths failed", "error", err)
		return nil, err
	}
	return songs, nil
}

// SaveMarkers replaces a song's markers.
func (s *Service) SaveMarkers(ctx context.Context, path string, timestamps []float64) error {
	slog.Debug("SaveMarkers service called", "path", path, "count", len(timestamps))

	if err := s.store.SaveMarkers(ctx, path, timestamps); err != nil {
		slog.Error("SaveMarkers failed", "path", path, "error", err)
		return err
	}
	return nil
}

// EnsureAccentColor returns the song's accent color, deriving and persisting
// it from the cover on first request.
func (s *Service) EnsureAccentColor(ctx context.Context, path string) (*catalog.Color, error) {
	slog.Debug("EnsureAccentColor service called", "path", path)

	songs, err := s.store.SongsByPaths(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	song, ok := songs[path]
	if !ok {
		return nil, fmt.Errorf("song %q: %w", path, catalog.ErrNotFound)
	}
	if song.AccentColor != nil {
		return song.AccentColor, nil
	}
	if song.CoverPath == "" {
		return nil, nil
	}

	color, err := s.accent.DominantColor(s.media.ToOSPath(song.CoverPath))
	if err != nil {
		slog.Error("EnsureAccentColor: color derivation failed", "path", path, "error", err)
		// The fallback color is still worth caching.
	}
	if err := s.store.SaveAccentColor(ctx, path, color); err != nil {
		slog.Error("EnsureAccentColor: save failed", "path", path, "error", err)
		return nil, err
	}
	return &color, nil
}

// UpdateDetails applies a metadata edit and mirrors name/artist changes into
// the audio files, best effort.
func (s *Service) UpdateDetails(ctx context.Context, paths []string, upd catalog.DetailsUpdate) (map[string]*catalog.Song, error) {
	slog.Debug("UpdateDetails service called", "count", len(paths))

	updated, err := s.store.UpdateDetails(ctx, paths, upd)
	if err != nil {
		slog.Error("UpdateDetails failed", "error", err)
		return nil, err
	}

	if upd.Name != nil || upd.Artist != nil {
		for _, song := range updated {
			osPath := s.media.ToOSPath(song.Path)
			if err := s.writer.WriteFile(osPath, &tagmeta.Meta{Title: song.Name, Artist: song.Artist}); err != nil {
				slog.Warn("UpdateDetails: could not write tags to file", "path", osPath, "error", err)
			}
		}
	}

	result := make(map[string]*catalog.Song, len(updated))
	for _, song := range updated {
		result[song.Path] = song
	}
	return result, nil
}

// DeleteSongs removes songs from the catalog and deletes their media files.
func (s *Service) DeleteSongs(ctx context.Context, paths []string) error {
	slog.Debug("DeleteSongs service called", "count", len(paths))

	files, err := s.store.DeleteSongs(ctx, paths)
	if err != nil {
		slog.Error("DeleteSongs failed", "error", err)
		return err
	}
	s.media.DeleteFiles(files)
	return nil
}

// ChangeCover installs a new cover image for a song: the image is copied
// into the media dir, the old cover file is removed and the accent color is
// recomputed from the new image. Returns the updated song.
func (s *Service) ChangeCover(ctx context.Context, songPath, imageOSPath string) (*catalog.Song, error) {
	slog.Debug("ChangeCover service called", "song", songPath, "image", imageOSPath)

	songs, err := s.store.SongsByPaths(ctx, []string{songPath})
	if err != nil {
		return nil, err
	}
	song, ok := songs[songPath]
	if !ok {
		return nil, fmt.Errorf("song %q: %w", songPath, catalog.ErrNotFound)
	}
	oldCover := song.CoverPath

	coverWebPath, err := s.media.CopyIn(imageOSPath)
	if err != nil {
		slog.Error("ChangeCover: failed to copy cover", "image", imageOSPath, "error", err)
		return nil, err
	}
	if err := s.store.ChangeCover(ctx, songPath, coverWebPath); err != nil {
		slog.Error("ChangeCover failed", "song", songPath, "error", err)
		return nil, err
	}
	if oldCover != "" {
		s.media.DeleteFiles([]string{s.media.ToOSPath(oldCover)})
	}
	if _, err := s.EnsureAccentColor(ctx, songPath); err != nil {
		slog.Warn("ChangeCover: accent refresh failed", "song", songPath, "error", err)
	}
	s.embedCover(songPath, song.Name, song.Artist, coverWebPath)

	songs, err = s.store.SongsByPaths(ctx, []string{songPath})
	if err != nil {
		return nil, err
	}
	return songs[songPath], nil
}

// embedCover writes the cover image into the song's file tags alongside its
// current title and artist, best effort.
func (s *Service) embedCover(songPath, name, artist, coverWebPath string) {
	data, err := os.ReadFile(s.media.ToOSPath(coverWebPath))
	if err != nil {
		slog.Warn("Could not read cover for embedding", "cover", coverWebPath, "error", err)
		return
	}
	normalized, err := s.accent.NormalizeCover(data, coverEmbedMaxSize)
	if err != nil {
		slog.Warn("Could not normalize cover for embedding", "cover", coverWebPath, "error", err)
		return
	}
	meta := &tagmeta.Meta{Title: name, Artist: artist, CoverData: normalized, CoverMIME: "image/jpeg"}
	if err := s.writer.WriteFile(s.media.ToOSPath(songPath), meta); err != nil {
		slog.Warn("Could not embed cover into file", "song", songPath, "error", err)
	}
}

// ImportCandidates reads metadata from local files and marks titles already
// in the library as duplicates.
func (s *Service) ImportCandidates(ctx context.Context, filePaths []string) ([]ImportCandidate, error) {
	slog.Debug("ImportCandidates service called", "count", len(filePaths))

	candidates := make([]ImportCandidate, 0, len(filePaths))
	titles := make([]string, 0, len(filePaths))
	for _, path := range filePaths {
		meta, err := s.reader.ReadFile(path)
		if err != nil {
			slog.Warn("ImportCandidates: unreadable file skipped", "path", path, "error", err)
			continue
		}
		candidates = append(candidates, ImportCandidate{Path: path, Name: meta.Title, Artist: meta.Artist})
		titles = append(titles, meta.Title)
	}

	existing, err := s.store.ExistingTitles(ctx, titles)
	if err != nil {
		slog.Error("ImportCandidates: duplicate check failed", "error", err)
		return nil, err
	}
	for i := range candidates {
		if _, dup := existing[strings.ToLower(candidates[i].Name)]; dup {
			candidates[i].IsDuplicate = true
		}
	}
	return candidates, nil
}

// ScanNewFiles lists supported audio files in dir that the catalog does not
// know yet, as import candidates. Runs when the media watcher fires.
func (s *Service) ScanNewFiles(ctx context.Context, dir string) ([]ImportCandidate, error) {
	slog.Debug("ScanNewFiles service called", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	known, err := s.store.AllSongPaths(ctx)
	if err != nil {
		return nil, err
	}

	var fresh []string
	for _, entry := range entries {
		if entry.IsDir() || !watcher.IsSupportedAudio(entry.Name()) {
			continue
		}
		osPath := filepath.Join(dir, entry.Name())
		if _, ok := known[s.media.ToWebPath(osPath)]; ok {
			continue
		}
		fresh = append(fresh, osPath)
	}
	if len(fresh) == 0 {
		return nil, nil
	}
	return s.ImportCandidates(ctx, fresh)
}

// ImportFiles copies local audio files into the media dir, extracts their
// metadata and embedded covers, and appends them to the target playlist.
// Returns the ordered new paths and their hydrated records.
func (s *Service) ImportFiles(ctx context.Context, filePaths []string, playlist string) (*catalog.ImportResult, error) {
	slog.Debug("ImportFiles service called", "count", len(filePaths), "playlist", playlist)

	var refs []catalog.SongRef
	for _, srcPath := range filePaths {
		webPath, err := s.media.CopyIn(srcPath)
		if err != nil {
			slog.Error("ImportFiles: failed to copy file", "path", srcPath, "error", err)
			return nil, err
		}

		meta, err := s.reader.ReadFile(s.media.ToOSPath(webPath))
		if err != nil {
			slog.Warn("ImportFiles: metadata read failed", "path", srcPath, "error", err)
			artist, title := catalog.ParseArtistTitle(strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath)))
			meta = &tagmeta.Meta{Title: title, Artist: artist}
		}

		ref := catalog.SongRef{Path: webPath, Name: meta.Title, Artist: meta.Artist}
		if len(meta.CoverData) > 0 {
			ext := coverExtension(meta.CoverMIME)
			coverPath, err := s.media.SaveCover(meta.CoverData, meta.Title+"_cover", ext)
			if err != nil {
				slog.Warn("ImportFiles: could not save embedded cover", "path", srcPath, "error", err)
			} else {
				ref.CoverPath = coverPath
			}
		}
		refs = append(refs, ref)
	}

	if err := s.store.AddSongs(ctx, playlist, refs); err != nil {
		slog.Error("ImportFiles: failed to add songs", "playlist", playlist, "error", err)
		return nil, err
	}

	paths := make([]string, len(refs))
	for i, ref := range refs {
		paths[i] = ref.Path
	}
	songs, err := s.store.SongsByPaths(ctx, paths)
	if err != nil {
		return nil, err
	}

	slog.Info("ImportFiles completed", "imported", len(paths), "playlist", playlist)
	return &catalog.ImportResult{Name: playlist, Paths: paths, Songs: songs}, nil
}

func coverExtension(mimeType string) string {
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}

// RefreshAccentsTask recomputes accent colors for every song with a cover.
// Registered as the accent_refresh job.
type RefreshAccentsTask struct {
	store  catalog.Store
	media  MediaStore
	accent AccentFinder
}

// NewRefreshAccentsTask creates the accent refresh job task.
func NewRefreshAccentsTask(store catalog.Store, media MediaStore, accent AccentFinder) *RefreshAccentsTask {
	return &RefreshAccentsTask{store: store, media: media, accent: accent}
}

func (t *RefreshAccentsTask) MetadataKeys() []string { return nil }

func (t *RefreshAccentsTask) Execute(ctx context.Context, _ *jobs.Job, progress func(int, string)) (map[string]any, error) {
	refs, err := t.store.SongsWithCovers(ctx)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return map[string]any{"refreshed": 0}, nil
	}

	colors := make(map[string]*catalog.Color, len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		osPath := t.media.ToOSPath(ref.CoverPath)
		if _, err := os.Stat(osPath); err != nil {
			continue
		}
		color, err := t.accent.DominantColor(osPath)
		if err != nil {
			slog.Warn("Accent refresh: derivation failed", "cover", osPath, "error", err)
		}
		if err := t.store.SaveAccentColor(ctx, ref.Path, color); err != nil {
			return nil, err
		}
		colors[ref.Path] = &color
		progress((i+1)*100/len(refs), fmt.Sprintf("Refreshed %d/%d", i+1, len(refs)))
	}
	return map[string]any{"refreshed": len(colors), "colors": colors}, nil
}
