package downloading

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/features/config"
	"github.com/zqily/FNote-v2/src/features/jobs"
	"github.com/zqily/FNote-v2/src/infra/tagmeta"
)

// MediaStore is the slice of the media layer downloads need.
type MediaStore interface {
	catalog.PathResolver
	MoveIn(srcPath string) (string, error)
}

// MetadataWriter writes tags back into audio files.
type MetadataWriter interface {
	WriteFile(path string, meta *tagmeta.Meta) error
}

// CoverNormalizer re-encodes thumbnails before they are embedded.
type CoverNormalizer interface {
	NormalizeCover(data []byte, maxSize int) ([]byte, error)
}

// Embedded thumbnails are downscaled to at most this.
const coverEmbedMaxSize = 1024

var audioExts = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true, ".ogg": true,
	".m4a": true, ".opus": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// DownloadTask executes url_download jobs: each URL is fetched with the
// configured binary, moved into the media dir, tagged and appended to the
// target playlist.
type DownloadTask struct {
	store         catalog.Store
	media         MediaStore
	writer        MetadataWriter
	covers        CoverNormalizer
	configManager *config.Manager
}

// NewDownloadTask creates the url_download job task.
func NewDownloadTask(store catalog.Store, media MediaStore, writer MetadataWriter, covers CoverNormalizer, cfgManager *config.Manager) *DownloadTask {
	return &DownloadTask{
		store:         store,
		media:         media,
		writer:        writer,
		covers:        covers,
		configManager: cfgManager,
	}
}

func (t *DownloadTask) MetadataKeys() []string {
	return []string{"urls", "playlist"}
}

func (t *DownloadTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	urls, err := stringSlice(job.Metadata["urls"])
	if err != nil {
		return nil, err
	}
	playlist, ok := job.Metadata["playlist"].(string)
	if !ok || playlist == "" {
		return nil, fmt.Errorf("playlist not found in job metadata")
	}

	cfg := t.configManager.Get().Downloads
	var refs []catalog.SongRef
	var failed []string

	for i, url := range urls {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		progressUpdater(i*100/len(urls), fmt.Sprintf("Downloading %d/%d...", i+1, len(urls)))
		job.Logger.Info("Downloading URL", "url", url)

		ref, err := t.downloadOne(ctx, cfg, url)
		if err != nil {
			job.Logger.Error("Download failed", "url", url, "error", err)
			failed = append(failed, url)
			continue
		}
		refs = append(refs, *ref)
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("no URL could be downloaded (%d failed)", len(failed))
	}

	progressUpdater(95, "Adding songs to playlist...")
	if err := t.store.AddSongs(ctx, playlist, refs); err != nil {
		return nil, err
	}

	paths := make([]string, len(refs))
	for i, ref := range refs {
		paths[i] = ref.Path
	}
	songs, err := t.store.SongsByPaths(ctx, paths)
	if err != nil {
		return nil, err
	}

	progressUpdater(100, fmt.Sprintf("Downloaded %d song(s)", len(refs)))
	return map[string]any{
		"playlist": playlist,
		"paths":    paths,
		"songs":    songs,
		"failed":   failed,
	}, nil
}

// downloadOne fetches a single URL into a scratch dir and moves the audio
// file (and thumbnail, when present) into the managed media dir.
func (t *DownloadTask) downloadOne(ctx context.Context, cfg config.Downloads, url string) (*catalog.SongRef, error) {
	scratch, err := os.MkdirTemp(cfg.TempDir, "fnote-dl-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	format := cfg.Format
	if format == "" {
		format = "mp3"
	}
	cmd := exec.CommandContext(ctx, cfg.Binary,
		"-x", "--audio-format", format,
		"--write-thumbnail",
		"--no-warnings", "--no-playlist",
		"-o", filepath.Join(scratch, "%(title)s.%(ext)s"),
		url)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("downloader failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	audioSrc, coverSrc, err := findOutputs(scratch)
	if err != nil {
		return nil, err
	}

	webPath, err := t.media.MoveIn(audioSrc)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(audioSrc), filepath.Ext(audioSrc))
	artist, title := catalog.ParseArtistTitle(stem)

	ref := catalog.SongRef{Path: webPath, Name: title, Artist: artist}
	if coverSrc != "" {
		coverPath, err := t.media.MoveIn(coverSrc)
		if err == nil {
			ref.CoverPath = coverPath
		}
	}

	// Tagging is best effort; the file is already in the library.
	meta := &tagmeta.Meta{Title: title, Artist: artist}
	if ref.CoverPath != "" {
		if data, err := os.ReadFile(t.media.ToOSPath(ref.CoverPath)); err == nil {
			if normalized, err := t.covers.NormalizeCover(data, coverEmbedMaxSize); err == nil {
				meta.CoverData = normalized
				meta.CoverMIME = "image/jpeg"
			}
		}
	}
	if err := t.writer.WriteFile(t.media.ToOSPath(webPath), meta); err != nil {
		return &ref, nil
	}
	return &ref, nil
}

func findOutputs(dir string) (audio, cover string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch {
		case audioExts[ext] && audio == "":
			audio = filepath.Join(dir, e.Name())
		case imageExts[ext] && cover == "":
			cover = filepath.Join(dir, e.Name())
		}
	}
	if audio == "" {
		return "", "", fmt.Errorf("downloader produced no audio file in %s", dir)
	}
	return audio, cover, nil
}

func stringSlice(v any) ([]string, error) {
	switch vals := v.(type) {
	case []string:
		return vals, nil
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("urls must be strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("urls not found in job metadata")
	}
}
