package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/unidecode"
)

// Web paths use a fake local HTTPS origin so the UI layer can reference
// managed media without exposing OS paths. The old fnote:// scheme and bare
// relative paths are still accepted when reading for legacy databases.
const (
	LocalOrigin  = "https://fnote.local"
	legacyScheme = "fnote://"
)

// MediaStore owns the managed media directory and the web-path scheme. It
// implements catalog.PathResolver and catalog.FileDeleter.
type MediaStore struct {
	dataDir  string
	songsDir string
}

// NewMediaStore creates the media store rooted at dataDir, ensuring the
// songs directory exists.
func NewMediaStore(dataDir string) (*MediaStore, error) {
	songsDir := filepath.Join(dataDir, "songs")
	if err := os.MkdirAll(songsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", songsDir, err)
	}
	return &MediaStore{dataDir: dataDir, songsDir: songsDir}, nil
}

// SongsDir returns the directory managed media files live in.
func (m *MediaStore) SongsDir() string {
	return m.songsDir
}

// ToWebPath converts an OS path under the data dir into its web form.
func (m *MediaStore) ToWebPath(osPath string) string {
	if osPath == "" {
		return ""
	}
	rel, err := filepath.Rel(m.dataDir, osPath)
	if err != nil {
		rel = osPath
	}
	return LocalOrigin + "/" + filepath.ToSlash(rel)
}

// ToOSPath converts a web path back into an OS-absolute path, accepting the
// legacy scheme and bare relative paths for old databases.
func (m *MediaStore) ToOSPath(webPath string) string {
	if webPath == "" {
		return ""
	}
	var rel string
	switch {
	case strings.HasPrefix(webPath, LocalOrigin+"/"):
		rel = strings.TrimPrefix(webPath, LocalOrigin+"/")
	case strings.HasPrefix(webPath, legacyScheme):
		rel = strings.TrimPrefix(webPath, legacyScheme)
	default:
		rel = webPath
	}
	return filepath.Join(m.dataDir, filepath.FromSlash(rel))
}

// DeleteFiles best-effort removes the given OS paths. Individual failures
// are logged and swallowed.
func (m *MediaStore) DeleteFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Error("Could not remove file", "path", p, "error", err)
		}
	}
}

// SanitizeFilename transliterates a name to ASCII and strips characters
// that are unsafe in filenames.
func SanitizeFilename(name string) string {
	clean := unidecode.Unidecode(name)
	clean = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, clean)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		clean = "untitled"
	}
	return clean
}

// AllocateFilename returns a filename unique within the songs directory,
// appending _1, _2, ... before the extension until it no longer collides.
func (m *MediaStore) AllocateFilename(filename string) string {
	final := filename
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	ext := filepath.Ext(filename)
	for count := 1; ; count++ {
		if _, err := os.Stat(filepath.Join(m.songsDir, final)); os.IsNotExist(err) {
			return final
		}
		final = fmt.Sprintf("%s_%d%s", base, count, ext)
	}
}

// CopyIn copies an external file into the songs directory under a unique
// name and returns the resulting web path.
func (m *MediaStore) CopyIn(srcPath string) (string, error) {
	final := m.AllocateFilename(SanitizeFilename(filepath.Base(srcPath)))
	dest := filepath.Join(m.songsDir, final)
	if err := copyFile(srcPath, dest); err != nil {
		return "", err
	}
	return m.ToWebPath(dest), nil
}

// SaveCover writes cover image bytes next to the media files under a unique
// name derived from baseName, returning the web path.
func (m *MediaStore) SaveCover(data []byte, baseName, ext string) (string, error) {
	if ext == "" {
		ext = ".jpg"
	}
	final := m.AllocateFilename(SanitizeFilename(baseName) + ext)
	dest := filepath.Join(m.songsDir, final)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write cover %s: %w", dest, err)
	}
	return m.ToWebPath(dest), nil
}

// MoveIn moves an external file into the songs directory under a unique
// name and returns the resulting web path. Falls back to copy+remove when
// rename crosses filesystems.
func (m *MediaStore) MoveIn(srcPath string) (string, error) {
	final := m.AllocateFilename(SanitizeFilename(filepath.Base(srcPath)))
	dest := filepath.Join(m.songsDir, final)
	if err := os.Rename(srcPath, dest); err != nil {
		if err := copyFile(srcPath, dest); err != nil {
			return "", err
		}
		os.Remove(srcPath)
	}
	return m.ToWebPath(dest), nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
