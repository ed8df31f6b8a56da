package tagmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/zqily/FNote-v2/src/catalog"
)

// Meta is the metadata read from or written into an audio file.
type Meta struct {
	Title     string
	Artist    string
	CoverData []byte
	CoverMIME string
}

// Reader extracts metadata from audio files using dhowden/tag, falling back
// to "Artist - Title" filename parsing when the file carries no tags.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadFile reads title, artist and embedded cover art from the file. Missing
// fields fall back to the filename; a file with no readable tags still
// yields usable metadata.
func (r *Reader) ReadFile(path string) (*Meta, error) {
	meta := &Meta{}
	fallbackArtist, fallbackTitle := catalog.ParseArtistTitle(baseName(path))
	meta.Title = fallbackTitle
	meta.Artist = fallbackArtist

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		// No tags is not an error for us; the filename fallback stands.
		return meta, nil
	}

	if title := strings.TrimSpace(tags.Title()); title != "" {
		meta.Title = title
	}
	if artist := strings.TrimSpace(tags.Artist()); artist != "" {
		meta.Artist = artist
	}
	if pic := tags.Picture(); pic != nil && len(pic.Data) > 0 {
		meta.CoverData = pic.Data
		meta.CoverMIME = pic.MIMEType
	}
	return meta, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
