package catalog

import (
	"fmt"
	"strings"
)

// DefaultPlaylistName is created on first run and acts as the fallback
// active playlist.
const DefaultPlaylistName = "Default"

// ValidatePlaylistName rejects names the store would not accept.
func ValidatePlaylistName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("playlist name cannot be empty")
	}
	if len(name) > 200 {
		return fmt.Errorf("playlist name cannot exceed 200 characters, got %d", len(name))
	}
	return nil
}

// InitialData is the normalized snapshot the UI needs on startup. Song
// records are not included; they are hydrated on demand via SongsByPaths.
type InitialData struct {
	Playlists      map[string][]string `json:"playlists"`
	PlaylistOrder  []string            `json:"playlistOrder"`
	ActivePlaylist string              `json:"activePlaylist"`
	Tags           []TagCategory       `json:"tagData"`
}

// PlaylistExport is the portable manifest describing a playlist's songs,
// markers and tag assignments, serialized as playlist_data.json.
type PlaylistExport struct {
	Name  string       `json:"name"`
	Songs []ExportSong `json:"songs"`
}

// ExportSong is one manifest entry. Tags maps category name to tag names.
type ExportSong struct {
	Name      string              `json:"name"`
	Artist    string              `json:"artist"`
	Path      string              `json:"path"`
	CoverPath string              `json:"coverPath,omitempty"`
	Markers   []float64           `json:"markers"`
	Tags      map[string][]string `json:"tags"`
}

// ImportResult is what an archive import hands back to the UI: the final
// (possibly disambiguated) playlist name, its song paths in order, and the
// hydrated records keyed by path. Accent colors are always unset for
// freshly imported songs.
type ImportResult struct {
	Name  string           `json:"name"`
	Paths []string         `json:"paths"`
	Songs map[string]*Song `json:"songs"`
}
