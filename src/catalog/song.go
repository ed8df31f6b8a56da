package catalog

import (
	"fmt"
	"strings"
)

// Color is an RGB accent color derived from a song's cover art.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Marker is a timestamp annotation on a song. Timestamps are seconds.
// Duplicates are allowed; markers are replaced wholesale on save.
type Marker struct {
	ID        string  `json:"id"`
	Timestamp float64 `json:"timestamp"`
}

// Song is a fully hydrated catalog entry. Path is the song's identity:
// it is a web path (see PathResolver) and is unique across the library.
type Song struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Artist      string   `json:"artist"`
	CoverPath   string   `json:"coverPath,omitempty"`
	IsMissing   bool     `json:"isMissing"`
	AccentColor *Color   `json:"accentColor"`
	Markers     []Marker `json:"markers"`
	TagIDs      []int64  `json:"tagIds"`
}

// SongRef carries the fields needed to register a song on first reference
// (playlist add, import, download). The catalog fills in the rest.
type SongRef struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	CoverPath string `json:"coverPath,omitempty"`
}

// Validate validates a song reference before it reaches the store.
func (r *SongRef) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("song path cannot be empty")
	}
	return nil
}

// DetailsUpdate describes a metadata edit applied to one or more songs.
// Name and Artist, when set, are applied to every targeted song.
//
// Tag edits come in two mutually exclusive modes: the additive/subtractive
// deltas (TagsToAdd/TagsToRemove) used by multi-select edits, and the full
// replacement list (TagIDs) which is only valid for a single song. When both
// are supplied the deltas win and TagIDs is ignored.
type DetailsUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Artist       *string  `json:"artist,omitempty"`
	TagsToAdd    []int64  `json:"tagsToAdd,omitempty"`
	TagsToRemove []int64  `json:"tagsToRemove,omitempty"`
	TagIDs       *[]int64 `json:"tagIds,omitempty"`
}

// HasTagDeltas reports whether the additive/subtractive mode is in effect.
func (u *DetailsUpdate) HasTagDeltas() bool {
	return len(u.TagsToAdd) > 0 || len(u.TagsToRemove) > 0
}

// CoverRef pairs a song path with its cover path, for bulk accent refresh.
type CoverRef struct {
	Path      string `json:"path"`
	CoverPath string `json:"coverPath"`
}
