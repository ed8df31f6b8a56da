package catalog

import "context"

// SongStore persists song records, their markers, accent colors and tag
// associations. Update operations on unknown paths are no-ops unless
// documented otherwise; the store never touches the filesystem beyond
// stat-ing paths through its PathResolver.
type SongStore interface {
	// UpsertSong inserts a song if its path is not yet known and returns the
	// row id either way. Re-adding an existing path is a no-op.
	UpsertSong(ctx context.Context, ref SongRef) (int64, error)

	// SongsByPaths returns fully hydrated songs keyed by path. Unknown paths
	// are silently absent from the result.
	SongsByPaths(ctx context.Context, paths []string) (map[string]*Song, error)

	// SaveAccentColor persists the RGB triple for a song, all-or-nothing.
	SaveAccentColor(ctx context.Context, path string, color Color) error

	// SaveMarkers replaces a song's markers with the given timestamps.
	// Returns ErrNotFound when the path is unknown.
	SaveMarkers(ctx context.Context, path string, timestamps []float64) error

	// UpdateDetails applies a metadata edit to every given song in one
	// transaction and returns the hydrated records of the affected songs.
	UpdateDetails(ctx context.Context, paths []string, upd DetailsUpdate) ([]*Song, error)

	// DeleteSongs removes the songs and everything cascading off them, and
	// returns the resolved OS paths (audio and cover) for the caller to
	// physically delete.
	DeleteSongs(ctx context.Context, paths []string) ([]string, error)

	// ChangeCover sets a new cover and resets the accent color, which a
	// cover change invalidates.
	ChangeCover(ctx context.Context, path, coverPath string) error

	SongExists(ctx context.Context, path string) (bool, error)
	AllSongPaths(ctx context.Context) (map[string]struct{}, error)

	// ExistingTitles returns the subset of the given titles already present
	// in the library, lowercased, for duplicate marking.
	ExistingTitles(ctx context.Context, titles []string) (map[string]struct{}, error)

	// SongsWithCovers lists every song that has a cover, for accent refresh.
	SongsWithCovers(ctx context.Context) ([]CoverRef, error)
}

// PlaylistStore persists playlists and their ordered memberships. Any
// operation that can orphan songs sweeps for them in the same transaction.
type PlaylistStore interface {
	// InitialData returns the startup snapshot, creating the Default
	// playlist when the database holds none.
	InitialData(ctx context.Context, activePlaylist string) (*InitialData, error)

	CreatePlaylist(ctx context.Context, name string) error

	// RenamePlaylist returns ErrNameConflict when the new name is taken.
	RenamePlaylist(ctx context.Context, oldName, newName string) error

	// ReorderPlaylists reassigns display order from the full ordered list.
	ReorderPlaylists(ctx context.Context, nameOrder []string) error

	// AddSongs appends songs to a playlist, registering unknown paths as new
	// song rows. Adding an already-member song is a no-op.
	AddSongs(ctx context.Context, playlist string, songs []SongRef) error

	// ReorderSongs reassigns membership order from the full ordered path list.
	ReorderSongs(ctx context.Context, playlist string, pathOrder []string) error

	// MoveSongs atomically moves songs from one playlist to another,
	// appending them to the target in their given order.
	MoveSongs(ctx context.Context, source, target string, paths []string) error

	// DeletePlaylist removes the playlist, sweeps newly orphaned songs and
	// returns their resolved file paths for deletion.
	DeletePlaylist(ctx context.Context, name string) ([]string, error)

	// SongPaths returns the playlist's song paths in membership order.
	SongPaths(ctx context.Context, playlist string) ([]string, error)

	AllPlaylistNames(ctx context.Context) (map[string]struct{}, error)
}

// TagStore manages tag categories, tags and their song associations.
type TagStore interface {
	CategoryTree(ctx context.Context) ([]TagCategory, error)
	CreateTag(ctx context.Context, name string, categoryID int64) (*Tag, error)
	RenameTag(ctx context.Context, tagID int64, newName string) error
	DeleteTag(ctx context.Context, tagID int64) error

	// MergeTags reassigns every song carrying source to dest, deletes source
	// and returns the affected songs plus the refreshed tag tree. Merge is
	// rejected with ErrInvalidOperation before any write when source equals
	// dest, the categories differ, or the source is a default tag.
	MergeTags(ctx context.Context, sourceID, destID int64) (*MergeResult, error)
}

// SearchStore answers ranked full-text + tag-intersection queries.
type SearchStore interface {
	SearchAll(ctx context.Context, q Query) (*SearchResult, error)
	SearchPlaylist(ctx context.Context, playlist string, q Query) (*SearchResult, error)
}

// Porter reads and writes the portable playlist manifest.
type Porter interface {
	ExportData(ctx context.Context, playlist string) (*PlaylistExport, error)

	// ImportData loads a manifest under the given (pre-disambiguated) name
	// in one batched transaction.
	ImportData(ctx context.Context, manifest *PlaylistExport, name string) (*ImportResult, error)
}

// Store is the full catalog interface backed by one database.
type Store interface {
	SongStore
	PlaylistStore
	TagStore
	SearchStore
	Porter
	Close() error
}

// PathResolver maps between stored web paths and OS-absolute paths.
// The mapping is bijective, with a legacy-scheme fallback on the way in.
type PathResolver interface {
	ToOSPath(webPath string) string
	ToWebPath(osPath string) string
}

// FileDeleter best-effort removes files, swallowing individual failures.
type FileDeleter interface {
	DeleteFiles(paths []string)
}
