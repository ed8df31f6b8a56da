package catalog

import "errors"

// Sentinel errors returned by catalog stores. Callers translate these into
// user-facing messages; the store never does.
var (
	// ErrNotFound is returned when a referenced song, playlist, tag or
	// category does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNameConflict is returned when a rename would collide with an
	// existing name (playlists: exact; tags: case-insensitive within the
	// same category).
	ErrNameConflict = errors.New("name already in use")

	// ErrAlreadyExists is returned when creating an entity that already
	// exists, e.g. a duplicate (name, category) tag.
	ErrAlreadyExists = errors.New("already exists")

	// ErrImmutableTag is returned when renaming or deleting a default tag.
	ErrImmutableTag = errors.New("default tags cannot be modified")

	// ErrInvalidOperation is returned when an operation is rejected before
	// any write, such as merging a tag with itself, across categories, or
	// merging away a default tag.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidArchive is returned when an import archive is not a zip or
	// is missing its manifest.
	ErrInvalidArchive = errors.New("invalid playlist archive")
)
