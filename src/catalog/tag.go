package catalog

// Tag is a label within a category. Default tags are seeded at database
// initialization and can never be renamed, deleted or merged away.
type Tag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
	IsDefault  bool   `json:"is_default"`
}

// TagCategory groups tags. Categories are ordered by creation.
type TagCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}

// MergeResult carries everything a UI needs after a tag merge: the hydrated
// records of every affected song, keyed by path, plus the refreshed tag tree.
type MergeResult struct {
	UpdatedSongs map[string]*Song `json:"updatedSongsMap"`
	Tags         []TagCategory    `json:"tagData"`
}
