package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
)

// CategoryTree returns every category with its tags, both alphabetically
// except that categories keep creation order.
func (d *SqliteCatalog) CategoryTree(ctx context.Context) ([]catalog.TagCategory, error) {
	return categoryTree(ctx, d.db)
}

func categoryTree(ctx context.Context, q querier) ([]catalog.TagCategory, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, t.id, t.name, t.is_default
		FROM tag_categories c
		LEFT JOIN tags t ON t.category_id = c.id
		ORDER BY c.id, t.name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tree []catalog.TagCategory
	byID := map[int64]int{}
	for rows.Next() {
		var catID int64
		var catName string
		var tagID sql.NullInt64
		var tagName sql.NullString
		var isDefault sql.NullBool
		if err := rows.Scan(&catID, &catName, &tagID, &tagName, &isDefault); err != nil {
			return nil, err
		}
		idx, ok := byID[catID]
		if !ok {
			tree = append(tree, catalog.TagCategory{ID: catID, Name: catName, Tags: []catalog.Tag{}})
			idx = len(tree) - 1
			byID[catID] = idx
		}
		if tagID.Valid {
			tree[idx].Tags = append(tree[idx].Tags, catalog.Tag{
				ID:         tagID.Int64,
				Name:       tagName.String,
				CategoryID: catID,
				IsDefault:  isDefault.Bool,
			})
		}
	}
	return tree, rows.Err()
}

// CreateTag adds a user tag to a category. Duplicate names within the
// category are rejected case-insensitively.
func (d *SqliteCatalog) CreateTag(ctx context.Context, name string, categoryID int64) (*catalog.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name cannot be empty: %w", catalog.ErrInvalidOperation)
	}

	var exists int
	err := d.db.QueryRowContext(ctx, `
		SELECT 1 FROM tags WHERE category_id = ? AND lower(name) = lower(?)`,
		categoryID, name).Scan(&exists)
	if err == nil {
		return nil, fmt.Errorf("tag %q: %w", name, catalog.ErrAlreadyExists)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO tags (name, category_id, is_default) VALUES (?, ?, 0)`, name, categoryID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("tag %q: %w", name, catalog.ErrAlreadyExists)
	}
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &catalog.Tag{ID: id, Name: name, CategoryID: categoryID}, nil
}

func tagByID(ctx context.Context, q querier, id int64) (*catalog.Tag, error) {
	var t catalog.Tag
	err := q.QueryRowContext(ctx, `
		SELECT id, name, category_id, is_default FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CategoryID, &t.IsDefault)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RenameTag renames a user tag. Default tags are immutable; the new name
// must not collide case-insensitively within the tag's category.
func (d *SqliteCatalog) RenameTag(ctx context.Context, tagID int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("tag name cannot be empty: %w", catalog.ErrInvalidOperation)
	}
	tag, err := tagByID(ctx, d.db, tagID)
	if err != nil {
		return err
	}
	if tag.IsDefault {
		return fmt.Errorf("tag %q: %w", tag.Name, catalog.ErrImmutableTag)
	}

	var exists int
	err = d.db.QueryRowContext(ctx, `
		SELECT 1 FROM tags WHERE category_id = ? AND lower(name) = lower(?) AND id != ?`,
		tag.CategoryID, newName, tagID).Scan(&exists)
	if err == nil {
		return fmt.Errorf("tag %q: %w", newName, catalog.ErrNameConflict)
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = d.db.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, newName, tagID)
	if isUniqueViolation(err) {
		return fmt.Errorf("tag %q: %w", newName, catalog.ErrNameConflict)
	}
	return err
}

// DeleteTag removes a user tag and, via cascade, its song associations.
func (d *SqliteCatalog) DeleteTag(ctx context.Context, tagID int64) error {
	tag, err := tagByID(ctx, d.db, tagID)
	if err != nil {
		return err
	}
	if tag.IsDefault {
		return fmt.Errorf("tag %q: %w", tag.Name, catalog.ErrImmutableTag)
	}
	_, err = d.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	return err
}

// MergeTags reassigns every song carrying source to dest, deletes source and
// returns the affected songs plus the refreshed tag tree. All validation
// happens before the first write, so an invalid merge leaves the database
// untouched.
func (d *SqliteCatalog) MergeTags(ctx context.Context, sourceID, destID int64) (*catalog.MergeResult, error) {
	if sourceID == destID {
		return nil, fmt.Errorf("cannot merge a tag into itself: %w", catalog.ErrInvalidOperation)
	}
	source, err := tagByID(ctx, d.db, sourceID)
	if err != nil {
		return nil, err
	}
	dest, err := tagByID(ctx, d.db, destID)
	if err != nil {
		return nil, err
	}
	if source.CategoryID != dest.CategoryID {
		return nil, fmt.Errorf("cannot merge tags across categories: %w", catalog.ErrInvalidOperation)
	}
	if source.IsDefault {
		return nil, fmt.Errorf("default tag %q cannot be merged away: %w", source.Name, catalog.ErrInvalidOperation)
	}

	var affectedIDs []int64
	err = withTx(ctx, d.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT song_id FROM song_tags WHERE tag_id = ?`, sourceID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			affectedIDs = append(affectedIDs, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, songID := range affectedIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO song_tags (song_id, tag_id) VALUES (?, ?)`, songID, destID); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM song_tags WHERE tag_id = ?`, sourceID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, sourceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	songs, err := d.fetchSongsByIDs(ctx, d.db, affectedIDs)
	if err != nil {
		return nil, err
	}
	updated := make(map[string]*catalog.Song, len(songs))
	for _, song := range songs {
		updated[song.Path] = song
	}

	tree, err := d.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	return &catalog.MergeResult{UpdatedSongs: updated, Tags: tree}, nil
}
