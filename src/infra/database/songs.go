package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
)

// fetchSongsByIDs hydrates songs with one core query plus two batched
// auxiliary queries (markers, tag links) to avoid row multiplication from
// join fan-out. The result preserves the caller-supplied id order, which is
// how search ranking survives hydration. IsMissing stats the resolved OS
// path at read time.
func (d *SqliteCatalog) fetchSongsByIDs(ctx context.Context, q querier, ids []int64) ([]*catalog.Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := placeholders(len(ids))
	args := int64Args(ids)

	songs := make(map[int64]*catalog.Song, len(ids))

	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, path, name, artist, cover_path,
			accent_color_r, accent_color_g, accent_color_b
		FROM songs
		WHERE id IN (%s)`, ph), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id              int64
			path            string
			name, artist    sql.NullString
			coverPath       sql.NullString
			red, green, blu sql.NullInt64
		)
		if err := rows.Scan(&id, &path, &name, &artist, &coverPath, &red, &green, &blu); err != nil {
			return nil, err
		}
		song := &catalog.Song{
			Path:      path,
			Name:      name.String,
			Artist:    artist.String,
			CoverPath: coverPath.String,
			Markers:   []catalog.Marker{},
			TagIDs:    []int64{},
		}
		if red.Valid {
			song.AccentColor = &catalog.Color{R: int(red.Int64), G: int(green.Int64), B: int(blu.Int64)}
		}
		if _, err := os.Stat(d.resolver.ToOSPath(path)); err != nil {
			song.IsMissing = true
		}
		songs[id] = song
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	markerRows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT song_id, timestamp FROM markers WHERE song_id IN (%s) ORDER BY timestamp`, ph), args...)
	if err != nil {
		return nil, err
	}
	defer markerRows.Close()

	for markerRows.Next() {
		var songID int64
		var ts float64
		if err := markerRows.Scan(&songID, &ts); err != nil {
			return nil, err
		}
		if song, ok := songs[songID]; ok {
			song.Markers = append(song.Markers, catalog.Marker{
				ID:        fmt.Sprintf("marker_%d_%v", len(song.Markers), ts),
				Timestamp: ts,
			})
		}
	}
	if err := markerRows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT song_id, tag_id FROM song_tags WHERE song_id IN (%s)`, ph), args...)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var songID, tagID int64
		if err := tagRows.Scan(&songID, &tagID); err != nil {
			return nil, err
		}
		if song, ok := songs[songID]; ok {
			song.TagIDs = append(song.TagIDs, tagID)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	result := make([]*catalog.Song, 0, len(songs))
	for _, id := range ids {
		if song, ok := songs[id]; ok {
			result = append(result, song)
		}
	}
	return result, nil
}

func songIDsByPaths(ctx context.Context, q querier, paths []string) ([]int64, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	rows, err := q.QueryContext(ctx, fmt.Sprintf(
		`SELECT id FROM songs WHERE path IN (%s)`, placeholders(len(paths))), stringArgs(paths)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func songIDByPath(ctx context.Context, q querier, path string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM songs WHERE path = ?`, path).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("song %q: %w", path, catalog.ErrNotFound)
	}
	return id, err
}

// UpsertSong inserts a song if its path is unknown and returns the row id
// either way.
func (d *SqliteCatalog) UpsertSong(ctx context.Context, ref catalog.SongRef) (int64, error) {
	if err := ref.Validate(); err != nil {
		return 0, err
	}
	if _, err := d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO songs (path, name, artist, cover_path) VALUES (?, ?, ?, ?)`,
		ref.Path, ref.Name, ref.Artist, nullIfEmpty(ref.CoverPath)); err != nil {
		return 0, err
	}
	return songIDByPath(ctx, d.db, ref.Path)
}

// SongsByPaths returns fully hydrated songs keyed by path.
func (d *SqliteCatalog) SongsByPaths(ctx context.Context, paths []string) (map[string]*catalog.Song, error) {
	ids, err := songIDsByPaths(ctx, d.db, paths)
	if err != nil {
		return nil, err
	}
	songs, err := d.fetchSongsByIDs(ctx, d.db, ids)
	if err != nil {
		return nil, err
	}
	result := make(map[string]*catalog.Song, len(songs))
	for _, song := range songs {
		result[song.Path] = song
	}
	return result, nil
}

// SaveAccentColor persists the RGB triple for a song.
func (d *SqliteCatalog) SaveAccentColor(ctx context.Context, path string, color catalog.Color) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE songs SET accent_color_r = ?, accent_color_g = ?, accent_color_b = ? WHERE path = ?`,
		color.R, color.G, color.B, path)
	return err
}

// SaveMarkers replaces a song's markers with the given timestamps.
func (d *SqliteCatalog) SaveMarkers(ctx context.Context, path string, timestamps []float64) error {
	songID, err := songIDByPath(ctx, d.db, path)
	if err != nil {
		return err
	}
	return withTx(ctx, d.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM markers WHERE song_id = ?`, songID); err != nil {
			return err
		}
		for _, ts := range timestamps {
			if _, err := tx.ExecContext(ctx, `INSERT INTO markers (song_id, timestamp) VALUES (?, ?)`, songID, ts); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateDetails applies a metadata edit to every given song in a single
// transaction. Tag deltas take precedence over the replacement list; the
// replacement list is only honored for a single target song.
func (d *SqliteCatalog) UpdateDetails(ctx context.Context, paths []string, upd catalog.DetailsUpdate) ([]*catalog.Song, error) {
	ids, err := songIDsByPaths(ctx, d.db, paths)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = withTx(ctx, d.db, func(tx *sql.Tx) error {
		var setParts []string
		var args []any
		if upd.Name != nil {
			setParts = append(setParts, "name = ?")
			args = append(args, *upd.Name)
		}
		if upd.Artist != nil {
			setParts = append(setParts, "artist = ?")
			args = append(args, *upd.Artist)
		}
		if len(setParts) > 0 {
			args = append(args, int64Args(ids)...)
			query := fmt.Sprintf(`UPDATE songs SET %s WHERE id IN (%s)`,
				strings.Join(setParts, ", "), placeholders(len(ids)))
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}

		switch {
		case upd.HasTagDeltas():
			for _, songID := range ids {
				for _, tagID := range upd.TagsToAdd {
					if _, err := tx.ExecContext(ctx,
						`INSERT OR IGNORE INTO song_tags (song_id, tag_id) VALUES (?, ?)`, songID, tagID); err != nil {
						return err
					}
				}
			}
			if len(upd.TagsToRemove) > 0 {
				query := fmt.Sprintf(`DELETE FROM song_tags WHERE song_id IN (%s) AND tag_id IN (%s)`,
					placeholders(len(ids)), placeholders(len(upd.TagsToRemove)))
				args := append(int64Args(ids), int64Args(upd.TagsToRemove)...)
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return err
				}
			}
		case upd.TagIDs != nil && len(ids) == 1:
			songID := ids[0]
			if _, err := tx.ExecContext(ctx, `DELETE FROM song_tags WHERE song_id = ?`, songID); err != nil {
				return err
			}
			for _, tagID := range *upd.TagIDs {
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO song_tags (song_id, tag_id) VALUES (?, ?)`, songID, tagID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d.fetchSongsByIDs(ctx, d.db, ids)
}

// DeleteSongs removes song rows (cascading markers, memberships and tag
// links) and returns the resolved OS paths of their audio and cover files.
// Physical deletion is the caller's job.
func (d *SqliteCatalog) DeleteSongs(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	var filesToDelete []string
	err := withTx(ctx, d.db, func(tx *sql.Tx) error {
		ph := placeholders(len(paths))
		args := stringArgs(paths)

		rows, err := tx.QueryContext(ctx, fmt.Sprintf(
			`SELECT path, cover_path FROM songs WHERE path IN (%s)`, ph), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var path string
			var coverPath sql.NullString
			if err := rows.Scan(&path, &coverPath); err != nil {
				return err
			}
			filesToDelete = append(filesToDelete, d.resolver.ToOSPath(path))
			if coverPath.String != "" {
				filesToDelete = append(filesToDelete, d.resolver.ToOSPath(coverPath.String))
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM songs WHERE path IN (%s)`, ph), args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return filesToDelete, nil
}

// ChangeCover sets a new cover and resets the accent color, since a cover
// change invalidates any previously computed color.
func (d *SqliteCatalog) ChangeCover(ctx context.Context, path, coverPath string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE songs SET cover_path = ?, accent_color_r = NULL, accent_color_g = NULL, accent_color_b = NULL
		WHERE path = ?`, coverPath, path)
	return err
}

// SongExists reports whether the path is already in the library.
func (d *SqliteCatalog) SongExists(ctx context.Context, path string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, `SELECT 1 FROM songs WHERE path = ?`, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// AllSongPaths returns the set of every song path in the library.
func (d *SqliteCatalog) AllSongPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT path FROM songs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths[path] = struct{}{}
	}
	return paths, rows.Err()
}

// ExistingTitles returns the subset of titles already present, lowercased.
func (d *SqliteCatalog) ExistingTitles(ctx context.Context, titles []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	unique := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		if title != "" {
			unique[strings.ToLower(title)] = struct{}{}
		}
	}
	if len(unique) == 0 {
		return existing, nil
	}
	lowered := make([]string, 0, len(unique))
	for title := range unique {
		lowered = append(lowered, title)
	}

	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT lower(name) FROM songs WHERE lower(name) IN (%s)`, placeholders(len(lowered))),
		stringArgs(lowered)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		existing[name] = struct{}{}
	}
	return existing, rows.Err()
}

// SongsWithCovers lists every song that has a cover path.
func (d *SqliteCatalog) SongsWithCovers(ctx context.Context) ([]catalog.CoverRef, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT path, cover_path FROM songs WHERE cover_path IS NOT NULL AND cover_path != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []catalog.CoverRef
	for rows.Next() {
		var ref catalog.CoverRef
		if err := rows.Scan(&ref.Path, &ref.CoverPath); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
