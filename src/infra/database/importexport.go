package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zqily/FNote-v2/src/catalog"
)

// ExportData assembles the portable manifest for one playlist: each song in
// membership order with its marker timestamps and tag names grouped by
// category.
func (d *SqliteCatalog) ExportData(ctx context.Context, playlist string) (*catalog.PlaylistExport, error) {
	playlistID, err := playlistIDByName(ctx, d.db, playlist)
	if err != nil {
		return nil, err
	}

	export := &catalog.PlaylistExport{Name: playlist, Songs: []catalog.ExportSong{}}

	rows, err := d.db.QueryContext(ctx, `
		SELECT s.id, s.path, s.name, s.artist, s.cover_path
		FROM songs s JOIN playlist_songs ps ON s.id = ps.song_id
		WHERE ps.playlist_id = ?
		ORDER BY ps.song_order_index`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		var song catalog.ExportSong
		var name, artist, coverPath sql.NullString
		if err := rows.Scan(&id, &song.Path, &name, &artist, &coverPath); err != nil {
			return nil, err
		}
		song.Name = name.String
		song.Artist = artist.String
		song.CoverPath = coverPath.String
		song.Markers = []float64{}
		song.Tags = map[string][]string{}
		ids = append(ids, id)
		export.Songs = append(export.Songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return export, nil
	}
	byID := make(map[int64]*catalog.ExportSong, len(ids))
	for i, id := range ids {
		byID[id] = &export.Songs[i]
	}

	ph := placeholders(len(ids))
	args := int64Args(ids)

	markerRows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
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
		if song, ok := byID[songID]; ok {
			song.Markers = append(song.Markers, ts)
		}
	}
	if err := markerRows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT st.song_id, tc.name, t.name
		FROM song_tags st
		JOIN tags t ON t.id = st.tag_id
		JOIN tag_categories tc ON tc.id = t.category_id
		WHERE st.song_id IN (%s)`, ph), args...)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var songID int64
		var catName, tagName string
		if err := tagRows.Scan(&songID, &catName, &tagName); err != nil {
			return nil, err
		}
		if song, ok := byID[songID]; ok {
			song.Tags[catName] = append(song.Tags[catName], tagName)
		}
	}
	return export, tagRows.Err()
}

// ImportData loads a manifest under the given (pre-disambiguated) playlist
// name. The whole load is one transaction built around preloaded lookup
// maps: missing categories and tags are batch-created first, then the
// playlist, songs, memberships, markers and tag links. Manifest order is
// membership order.
func (d *SqliteCatalog) ImportData(ctx context.Context, manifest *catalog.PlaylistExport, name string) (*catalog.ImportResult, error) {
	result := &catalog.ImportResult{
		Name:  name,
		Paths: []string{},
		Songs: map[string]*catalog.Song{},
	}

	err := withTx(ctx, d.db, func(tx *sql.Tx) error {
		categories, err := loadCategoryMap(ctx, tx)
		if err != nil {
			return err
		}
		tags, err := loadTagMap(ctx, tx)
		if err != nil {
			return err
		}

		// Create categories the manifest references but the library lacks,
		// then refresh the map so new ids are visible.
		createdCategory := false
		for _, song := range manifest.Songs {
			for catName := range song.Tags {
				if _, ok := categories[catName]; !ok {
					if _, err := tx.ExecContext(ctx,
						`INSERT OR IGNORE INTO tag_categories (name) VALUES (?)`, catName); err != nil {
						return err
					}
					createdCategory = true
				}
			}
		}
		if createdCategory {
			if categories, err = loadCategoryMap(ctx, tx); err != nil {
				return err
			}
		}

		createdTag := false
		for _, song := range manifest.Songs {
			for catName, tagNames := range song.Tags {
				catID := categories[catName]
				for _, tagName := range tagNames {
					if _, ok := tags[tagKey{tagName, catID}]; !ok {
						if _, err := tx.ExecContext(ctx,
							`INSERT OR IGNORE INTO tags (name, category_id, is_default) VALUES (?, ?, 0)`,
							tagName, catID); err != nil {
							return err
						}
						createdTag = true
					}
				}
			}
		}
		if createdTag {
			if tags, err = loadTagMap(ctx, tx); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO playlists (name, order_index)
			VALUES (?, (SELECT COALESCE(MAX(order_index), -1) + 1 FROM playlists))`, name)
		if isUniqueViolation(err) {
			return fmt.Errorf("playlist %q: %w", name, catalog.ErrNameConflict)
		}
		if err != nil {
			return err
		}
		playlistID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for i, entry := range manifest.Songs {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO songs (path, name, artist, cover_path) VALUES (?, ?, ?, ?)`,
				entry.Path, entry.Name, entry.Artist, nullIfEmpty(entry.CoverPath)); err != nil {
				return err
			}
			songID, err := songIDByPath(ctx, tx, entry.Path)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO playlist_songs (playlist_id, song_id, song_order_index) VALUES (?, ?, ?)`,
				playlistID, songID, i); err != nil {
				return err
			}

			song := &catalog.Song{
				Path:      entry.Path,
				Name:      entry.Name,
				Artist:    entry.Artist,
				CoverPath: entry.CoverPath,
				Markers:   []catalog.Marker{},
				TagIDs:    []int64{},
			}
			for j, ts := range entry.Markers {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO markers (song_id, timestamp) VALUES (?, ?)`, songID, ts); err != nil {
					return err
				}
				song.Markers = append(song.Markers, catalog.Marker{
					ID:        fmt.Sprintf("marker_%d_%v", j, ts),
					Timestamp: ts,
				})
			}
			for catName, tagNames := range entry.Tags {
				catID := categories[catName]
				for _, tagName := range tagNames {
					tagID := tags[tagKey{tagName, catID}]
					if _, err := tx.ExecContext(ctx,
						`INSERT OR IGNORE INTO song_tags (song_id, tag_id) VALUES (?, ?)`, songID, tagID); err != nil {
						return err
					}
					song.TagIDs = append(song.TagIDs, tagID)
				}
			}

			result.Paths = append(result.Paths, entry.Path)
			result.Songs[entry.Path] = song
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type tagKey struct {
	Name       string
	CategoryID int64
}

func loadCategoryMap(ctx context.Context, q querier) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM tag_categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		m[name] = id
	}
	return m, rows.Err()
}

func loadTagMap(ctx context.Context, q querier) (map[tagKey]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, category_id FROM tags`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[tagKey]int64)
	for rows.Next() {
		var id, catID int64
		var name string
		if err := rows.Scan(&id, &name, &catID); err != nil {
			return nil, err
		}
		m[tagKey{name, catID}] = id
	}
	return m, rows.Err()
}
