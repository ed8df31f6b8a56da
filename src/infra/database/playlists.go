package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zqily/FNote-v2/src/catalog"
)

func playlistIDByName(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("playlist %q: %w", name, catalog.ErrNotFound)
	}
	return id, err
}

// InitialData returns the startup snapshot in one membership query. When no
// playlist exists at all the Default playlist is created first; when the
// remembered active playlist is gone the first playlist in display order
// takes its place.
func (d *SqliteCatalog) InitialData(ctx context.Context, activePlaylist string) (*catalog.InitialData, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists`).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		if _, err := d.db.ExecContext(ctx,
			`INSERT INTO playlists (name, order_index) VALUES (?, 0)`, catalog.DefaultPlaylistName); err != nil {
			return nil, err
		}
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT p.name, s.path
		FROM playlists p
		LEFT JOIN playlist_songs ps ON ps.playlist_id = p.id
		LEFT JOIN songs s ON s.id = ps.song_id
		ORDER BY p.order_index, ps.song_order_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := &catalog.InitialData{Playlists: map[string][]string{}}
	for rows.Next() {
		var name string
		var path sql.NullString
		if err := rows.Scan(&name, &path); err != nil {
			return nil, err
		}
		if _, seen := data.Playlists[name]; !seen {
			data.Playlists[name] = []string{}
			data.PlaylistOrder = append(data.PlaylistOrder, name)
		}
		if path.Valid {
			data.Playlists[name] = append(data.Playlists[name], path.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	data.ActivePlaylist = activePlaylist
	if _, ok := data.Playlists[data.ActivePlaylist]; !ok && len(data.PlaylistOrder) > 0 {
		data.ActivePlaylist = data.PlaylistOrder[0]
	}

	tags, err := d.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	data.Tags = tags
	return data, nil
}

// CreatePlaylist appends a playlist at the end of the display order.
func (d *SqliteCatalog) CreatePlaylist(ctx context.Context, name string) error {
	if err := catalog.ValidatePlaylistName(name); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO playlists (name, order_index)
		VALUES (?, (SELECT COALESCE(MAX(order_index), -1) + 1 FROM playlists))`, name)
	if isUniqueViolation(err) {
		return fmt.Errorf("playlist %q: %w", name, catalog.ErrNameConflict)
	}
	return err
}

// RenamePlaylist renames a playlist, failing with ErrNameConflict when the
// new name is taken.
func (d *SqliteCatalog) RenamePlaylist(ctx context.Context, oldName, newName string) error {
	if err := catalog.ValidatePlaylistName(newName); err != nil {
		return err
	}
	res, err := d.db.ExecContext(ctx, `UPDATE playlists SET name = ? WHERE name = ?`, newName, oldName)
	if isUniqueViolation(err) {
		return fmt.Errorf("playlist %q: %w", newName, catalog.ErrNameConflict)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("playlist %q: %w", oldName, catalog.ErrNotFound)
	}
	return nil
}

// ReorderPlaylists reassigns order_index from the full ordered name list.
func (d *SqliteCatalog) ReorderPlaylists(ctx context.Context, nameOrder []string) error {
	return withTx(ctx, d.db, func(tx *sql.Tx) error {
		for i, name := range nameOrder {
			if _, err := tx.ExecContext(ctx,
				`UPDATE playlists SET order_index = ? WHERE name = ?`, i, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddSongs appends songs to a playlist, inserting unknown paths as new song
// rows first. Songs already in the playlist keep their position.
func (d *SqliteCatalog) AddSongs(ctx context.Context, playlist string, songs []catalog.SongRef) error {
	if len(songs) == 0 {
		return nil
	}
	playlistID, err := playlistIDByName(ctx, d.db, playlist)
	if err != nil {
		return err
	}
	return withTx(ctx, d.db, func(tx *sql.Tx) error {
		var nextOrder int64
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(song_order_index), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`,
			playlistID).Scan(&nextOrder); err != nil {
			return err
		}

		for _, ref := range songs {
			if err := ref.Validate(); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO songs (path, name, artist, cover_path) VALUES (?, ?, ?, ?)`,
				ref.Path, ref.Name, ref.Artist, nullIfEmpty(ref.CoverPath)); err != nil {
				return err
			}
			songID, err := songIDByPath(ctx, tx, ref.Path)
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, song_order_index)
				VALUES (?, ?, ?)`, playlistID, songID, nextOrder)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n > 0 {
				nextOrder++
			}
		}
		return nil
	})
}

// ReorderSongs reassigns membership order from the full ordered path list.
func (d *SqliteCatalog) ReorderSongs(ctx context.Context, playlist string, pathOrder []string) error {
	playlistID, err := playlistIDByName(ctx, d.db, playlist)
	if err != nil {
		return err
	}
	return withTx(ctx, d.db, func(tx *sql.Tx) error {
		for i, path := range pathOrder {
			if _, err := tx.ExecContext(ctx, `
				UPDATE playlist_songs SET song_order_index = ?
				WHERE playlist_id = ? AND song_id = (SELECT id FROM songs WHERE path = ?)`,
				i, playlistID, path); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveSongs atomically moves songs from one playlist to another, appending
// them to the target in the given order. Songs already in the target are
// only removed from the source.
func (d *SqliteCatalog) MoveSongs(ctx context.Context, source, target string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	sourceID, err := playlistIDByName(ctx, d.db, source)
	if err != nil {
		return err
	}
	targetID, err := playlistIDByName(ctx, d.db, target)
	if err != nil {
		return err
	}
	return withTx(ctx, d.db, func(tx *sql.Tx) error {
		var nextOrder int64
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(song_order_index), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`,
			targetID).Scan(&nextOrder); err != nil {
			return err
		}

		for _, path := range paths {
			songID, err := songIDByPath(ctx, tx, path)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, sourceID, songID); err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, song_order_index)
				VALUES (?, ?, ?)`, targetID, songID, nextOrder)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n > 0 {
				nextOrder++
			}
		}
		return nil
	})
}

// DeletePlaylist removes the playlist, then sweeps songs left without any
// playlist membership in the same transaction. The resolved OS paths of the
// swept songs' files are returned for physical deletion.
func (d *SqliteCatalog) DeletePlaylist(ctx context.Context, name string) ([]string, error) {
	playlistID, err := playlistIDByName(ctx, d.db, name)
	if err != nil {
		return nil, err
	}
	var filesToDelete []string
	err = withTx(ctx, d.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, playlistID); err != nil {
			return err
		}
		swept, err := sweepOrphanSongs(ctx, tx, d.resolver)
		if err != nil {
			return err
		}
		filesToDelete = swept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return filesToDelete, nil
}

// sweepOrphanSongs deletes every song that no playlist references and
// returns the resolved OS paths of its audio and cover files. Must run
// inside the transaction that created the orphans.
func sweepOrphanSongs(ctx context.Context, tx *sql.Tx, resolver catalog.PathResolver) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, path, cover_path FROM songs
		WHERE id NOT IN (SELECT DISTINCT song_id FROM playlist_songs)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	var files []string
	for rows.Next() {
		var id int64
		var path string
		var coverPath sql.NullString
		if err := rows.Scan(&id, &path, &coverPath); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		files = append(files, resolver.ToOSPath(path))
		if coverPath.String != "" {
			files = append(files, resolver.ToOSPath(coverPath.String))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM songs WHERE id IN (%s)`, placeholders(len(ids))), int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// SongPaths returns the playlist's song paths in membership order.
func (d *SqliteCatalog) SongPaths(ctx context.Context, playlist string) ([]string, error) {
	playlistID, err := playlistIDByName(ctx, d.db, playlist)
	if err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT s.path FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = ?
		ORDER BY ps.song_order_index`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// AllPlaylistNames returns the set of existing playlist names.
func (d *SqliteCatalog) AllPlaylistNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM playlists`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}
