package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
)

// searchSpec builds the dynamic song-id query. Text matches prefix-style
// against the FTS index and ranks by relevance; tag filters intersect, so a
// song must carry every requested tag. Without text the fallback ordering is
// scope-specific (alphabetical globally, membership order in a playlist).
type searchSpec struct {
	joins    []string
	where    []string
	args     []any
	orderBy  string
	tagCount int
}

func newSearchSpec(q catalog.Query, textlessOrder string) *searchSpec {
	spec := &searchSpec{orderBy: textlessOrder}

	if q.Text != "" {
		spec.joins = append(spec.joins, "JOIN songs_fts fts ON s.id = fts.rowid")
		spec.where = append(spec.where, "fts.songs_fts MATCH ?")
		spec.args = append(spec.args, q.Text+"*")
		spec.orderBy = "ORDER BY fts.rank"
	}

	if len(q.Tags) > 0 {
		spec.joins = append(spec.joins,
			"JOIN song_tags st ON s.id = st.song_id JOIN tags t ON st.tag_id = t.id")
		spec.where = append(spec.where, fmt.Sprintf("LOWER(t.name) IN (%s)", placeholders(len(q.Tags))))
		for _, tag := range q.Tags {
			spec.args = append(spec.args, strings.ToLower(tag))
		}
		spec.tagCount = len(q.Tags)
	}
	return spec
}

func (s *searchSpec) sql() (string, []any) {
	query := "SELECT s.id FROM songs s"
	if len(s.joins) > 0 {
		query += " " + strings.Join(s.joins, " ")
	}
	if len(s.where) > 0 {
		query += " WHERE " + strings.Join(s.where, " AND ")
	}
	query += " GROUP BY s.id"
	args := s.args
	if s.tagCount > 0 {
		query += " HAVING COUNT(DISTINCT LOWER(t.name)) = ?"
		args = append(args, s.tagCount)
	}
	return query + " " + s.orderBy, args
}

// SearchAll runs a library-wide search.
func (d *SqliteCatalog) SearchAll(ctx context.Context, q catalog.Query) (*catalog.SearchResult, error) {
	spec := newSearchSpec(q, "ORDER BY s.name")
	return d.runSearch(ctx, spec, q.Text)
}

// SearchPlaylist runs a search scoped to one playlist. An unknown playlist
// yields an empty result rather than an error.
func (d *SqliteCatalog) SearchPlaylist(ctx context.Context, playlist string, q catalog.Query) (*catalog.SearchResult, error) {
	var playlistID int64
	err := d.db.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, playlist).Scan(&playlistID)
	if err == sql.ErrNoRows {
		return &catalog.SearchResult{Songs: []*catalog.Song{}, Suggestions: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	spec := newSearchSpec(q, "ORDER BY ps.song_order_index")
	spec.joins = append([]string{"JOIN playlist_songs ps ON s.id = ps.song_id"}, spec.joins...)
	spec.where = append([]string{"ps.playlist_id = ?"}, spec.where...)
	spec.args = append([]any{playlistID}, spec.args...)

	return d.runSearch(ctx, spec, q.Text)
}

func (d *SqliteCatalog) runSearch(ctx context.Context, spec *searchSpec, text string) (*catalog.SearchResult, error) {
	query, args := spec.sql()
	rows, err := d.db.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	songs, err := d.fetchSongsByIDs(ctx, d.db, ids)
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []*catalog.Song{}
	}

	suggestions, err := d.suggestions(ctx, text)
	if err != nil {
		return nil, err
	}
	return &catalog.SearchResult{Songs: songs, Suggestions: suggestions}, nil
}

// suggestions returns up to 10 distinct name/artist completions for the
// text, alphabetically. The text is quoted so FTS operators in user input
// cannot break the match expression.
func (d *SqliteCatalog) suggestions(ctx context.Context, text string) ([]string, error) {
	suggestions := []string{}
	if text == "" {
		return suggestions, nil
	}
	match := fmt.Sprintf(`"%s"*`, strings.ReplaceAll(text, `"`, `""`))

	rows, err := d.db.QueryContext(ctx, `
		SELECT name AS suggestion FROM songs_fts WHERE name MATCH ?
		UNION
		SELECT artist AS suggestion FROM songs_fts WHERE artist MATCH ?
		ORDER BY suggestion LIMIT 10`, match, match)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s.String != "" {
			suggestions = append(suggestions, s.String)
		}
	}
	return suggestions, rows.Err()
}
