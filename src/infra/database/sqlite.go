package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zqily/FNote-v2/src/catalog"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteCatalog is the SQLite implementation of catalog.Store. All
// multi-table mutations run inside a single transaction; foreign keys are
// enforced on every connection.
type SqliteCatalog struct {
	db       *sql.DB
	resolver catalog.PathResolver
}

// Default tags seeded at initialization. Seeding is idempotent and never
// touches user-defined tags.
var defaultTagSeed = []struct {
	Category string
	Tags     []string
}{
	{"Genre", []string{
		"Lo-fi / Chillhop", "Electronic", "Cinematic", "Ambient", "Acoustic",
		"Corporate", "8-bit / Chiptune", "Funk", "Orchestral", "Synthwave",
		"Phonk", "Hip Hop", "Pop", "Rock", "Jazz", "Folk", "EDM", "Indie",
		"R&B / Soul",
	}},
	{"Mood/Vibe", []string{
		"Uplifting", "Energetic", "Calm / Relaxing", "Epic / Dramatic",
		"Happy / Cheerful", "Serious / Focused", "Mysterious", "Nostalgic",
		"Funny / Quirky", "Inspirational", "Suspenseful", "Reflective / Pensive",
		"Driving / Pumping", "Dreamy / Ethereal", "Playful", "Cool / Smooth",
	}},
	{"Use Case", []string{
		"Intro / Opener", "Outro / Closer", "Background Music", "Montage",
		"Vlog Music", "Tutorial", "Livestreaming", "Time-lapse", "Gaming",
		"Ad / Commercial", "Podcast", "Documentary", "Explainer Video",
		"Presentation", "Workout", "Travel Video", "Product Demo", "Storytelling",
	}},
}

// NewSqliteCatalog opens (or creates) the database at path, creates the
// schema and seeds default tags. Safe to call on every startup.
func NewSqliteCatalog(path string, resolver catalog.PathResolver) (*SqliteCatalog, error) {
	dsn := fmt.Sprintf("file:%s?_fk=1&_busy_timeout=10000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; a single pooled connection keeps
	// the foreign-key pragma and the in-memory test databases stable.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := seedDefaultTags(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteCatalog{db: db, resolver: resolver}, nil
}

// Close closes the underlying database.
func (d *SqliteCatalog) Close() error {
	return d.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS songs (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			name TEXT,
			artist TEXT,
			cover_path TEXT,
			accent_color_r INTEGER,
			accent_color_g INTEGER,
			accent_color_b INTEGER
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			order_index INTEGER
		);

		CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id INTEGER NOT NULL,
			song_id INTEGER NOT NULL,
			song_order_index INTEGER NOT NULL,
			PRIMARY KEY (playlist_id, song_id),
			FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
			FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS markers (
			id INTEGER PRIMARY KEY,
			song_id INTEGER NOT NULL,
			timestamp REAL NOT NULL,
			FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS tag_categories (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category_id INTEGER NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0,
			UNIQUE(name, category_id),
			FOREIGN KEY (category_id) REFERENCES tag_categories(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS song_tags (
			song_id INTEGER NOT NULL,
			tag_id INTEGER NOT NULL,
			PRIMARY KEY (song_id, tag_id),
			FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE,
			FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_songs_path ON songs (path);
		CREATE INDEX IF NOT EXISTS idx_markers_song_id ON markers (song_id);

		CREATE VIRTUAL TABLE IF NOT EXISTS songs_fts USING fts5(
			name, artist, content='songs', content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS songs_ai AFTER INSERT ON songs BEGIN
			INSERT INTO songs_fts(rowid, name, artist) VALUES (new.id, new.name, new.artist);
		END;

		CREATE TRIGGER IF NOT EXISTS songs_ad AFTER DELETE ON songs BEGIN
			INSERT INTO songs_fts(songs_fts, rowid, name, artist) VALUES ('delete', old.id, old.name, old.artist);
		END;

		CREATE TRIGGER IF NOT EXISTS songs_au AFTER UPDATE ON songs BEGIN
			INSERT INTO songs_fts(songs_fts, rowid, name, artist) VALUES ('delete', old.id, old.name, old.artist);
			INSERT INTO songs_fts(rowid, name, artist) VALUES (new.id, new.name, new.artist);
		END;
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// Repopulate the index from existing rows; harmless on an empty table.
	if _, err := db.Exec(`INSERT INTO songs_fts(songs_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}
	return nil
}

func seedDefaultTags(db *sql.DB) error {
	return withTx(context.Background(), db, func(tx *sql.Tx) error {
		for _, seed := range defaultTagSeed {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO tag_categories (name) VALUES (?)`, seed.Category); err != nil {
				return err
			}
			var catID int64
			if err := tx.QueryRow(`SELECT id FROM tag_categories WHERE name = ?`, seed.Category).Scan(&catID); err != nil {
				return err
			}
			for _, name := range seed.Tags {
				if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name, category_id, is_default) VALUES (?, ?, 1)`, name, catID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction, rolling back on every error path.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// querier is satisfied by both *sql.DB and *sql.Tx so shared query helpers
// can run inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func stringArgs(vals []string) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
