package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zqily/FNote-v2/src/catalog"
)

// testResolver maps web paths into a temp dir so IsMissing stats and file
// path resolution behave deterministically.
type testResolver struct {
	root string
}

func (r testResolver) ToOSPath(webPath string) string {
	return filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(webPath, "https://fnote.local/")))
}

func (r testResolver) ToWebPath(osPath string) string {
	rel, _ := filepath.Rel(r.root, osPath)
	return "https://fnote.local/" + filepath.ToSlash(rel)
}

func newTestCatalog(t *testing.T) *SqliteCatalog {
	t.Helper()
	cat, err := NewSqliteCatalog(":memory:", testResolver{root: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func addSong(t *testing.T, cat *SqliteCatalog, playlist, path, name, artist string) {
	t.Helper()
	err := cat.AddSongs(context.Background(), playlist, []catalog.SongRef{
		{Path: path, Name: name, Artist: artist},
	})
	require.NoError(t, err)
}

// seedDefaultPlaylist ensures the Default playlist exists the same way a
// fresh startup would.
func seedDefaultPlaylist(t *testing.T, cat *SqliteCatalog) {
	t.Helper()
	_, err := cat.InitialData(context.Background(), catalog.DefaultPlaylistName)
	require.NoError(t, err)
}

func tagIDByName(t *testing.T, cat *SqliteCatalog, name string) int64 {
	t.Helper()
	tree, err := cat.CategoryTree(context.Background())
	require.NoError(t, err)
	for _, category := range tree {
		for _, tag := range category.Tags {
			if tag.Name == name {
				return tag.ID
			}
		}
	}
	t.Fatalf("tag %q not found", name)
	return 0
}
