package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zqily/FNote-v2/src/catalog"
)

func TestExportData(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	path := "https://fnote.local/songs/track.mp3"
	err := cat.AddSongs(ctx, catalog.DefaultPlaylistName, []catalog.SongRef{
		{Path: path, Name: "Track", Artist: "Artist", CoverPath: "https://fnote.local/songs/track.jpg"},
	})
	require.NoError(t, err)
	require.NoError(t, cat.SaveMarkers(ctx, path, []float64{5.5, 1.0}))

	electronic := tagIDByName(t, cat, "Electronic")
	_, err = cat.UpdateDetails(ctx, []string{path}, catalog.DetailsUpdate{TagsToAdd: []int64{electronic}})
	require.NoError(t, err)

	export, err := cat.ExportData(ctx, catalog.DefaultPlaylistName)
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultPlaylistName, export.Name)
	require.Len(t, export.Songs, 1)
	song := export.Songs[0]
	assert.Equal(t, "Track", song.Name)
	assert.Equal(t, "Artist", song.Artist)
	assert.Equal(t, "https://fnote.local/songs/track.jpg", song.CoverPath)
	assert.Equal(t, []float64{1.0, 5.5}, song.Markers)
	assert.Equal(t, map[string][]string{"Genre": {"Electronic"}}, song.Tags)
}

func TestExportDataUnknownPlaylist(t *testing.T) {
	cat := newTestCatalog(t)
	_, err := cat.ExportData(context.Background(), "Nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestImportDataRoundTrip(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	manifest := &catalog.PlaylistExport{
		Name: "Shared Mix",
		Songs: []catalog.ExportSong{
			{
				Name:    "First",
				Artist:  "A",
				Path:    "https://fnote.local/songs/first.mp3",
				Markers: []float64{2.0},
				Tags: map[string][]string{
					"Genre":           {"Electronic"},
					"Custom Category": {"Brand New Tag"},
				},
			},
			{
				Name:   "Second",
				Artist: "B",
				Path:   "https://fnote.local/songs/second.mp3",
				Tags:   map[string][]string{},
			},
		},
	}

	result, err := cat.ImportData(ctx, manifest, "Shared Mix")
	require.NoError(t, err)

	assert.Equal(t, "Shared Mix", result.Name)
	assert.Equal(t, []string{
		"https://fnote.local/songs/first.mp3",
		"https://fnote.local/songs/second.mp3",
	}, result.Paths)

	first := result.Songs["https://fnote.local/songs/first.mp3"]
	require.NotNil(t, first)
	assert.Equal(t, "First", first.Name)
	require.Len(t, first.Markers, 1)
	assert.Equal(t, 2.0, first.Markers[0].Timestamp)
	assert.Len(t, first.TagIDs, 2)
	assert.Nil(t, first.AccentColor)

	// The unknown category and tag were created on the fly.
	tree, err := cat.CategoryTree(ctx)
	require.NoError(t, err)
	var found bool
	for _, category := range tree {
		if category.Name == "Custom Category" {
			found = true
			require.Len(t, category.Tags, 1)
			assert.Equal(t, "Brand New Tag", category.Tags[0].Name)
			assert.False(t, category.Tags[0].IsDefault)
		}
	}
	assert.True(t, found)

	// The imported playlist is queryable like any other.
	paths, err := cat.SongPaths(ctx, "Shared Mix")
	require.NoError(t, err)
	assert.Equal(t, result.Paths, paths)

	export, err := cat.ExportData(ctx, "Shared Mix")
	require.NoError(t, err)
	require.Len(t, export.Songs, 2)
	assert.Equal(t, []float64{2.0}, export.Songs[0].Markers)
}

func TestImportDataExistingSongKeepsMetadata(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	path := "https://fnote.local/songs/known.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, path, "Original Name", "Original Artist")

	manifest := &catalog.PlaylistExport{
		Name: "Incoming",
		Songs: []catalog.ExportSong{
			{Name: "Imported Name", Artist: "Imported Artist", Path: path, Tags: map[string][]string{}},
		},
	}
	_, err := cat.ImportData(ctx, manifest, "Incoming")
	require.NoError(t, err)

	songs, err := cat.SongsByPaths(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "Original Name", songs[path].Name)
	assert.Equal(t, "Original Artist", songs[path].Artist)
}

func TestImportDataNameConflict(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, cat.CreatePlaylist(ctx, "Taken"))

	_, err := cat.ImportData(ctx, &catalog.PlaylistExport{Name: "Taken"}, "Taken")
	assert.ErrorIs(t, err, catalog.ErrNameConflict)
}
