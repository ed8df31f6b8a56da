package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zqily/FNote-v2/src/catalog"
)

func TestUpsertSongIsIdempotent(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	ref := catalog.SongRef{Path: "https://fnote.local/songs/a.mp3", Name: "Alpha", Artist: "Artist"}
	first, err := cat.UpsertSong(ctx, ref)
	require.NoError(t, err)

	ref.Name = "Renamed Elsewhere"
	second, err := cat.UpsertSong(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	songs, err := cat.SongsByPaths(ctx, []string{ref.Path})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", songs[ref.Path].Name)
}

func TestSongsByPathsHydration(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	path := "https://fnote.local/songs/beat.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, path, "Beat", "Someone")

	require.NoError(t, cat.SaveMarkers(ctx, path, []float64{12.5, 3.0}))
	require.NoError(t, cat.SaveAccentColor(ctx, path, catalog.Color{R: 10, G: 20, B: 30}))
	electronic := tagIDByName(t, cat, "Electronic")
	_, err := cat.UpdateDetails(ctx, []string{path}, catalog.DetailsUpdate{TagsToAdd: []int64{electronic}})
	require.NoError(t, err)

	songs, err := cat.SongsByPaths(ctx, []string{path, "https://fnote.local/songs/unknown.mp3"})
	require.NoError(t, err)
	require.Len(t, songs, 1)

	song := songs[path]
	assert.Equal(t, "Beat", song.Name)
	require.NotNil(t, song.AccentColor)
	assert.Equal(t, catalog.Color{R: 10, G: 20, B: 30}, *song.AccentColor)
	assert.Equal(t, []int64{electronic}, song.TagIDs)
	assert.True(t, song.IsMissing)

	// Markers come back sorted by timestamp regardless of save order.
	require.Len(t, song.Markers, 2)
	assert.Equal(t, 3.0, song.Markers[0].Timestamp)
	assert.Equal(t, 12.5, song.Markers[1].Timestamp)
	assert.Equal(t, "marker_0_3", song.Markers[0].ID)
}

func TestSongsByPathsStatsMediaFile(t *testing.T) {
	resolver := testResolver{root: t.TempDir()}
	cat, err := NewSqliteCatalog(":memory:", resolver)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	ctx := context.Background()

	path := "https://fnote.local/songs/present.mp3"
	osPath := resolver.ToOSPath(path)
	require.NoError(t, os.MkdirAll(filepath.Dir(osPath), 0755))
	require.NoError(t, os.WriteFile(osPath, []byte("audio"), 0644))

	_, err = cat.UpsertSong(ctx, catalog.SongRef{Path: path, Name: "Present"})
	require.NoError(t, err)

	songs, err := cat.SongsByPaths(ctx, []string{path})
	require.NoError(t, err)
	assert.False(t, songs[path].IsMissing)
}

func TestSaveMarkersUnknownSong(t *testing.T) {
	cat := newTestCatalog(t)
	err := cat.SaveMarkers(context.Background(), "https://fnote.local/songs/nope.mp3", []float64{1})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateDetailsTagDeltas(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	pathA := "https://fnote.local/songs/a.mp3"
	pathB := "https://fnote.local/songs/b.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, pathA, "A", "X")
	addSong(t, cat, catalog.DefaultPlaylistName, pathB, "B", "X")

	electronic := tagIDByName(t, cat, "Electronic")
	phonk := tagIDByName(t, cat, "Phonk")

	newArtist := "Y"
	updated, err := cat.UpdateDetails(ctx, []string{pathA, pathB}, catalog.DetailsUpdate{
		Artist:    &newArtist,
		TagsToAdd: []int64{electronic, phonk},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, song := range updated {
		assert.Equal(t, "Y", song.Artist)
		assert.ElementsMatch(t, []int64{electronic, phonk}, song.TagIDs)
	}

	updated, err = cat.UpdateDetails(ctx, []string{pathA}, catalog.DetailsUpdate{
		TagsToRemove: []int64{phonk},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{electronic}, updated[0].TagIDs)
}

func TestUpdateDetailsDeltasWinOverReplacement(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	path := "https://fnote.local/songs/a.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, path, "A", "X")

	electronic := tagIDByName(t, cat, "Electronic")
	phonk := tagIDByName(t, cat, "Phonk")

	replacement := []int64{phonk}
	updated, err := cat.UpdateDetails(ctx, []string{path}, catalog.DetailsUpdate{
		TagsToAdd: []int64{electronic},
		TagIDs:    &replacement,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{electronic}, updated[0].TagIDs)
}

func TestUpdateDetailsReplacementSingleSong(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	path := "https://fnote.local/songs/a.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, path, "A", "X")

	electronic := tagIDByName(t, cat, "Electronic")
	phonk := tagIDByName(t, cat, "Phonk")

	adds := []int64{electronic}
	_, err := cat.UpdateDetails(ctx, []string{path}, catalog.DetailsUpdate{TagsToAdd: adds})
	require.NoError(t, err)

	replacement := []int64{phonk}
	updated, err := cat.UpdateDetails(ctx, []string{path}, catalog.DetailsUpdate{TagIDs: &replacement})
	require.NoError(t, err)
	assert.Equal(t, []int64{phonk}, updated[0].TagIDs)
}

func TestDeleteSongsReturnsFilePaths(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	seedDefaultPlaylist(t, cat)

	path := "https://fnote.local/songs/gone.mp3"
	err := cat.AddSongs(ctx, catalog.DefaultPlaylistName, []catalog.SongRef{
		{Path: path, Name: "Gone", CoverPath: "https://fnote.local/songs/gone.jpg"},
	})
	require.NoError(t, err)

	files, err := cat.DeleteSongs(ctx, []string{path})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files[0], "gone.mp3")
	assert.Contains(t, files[1], "gone.jpg")

	exists, err := cat.SongExists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	paths, err := cat.SongPaths(ctx, catalog.DefaultPlaylistName)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestChangeCoverResetsAccentColor(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	path := "https://fnote.local/songs/a.mp3"
	_, err := cat.UpsertSong(ctx, catalog.SongRef{Path: path, Name: "A"})
	require.NoError(t, err)
	require.NoError(t, cat.SaveAccentColor(ctx, path, catalog.Color{R: 1, G: 2, B: 3}))

	require.NoError(t, cat.ChangeCover(ctx, path, "https://fnote.local/songs/new.jpg"))

	songs, err := cat.SongsByPaths(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "https://fnote.local/songs/new.jpg", songs[path].CoverPath)
	assert.Nil(t, songs[path].AccentColor)
}

func TestExistingTitlesCaseInsensitive(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	_, err := cat.UpsertSong(ctx, catalog.SongRef{Path: "https://fnote.local/songs/a.mp3", Name: "Lo-fi Beat"})
	require.NoError(t, err)

	existing, err := cat.ExistingTitles(ctx, []string{"LO-FI BEAT", "Unknown Song", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"lo-fi beat": {}}, existing)
}
