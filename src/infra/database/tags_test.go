package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zqily/FNote-v2/src/catalog"
)

func firstCategory(t *testing.T, cat *SqliteCatalog) catalog.TagCategory {
	t.Helper()
	tree, err := cat.CategoryTree(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tree)
	return tree[0]
}

func TestCategoryTreeSeeded(t *testing.T) {
	cat := newTestCatalog(t)

	tree, err := cat.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, "Genre", tree[0].Name)
	assert.Equal(t, "Mood/Vibe", tree[1].Name)
	assert.Equal(t, "Use Case", tree[2].Name)
	for _, category := range tree {
		assert.NotEmpty(t, category.Tags)
		for _, tag := range category.Tags {
			assert.True(t, tag.IsDefault)
		}
	}
}

func TestCreateTag(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	category := firstCategory(t, cat)

	tag, err := cat.CreateTag(ctx, "My Custom Genre", category.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Custom Genre", tag.Name)
	assert.Equal(t, category.ID, tag.CategoryID)
	assert.False(t, tag.IsDefault)

	_, err = cat.CreateTag(ctx, "my custom genre", category.ID)
	assert.ErrorIs(t, err, catalog.ErrAlreadyExists)

	_, err = cat.CreateTag(ctx, "  ", category.ID)
	assert.ErrorIs(t, err, catalog.ErrInvalidOperation)
}

func TestRenameTag(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	category := firstCategory(t, cat)

	tag, err := cat.CreateTag(ctx, "Draft", category.ID)
	require.NoError(t, err)

	require.NoError(t, cat.RenameTag(ctx, tag.ID, "Finished"))

	err = cat.RenameTag(ctx, tag.ID, "ELECTRONIC")
	assert.ErrorIs(t, err, catalog.ErrNameConflict, "case-insensitive collision with seeded tag")

	defaultID := tagIDByName(t, cat, "Electronic")
	assert.ErrorIs(t, cat.RenameTag(ctx, defaultID, "Techno"), catalog.ErrImmutableTag)

	assert.ErrorIs(t, cat.RenameTag(ctx, 999999, "X"), catalog.ErrNotFound)
}

func TestDeleteTag(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	category := firstCategory(t, cat)
	seedDefaultPlaylist(t, cat)

	tag, err := cat.CreateTag(ctx, "Ephemeral", category.ID)
	require.NoError(t, err)

	path := "https://fnote.local/songs/a.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, path, "A", "")
	_, err = cat.UpdateDetails(ctx, []string{path}, catalog.DetailsUpdate{TagsToAdd: []int64{tag.ID}})
	require.NoError(t, err)

	require.NoError(t, cat.DeleteTag(ctx, tag.ID))

	songs, err := cat.SongsByPaths(ctx, []string{path})
	require.NoError(t, err)
	assert.Empty(t, songs[path].TagIDs, "association removed by cascade")

	defaultID := tagIDByName(t, cat, "Electronic")
	assert.ErrorIs(t, cat.DeleteTag(ctx, defaultID), catalog.ErrImmutableTag)
}

func TestMergeTags(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()
	category := firstCategory(t, cat)
	seedDefaultPlaylist(t, cat)

	source, err := cat.CreateTag(ctx, "Electro", category.ID)
	require.NoError(t, err)
	dest := tagIDByName(t, cat, "Electronic")

	pathA := "https://fnote.local/songs/a.mp3"
	pathB := "https://fnote.local/songs/b.mp3"
	addSong(t, cat, catalog.DefaultPlaylistName, pathA, "A", "")
	addSong(t, cat, catalog.DefaultPlaylistName, pathB, "B", "")
	_, err = cat.UpdateDetails(ctx, []string{pathA}, catalog.DetailsUpdate{TagsToAdd: []int64{source.ID}})
	require.NoError(t, err)
	// B already carries dest, so the merge must not duplicate the link.
	_, err = cat.UpdateDetails(ctx, []string{pathB}, catalog.DetailsUpdate{TagsToAdd: []int64{source.ID, dest}})
	require.NoError(t, err)

	result, err := cat.MergeTags(ctx, source.ID, dest)
	require.NoError(t, err)
	require.Len(t, result.UpdatedSongs, 2)
	assert.Equal(t, []int64{dest}, result.UpdatedSongs[pathA].TagIDs)
	assert.Equal(t, []int64{dest}, result.UpdatedSongs[pathB].TagIDs)

	for _, category := range result.Tags {
		for _, tag := range category.Tags {
			assert.NotEqual(t, source.ID, tag.ID, "source tag must be gone from the tree")
		}
	}
}

func TestMergeTagsValidation(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	tree, err := cat.CategoryTree(ctx)
	require.NoError(t, err)
	genre, mood := tree[0], tree[1]

	userTag, err := cat.CreateTag(ctx, "User Genre", genre.ID)
	require.NoError(t, err)
	otherCatTag, err := cat.CreateTag(ctx, "User Mood", mood.ID)
	require.NoError(t, err)
	destID := tagIDByName(t, cat, "Electronic")

	_, err = cat.MergeTags(ctx, userTag.ID, userTag.ID)
	assert.ErrorIs(t, err, catalog.ErrInvalidOperation)

	_, err = cat.MergeTags(ctx, otherCatTag.ID, destID)
	assert.ErrorIs(t, err, catalog.ErrInvalidOperation)

	_, err = cat.MergeTags(ctx, destID, userTag.ID)
	assert.ErrorIs(t, err, catalog.ErrInvalidOperation)

	_, err = cat.MergeTags(ctx, 999999, destID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	// A rejected merge leaves both tags standing.
	tagIDByName(t, cat, "User Genre")
	tagIDByName(t, cat, "User Mood")
}
