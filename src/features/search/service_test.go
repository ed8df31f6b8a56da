package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zqily/FNote-v2/src/catalog"
)

type fakeStore struct {
	catalog.Store

	searchAllCalls      int
	searchPlaylistCalls int
	lastQuery           catalog.Query
	lastPlaylist        string
}

func (f *fakeStore) SearchAll(ctx context.Context, q catalog.Query) (*catalog.SearchResult, error) {
	f.searchAllCalls++
	f.lastQuery = q
	return &catalog.SearchResult{Songs: []*catalog.Song{}, Suggestions: []string{}}, nil
}

func (f *fakeStore) SearchPlaylist(ctx context.Context, playlist string, q catalog.Query) (*catalog.SearchResult, error) {
	f.searchPlaylistCalls++
	f.lastPlaylist = playlist
	f.lastQuery = q
	return &catalog.SearchResult{Songs: []*catalog.Song{}, Suggestions: []string{}}, nil
}

func TestSearchAllShortCircuitsBlankQuery(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store)

	for _, raw := range []string{"", "   ", "\t\n"} {
		result, err := service.SearchAll(context.Background(), raw)
		require.NoError(t, err)
		assert.Empty(t, result.Songs)
		assert.Empty(t, result.Suggestions)
	}
	assert.Zero(t, store.searchAllCalls, "blank queries must not hit the database")
}

func TestSearchAllParsesTagFilters(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store)

	_, err := service.SearchAll(context.Background(), "lofi t:electronic tag:'vlog music'")
	require.NoError(t, err)
	require.Equal(t, 1, store.searchAllCalls)
	assert.Equal(t, "lofi", store.lastQuery.Text)
	assert.Equal(t, []string{"electronic", "vlog music"}, store.lastQuery.Tags)
}

func TestSearchPlaylistPassesBlankQueryThrough(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store)

	_, err := service.SearchPlaylist(context.Background(), "Chill", "")
	require.NoError(t, err)
	require.Equal(t, 1, store.searchPlaylistCalls)
	assert.Equal(t, "Chill", store.lastPlaylist)
	assert.True(t, store.lastQuery.IsEmpty())
}
