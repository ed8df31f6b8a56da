package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MediaStore {
	t.Helper()
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestWebPathRoundTrip(t *testing.T) {
	store := newTestStore(t)

	osPath := filepath.Join(store.SongsDir(), "track.mp3")
	web := store.ToWebPath(osPath)
	assert.Equal(t, LocalOrigin+"/songs/track.mp3", web)
	assert.Equal(t, osPath, store.ToOSPath(web))
}

func TestToOSPathLegacySchemes(t *testing.T) {
	store := newTestStore(t)
	want := filepath.Join(store.SongsDir(), "old.mp3")

	assert.Equal(t, want, store.ToOSPath("fnote://songs/old.mp3"))
	assert.Equal(t, want, store.ToOSPath("songs/old.mp3"))
}

func TestAllocateFilenameDisambiguates(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(store.SongsDir(), "song.mp3"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.SongsDir(), "song_1.mp3"), []byte("x"), 0644))

	assert.Equal(t, "song_2.mp3", store.AllocateFilename("song.mp3"))
	assert.Equal(t, "other.mp3", store.AllocateFilename("other.mp3"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Cafe del Mar_ Vol. 1.mp3", SanitizeFilename("Café del Mar: Vol. 1.mp3"))
	assert.Equal(t, "untitled", SanitizeFilename("   "))
}

func TestCopyInAndDeleteFiles(t *testing.T) {
	store := newTestStore(t)

	src := filepath.Join(t.TempDir(), "external.mp3")
	require.NoError(t, os.WriteFile(src, []byte("audio"), 0644))

	web, err := store.CopyIn(src)
	require.NoError(t, err)

	osPath := store.ToOSPath(web)
	data, err := os.ReadFile(osPath)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))

	store.DeleteFiles([]string{osPath, "", filepath.Join(store.SongsDir(), "missing.mp3")})
	_, err = os.Stat(osPath)
	assert.True(t, os.IsNotExist(err))
}
