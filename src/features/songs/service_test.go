package songs

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/infra/artwork"
	"github.com/zqily/FNote-v2/src/infra/tagmeta"
)

type fakeStore struct {
	catalog.Store

	songs          map[string]*catalog.Song
	knownPaths     map[string]struct{}
	existingTitles map[string]struct{}
}

func (f *fakeStore) SongsByPaths(_ context.Context, paths []string) (map[string]*catalog.Song, error) {
	result := make(map[string]*catalog.Song)
	for _, path := range paths {
		if song, ok := f.songs[path]; ok {
			result[path] = song
		}
	}
	return result, nil
}

func (f *fakeStore) ChangeCover(_ context.Context, path, coverPath string) error {
	f.songs[path].CoverPath = coverPath
	f.songs[path].AccentColor = nil
	return nil
}

func (f *fakeStore) SaveAccentColor(_ context.Context, path string, c catalog.Color) error {
	f.songs[path].AccentColor = &c
	return nil
}

func (f *fakeStore) AllSongPaths(context.Context) (map[string]struct{}, error) {
	return f.knownPaths, nil
}

func (f *fakeStore) ExistingTitles(context.Context, []string) (map[string]struct{}, error) {
	return f.existingTitles, nil
}

// fakeMedia maps web paths straight back to the OS paths they came from.
type fakeMedia struct {
	toOS  map[string]string
	toWeb map[string]string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{toOS: map[string]string{}, toWeb: map[string]string{}}
}

func (m *fakeMedia) register(osPath, webPath string) {
	m.toOS[webPath] = osPath
	m.toWeb[osPath] = webPath
}

func (m *fakeMedia) CopyIn(srcPath string) (string, error) {
	webPath := "/media/" + filepath.Base(srcPath)
	m.register(srcPath, webPath)
	return webPath, nil
}

func (m *fakeMedia) MoveIn(srcPath string) (string, error) { return m.CopyIn(srcPath) }

func (m *fakeMedia) SaveCover(_ []byte, baseName, ext string) (string, error) {
	return "/media/" + baseName + ext, nil
}

func (m *fakeMedia) DeleteFiles([]string) {}

func (m *fakeMedia) ToOSPath(webPath string) string {
	if osPath, ok := m.toOS[webPath]; ok {
		return osPath
	}
	return webPath
}

func (m *fakeMedia) ToWebPath(osPath string) string {
	if webPath, ok := m.toWeb[osPath]; ok {
		return webPath
	}
	return osPath
}

type recordingWriter struct {
	paths []string
	metas []*tagmeta.Meta
}

func (w *recordingWriter) WriteFile(path string, meta *tagmeta.Meta) error {
	w.paths = append(w.paths, path)
	w.metas = append(w.metas, meta)
	return nil
}

// stubReader derives metadata from the filename, like the real reader does
// for untagged files.
type stubReader struct{}

func (stubReader) ReadFile(path string) (*tagmeta.Meta, error) {
	artist, title := catalog.ParseArtistTitle(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return &tagmeta.Meta{Title: title, Artist: artist}, nil
}

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestChangeCoverEmbedsNormalizedCover(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "new-cover.png")
	writeTestImage(t, imagePath)
	songOSPath := filepath.Join(dir, "song.mp3")

	store := &fakeStore{songs: map[string]*catalog.Song{
		"/media/song.mp3": {Path: "/media/song.mp3", Name: "Song", Artist: "Artist"},
	}}
	media := newFakeMedia()
	media.register(songOSPath, "/media/song.mp3")
	writer := &recordingWriter{}
	service := NewService(store, media, stubReader{}, writer, artwork.NewService())

	song, err := service.ChangeCover(context.Background(), "/media/song.mp3", imagePath)
	require.NoError(t, err)
	assert.Equal(t, "/media/new-cover.png", song.CoverPath)
	assert.NotNil(t, song.AccentColor)

	require.Len(t, writer.metas, 1, "cover change must rewrite the file tags")
	assert.Equal(t, songOSPath, writer.paths[0])
	meta := writer.metas[0]
	assert.Equal(t, "Song", meta.Title)
	assert.Equal(t, "Artist", meta.Artist)
	assert.NotEmpty(t, meta.CoverData, "cover bytes must be embedded")
	assert.Equal(t, "image/jpeg", meta.CoverMIME)
}

func TestScanNewFilesSkipsKnownAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Artist - Fresh.flac", "Artist - Known.mp3", "Artist - New Song.mp3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "covers"), 0755))

	media := newFakeMedia()
	media.register(filepath.Join(dir, "Artist - Known.mp3"), "/media/Artist - Known.mp3")
	store := &fakeStore{
		knownPaths:     map[string]struct{}{"/media/Artist - Known.mp3": {}},
		existingTitles: map[string]struct{}{"new song": {}},
	}
	service := NewService(store, media, stubReader{}, &recordingWriter{}, artwork.NewService())

	candidates, err := service.ScanNewFiles(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Fresh", candidates[0].Name)
	assert.Equal(t, "Artist", candidates[0].Artist)
	assert.False(t, candidates[0].IsDuplicate)
	assert.Equal(t, "New Song", candidates[1].Name)
	assert.True(t, candidates[1].IsDuplicate, "titles already in the library are flagged")
}

func TestScanNewFilesNothingNew(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Artist - Known.mp3"), []byte("x"), 0644))

	media := newFakeMedia()
	media.register(filepath.Join(dir, "Artist - Known.mp3"), "/media/Artist - Known.mp3")
	store := &fakeStore{knownPaths: map[string]struct{}{"/media/Artist - Known.mp3": {}}}
	service := NewService(store, media, stubReader{}, &recordingWriter{}, artwork.NewService())

	candidates, err := service.ScanNewFiles(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
