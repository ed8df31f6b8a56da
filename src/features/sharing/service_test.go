package sharing

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zqily/FNote-v2/src/catalog"
	"github.com/zqily/FNote-v2/src/infra/files"
)

type fakeStore struct {
	catalog.Store

	exportData *catalog.PlaylistExport
	names      map[string]struct{}

	importedManifest *catalog.PlaylistExport
	importedName     string
}

func (f *fakeStore) ExportData(ctx context.Context, playlist string) (*catalog.PlaylistExport, error) {
	return f.exportData, nil
}

func (f *fakeStore) AllPlaylistNames(ctx context.Context) (map[string]struct{}, error) {
	return f.names, nil
}

func (f *fakeStore) ImportData(ctx context.Context, manifest *catalog.PlaylistExport, name string) (*catalog.ImportResult, error) {
	f.importedManifest = manifest
	f.importedName = name
	paths := make([]string, len(manifest.Songs))
	for i, s := range manifest.Songs {
		paths[i] = s.Path
	}
	return &catalog.ImportResult{Name: name, Paths: paths}, nil
}

func TestDisambiguate(t *testing.T) {
	existing := map[string]struct{}{
		"Chill":     {},
		"Chill (1)": {},
	}
	assert.Equal(t, "Chill (2)", disambiguate("Chill", existing))
	assert.Equal(t, "Focus", disambiguate("Focus", existing))
}

func TestExportImportArchiveRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	media, err := files.NewMediaStore(dataDir)
	require.NoError(t, err)

	audio := filepath.Join(media.SongsDir(), "lofi.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("audio-bytes"), 0644))
	cover := filepath.Join(media.SongsDir(), "lofi_cover.jpg")
	require.NoError(t, os.WriteFile(cover, []byte("cover-bytes"), 0644))

	store := &fakeStore{
		exportData: &catalog.PlaylistExport{
			Name: "Chill",
			Songs: []catalog.ExportSong{{
				Name:      "Lofi Rain",
				Artist:    "Dusk",
				Path:      media.ToWebPath(audio),
				CoverPath: media.ToWebPath(cover),
				Markers:   []float64{1.5},
				Tags:      map[string][]string{"Genre": {"Electronic"}},
			}},
		},
		names: map[string]struct{}{"Chill": {}},
	}
	service := NewService(store, media)

	archive := filepath.Join(t.TempDir(), "chill.zip")
	require.NoError(t, service.ExportArchive(context.Background(), "Chill", archive))

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	entryNames := make(map[string]struct{})
	for _, f := range zr.File {
		entryNames[f.Name] = struct{}{}
	}
	zr.Close()
	assert.Contains(t, entryNames, "playlist_data.json")
	assert.Contains(t, entryNames, "media/lofi.mp3")
	assert.Contains(t, entryNames, "media/lofi_cover.jpg")

	result, err := service.ImportArchive(context.Background(), archive)
	require.NoError(t, err)
	assert.Equal(t, "Chill (1)", result.Name)
	require.Len(t, store.importedManifest.Songs, 1)

	imported := store.importedManifest.Songs[0]
	assert.Equal(t, "Lofi Rain", imported.Name)
	assert.Equal(t, []float64{1.5}, imported.Markers)

	// lofi.mp3 already exists in the media dir, so the copy gets a suffix.
	data, err := os.ReadFile(media.ToOSPath(imported.Path))
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
	assert.NotEqual(t, media.ToWebPath(audio), imported.Path)
}

func TestImportArchiveRejectsGarbage(t *testing.T) {
	dataDir := t.TempDir()
	media, err := files.NewMediaStore(dataDir)
	require.NoError(t, err)
	service := NewService(&fakeStore{names: map[string]struct{}{}}, media)

	notZip := filepath.Join(t.TempDir(), "not.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0644))
	_, err = service.ImportArchive(context.Background(), notZip)
	assert.ErrorIs(t, err, catalog.ErrInvalidArchive)

	// A real zip without the manifest is just as invalid.
	noManifest := filepath.Join(t.TempDir(), "empty.zip")
	out, err := os.Create(noManifest)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	part, err := zw.Create("media/whatever.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	_, err = service.ImportArchive(context.Background(), noManifest)
	assert.ErrorIs(t, err, catalog.ErrInvalidArchive)
}

func TestImportArchiveRejectsMissingMediaEntry(t *testing.T) {
	dataDir := t.TempDir()
	media, err := files.NewMediaStore(dataDir)
	require.NoError(t, err)
	service := NewService(&fakeStore{names: map[string]struct{}{}}, media)

	archive := filepath.Join(t.TempDir(), "broken.zip")
	out, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	part, err := zw.Create("playlist_data.json")
	require.NoError(t, err)
	manifest := catalog.PlaylistExport{
		Name:  "Broken",
		Songs: []catalog.ExportSong{{Name: "Ghost", Path: "media/ghost.mp3"}},
	}
	require.NoError(t, json.NewEncoder(part).Encode(manifest))
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	_, err = service.ImportArchive(context.Background(), archive)
	assert.ErrorIs(t, err, catalog.ErrInvalidArchive)
}

func TestExportM3U(t *testing.T) {
	dataDir := t.TempDir()
	media, err := files.NewMediaStore(dataDir)
	require.NoError(t, err)

	audio := filepath.Join(media.SongsDir(), "rock.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("x"), 0644))

	store := &fakeStore{
		exportData: &catalog.PlaylistExport{
			Name:  "Road",
			Songs: []catalog.ExportSong{{Name: "Highway", Artist: "Gravel", Path: media.ToWebPath(audio)}},
		},
	}
	service := NewService(store, media)

	dest := filepath.Join(t.TempDir(), "road.m3u")
	require.NoError(t, service.ExportM3U(context.Background(), "Road", dest))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n"+audio+"\n", string(content))
}
