package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"facedetection/internal/models"
	"facedetection/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanAndIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "sub/b.PNG", "sub/song.mp3", "clip.mp4", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	}

	items, skipped, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, items, 4)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), items[0].Data)
	assert.Equal(t, models.MediaImage, items[0].Kind)
	assert.Equal(t, "image/jpeg", items[0].MimeType)
	assert.Equal(t, int64(4), items[0].Size)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	defer store.Close()

	calls := 0
	uris, err := Index(context.Background(), store, items, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	require.Len(t, uris, 4)
	assert.Regexp(t, `^content://media/external/video/media/\d+$`, uris[1])

	// Every indexed URI resolves back to its file.
	r := newResolver(store, dir)
	for i, uri := range uris {
		path, ok := r.Resolve(context.Background(), uri)
		require.True(t, ok, uri)
		assert.Equal(t, items[i].Data, path)
	}

	// Re-indexing the same files keeps their ids.
	again, err := Index(context.Background(), store, items, nil)
	require.NoError(t, err)
	assert.Equal(t, uris, again)

	n, err := store.Count(context.Background(), models.MediaImage)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScan_MissingDir(t *testing.T) {
	_, _, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

