package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"facedetection/internal/config"
	"facedetection/internal/logger"
	"facedetection/internal/models"
	"facedetection/internal/repository"
	"facedetection/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCursor serves canned rows and records whether it was closed.
type fakeCursor struct {
	rows   []*string
	pos    int
	err    error
	closed bool
}

func (c *fakeCursor) Next() bool {
	if c.err != nil || c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Scan(dest ...any) error {
	*(dest[0].(**string)) = c.rows[c.pos-1]
	return nil
}

func (c *fakeCursor) Err() error { return c.err }

func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

type queryCall struct {
	table     string
	columns   []string
	selection string
	args      []any
}

type fakeStore struct {
	cursor *fakeCursor
	err    error
	calls  []queryCall
}

func (s *fakeStore) Query(ctx context.Context, table string, columns []string, selection string, args ...any) (repository.Cursor, error) {
	s.calls = append(s.calls, queryCall{table, columns, selection, args})
	if s.err != nil {
		return nil, s.err
	}
	return s.cursor, nil
}

func strPtr(s string) *string { return &s }

func newResolver(store repository.MediaStore, root string) *Resolver {
	return NewResolver(store, &config.Config{ExternalStorageRoot: root}, logger.New(io.Discard))
}

func TestResolve_ExistingPathIsReturnedUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	store := &fakeStore{}
	got, ok := newResolver(store, "/sdcard").Resolve(context.Background(), path)

	assert.True(t, ok)
	assert.Equal(t, path, got)
	assert.Empty(t, store.calls, "no lookup for existing paths")
}

func TestResolve_FileURIWithExistingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	got, ok := newResolver(&fakeStore{}, "/sdcard").Resolve(context.Background(), "file://"+path)

	assert.True(t, ok)
	assert.Equal(t, path, got)
}

func TestResolve_PrimaryDocument(t *testing.T) {
	r := newResolver(&fakeStore{}, "/storage/emulated/0")

	got, ok := r.Resolve(context.Background(), "content://com.android.providers.media.documents/document/primary%3APictures%2Fa.jpg")
	assert.True(t, ok)
	assert.Equal(t, "/storage/emulated/0/Pictures/a.jpg", got)

	got, ok = r.Resolve(context.Background(), "content://com.android.providers.media.documents/document/PRIMARY:DCIM/b.jpg")
	assert.True(t, ok)
	assert.Equal(t, "/storage/emulated/0/DCIM/b.jpg", got)
}

func TestResolve_MediaDocumentLooksUpByID(t *testing.T) {
	cursor := &fakeCursor{rows: []*string{strPtr("/storage/emulated/0/DCIM/Camera/IMG_31.jpg")}}
	store := &fakeStore{cursor: cursor}

	got, ok := newResolver(store, "/storage/emulated/0").Resolve(context.Background(), "content://com.android.providers.media.documents/document/image%3A31")

	assert.True(t, ok)
	assert.Equal(t, "/storage/emulated/0/DCIM/Camera/IMG_31.jpg", got)
	require.Len(t, store.calls, 1)
	assert.Equal(t, queryCall{"images", []string{"_data"}, "_id=?", []any{"31"}}, store.calls[0])
	assert.True(t, cursor.closed)
}

func TestResolve_MediaDocumentTables(t *testing.T) {
	for docType, table := range map[string]string{"image": "images", "video": "video", "audio": "audio"} {
		t.Run(docType, func(t *testing.T) {
			store := &fakeStore{cursor: &fakeCursor{rows: []*string{strPtr("/x")}}}
			newResolver(store, "/sdcard").Resolve(context.Background(), "content://com.android.providers.media.documents/document/"+docType+":1")
			require.Len(t, store.calls, 1)
			assert.Equal(t, table, store.calls[0].table)
		})
	}
}

func TestResolve_GenericContentURIQueriesDirectly(t *testing.T) {
	cursor := &fakeCursor{rows: []*string{strPtr("/music/song.mp3")}}
	store := &fakeStore{cursor: cursor}
	ref := "content://media/external/audio/media/9"

	got, ok := newResolver(store, "/sdcard").Resolve(context.Background(), ref)

	assert.True(t, ok)
	assert.Equal(t, "/music/song.mp3", got)
	require.Len(t, store.calls, 1)
	assert.Equal(t, ref, store.calls[0].table)
	assert.Empty(t, store.calls[0].selection)
	assert.True(t, cursor.closed)
}

func TestResolve_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		store *fakeStore
	}{
		{"empty reference", "", &fakeStore{}},
		{"missing plain path", "/definitely/not/here.jpg", &fakeStore{}},
		{"missing file uri", "file:///definitely/not/here.jpg", &fakeStore{}},
		{"unknown scheme", "https://example.com/a.jpg", &fakeStore{}},
		{"unknown document type", "content://com.android.providers.media.documents/document/document:4", &fakeStore{}},
		{"document without id", "content://com.android.providers.media.documents/document/image", &fakeStore{}},
		{"no rows", "content://media/external/images/media/1", &fakeStore{cursor: &fakeCursor{}}},
		{"null data", "content://media/external/images/media/1", &fakeStore{cursor: &fakeCursor{rows: []*string{nil}}}},
		{"empty data", "content://media/external/images/media/1", &fakeStore{cursor: &fakeCursor{rows: []*string{strPtr("")}}}},
		{"query error", "content://media/external/images/media/1", &fakeStore{err: errors.New("boom")}},
		{"cursor error", "content://media/external/images/media/1", &fakeStore{cursor: &fakeCursor{err: errors.New("io")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := newResolver(tt.store, "/sdcard").Resolve(context.Background(), tt.ref)
			assert.False(t, ok)
			assert.Empty(t, got)
			if tt.store.cursor != nil {
				assert.True(t, tt.store.cursor.closed, "cursor must be closed")
			}
		})
	}
}

func TestResolve_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Insert(ctx, &models.MediaItem{Kind: models.MediaImage, Data: "/storage/emulated/0/DCIM/c.jpg"})
	require.NoError(t, err)

	r := newResolver(store, "/storage/emulated/0")

	got, ok := r.Resolve(ctx, repository.ContentURI("images", id))
	assert.True(t, ok)
	assert.Equal(t, "/storage/emulated/0/DCIM/c.jpg", got)

	got, ok = r.Resolve(ctx, "content://com.android.providers.media.documents/document/image:"+strconv.FormatInt(id, 10))
	assert.True(t, ok)
	assert.Equal(t, "/storage/emulated/0/DCIM/c.jpg", got)

	_, ok = r.Resolve(ctx, "content://com.android.providers.media.documents/document/image:999")
	assert.False(t, ok)

	// The store must still accept writes, which proves every cursor was released.
	_, err = store.Insert(ctx, &models.MediaItem{Kind: models.MediaImage, Data: "/storage/emulated/0/DCIM/d.jpg"})
	assert.NoError(t, err)
}
