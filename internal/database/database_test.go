package database

import (
	"context"
	"path/filepath"
	"testing"

	"facedetection/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://localhost:5432/media"))
	assert.True(t, IsPostgres("postgresql://user@db/media"))
	assert.False(t, IsPostgres("data/media.db"))
	assert.False(t, IsPostgres("sqlite://data/media.db"))
}

func TestOpen_SQLite(t *testing.T) {
	store, err := Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background(), models.MediaImage)
	require.NoError(t, err)
	assert.Zero(t, count)
}
