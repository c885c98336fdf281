package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIndexThenResolve(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	media := filepath.Join(dir, "media")
	require.NoError(t, os.MkdirAll(media, 0755))
	photo := filepath.Join(media, "a.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0644))

	db := filepath.Join(dir, "media.db")

	out, err := run(t, "index", "--db", db, "--dir", media)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.True(t, strings.HasPrefix(fields[0], "content://media/external/images/media/"))
	assert.Equal(t, photo, fields[1])

	out, err = run(t, "resolve", "--db", db, fields[0])
	require.NoError(t, err)
	assert.Equal(t, photo+"\n", out)

	_, err = run(t, "resolve", "--db", db, "content://media/external/images/media/999")
	assert.Error(t, err)
}
