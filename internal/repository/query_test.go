package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		target string
		table  string
		id     int64
		hasID  bool
		err    error
	}{
		{"images", "images", 0, false, nil},
		{"content://media/external/images/media", "images", 0, false, nil},
		{"content://media/external/video/media/42", "video", 42, true, nil},
		{"content://media/internal/audio/media/7", "audio", 7, true, nil},
		{"content://media/external/files/media/1", "", 0, false, ErrUnknownTable},
		{"content://media/external/images/media/abc", "", 0, false, ErrInvalidURI},
		{"content://com.example.provider/images/1", "", 0, false, ErrInvalidURI},
		{"/sdcard/a.jpg", "", 0, false, ErrInvalidURI},
		{"detections", "", 0, false, ErrInvalidURI},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			table, id, hasID, err := ParseTarget(tt.target)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, table)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.hasID, hasID)
		})
	}
}

func TestBuildQuery(t *testing.T) {
	query, args, err := BuildQuery("images", []string{ColumnData}, "_id=?", []any{"31"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT _data FROM images WHERE 1=1 AND (_id=?) ORDER BY _id", query)
	assert.Equal(t, []any{"31"}, args)

	query, args, err = BuildQuery(ContentURI("video", 5), []string{ColumnID, ColumnData}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT _id, _data FROM video WHERE 1=1 AND _id = ? ORDER BY _id", query)
	assert.Equal(t, []any{int64(5)}, args)
}

func TestBuildQuery_RejectsUnknownColumns(t *testing.T) {
	_, _, err := BuildQuery("images", []string{"_data; DROP TABLE images"}, "", nil)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, _, err = BuildQuery("images", nil, "", nil)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
