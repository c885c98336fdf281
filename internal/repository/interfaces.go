package repository

import (
	"context"

	"facedetection/internal/models"
)

// Cursor iterates over the rows returned by MediaStore.Query.
// Callers must always Close it.
type Cursor interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// MediaStore is the tabular query capability consumed by the media resolver.
// table is either a table name or a content URI the store maps to a table.
type MediaStore interface {
	Query(ctx context.Context, table string, columns []string, selection string, args ...any) (Cursor, error)
}

// MediaRepository defines the interface for media index operations.
type MediaRepository interface {
	MediaStore

	// Create operations
	Insert(ctx context.Context, item *models.MediaItem) (int64, error)

	// Read operations
	Count(ctx context.Context, kind models.MediaKind) (int, error)
}

// DetectionRepository defines the interface for detection history operations.
type DetectionRepository interface {
	// Create operations
	Save(ctx context.Context, rec *models.DetectionRecord) (int64, error)

	// Read operations
	Latest(ctx context.Context, path string) (*models.DetectionRecord, error)
}

// Store bundles every repository backed by a single database.
type Store interface {
	MediaRepository
	DetectionRepository
	Close() error
}
