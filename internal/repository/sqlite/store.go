package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store combines the SQLite repositories behind repository.Store.
type Store struct {
	*MediaRepository
	*DetectionRepository
	db *DB
}

// Open creates the parent directory of dbPath and opens the store.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	return &Store{
		MediaRepository:     NewMediaRepository(db),
		DetectionRepository: NewDetectionRepository(db),
		db:                  db,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
