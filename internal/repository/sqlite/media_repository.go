package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"facedetection/internal/models"
	"facedetection/internal/repository"
)

// MediaRepository implements repository.MediaRepository for SQLite.
type MediaRepository struct {
	db *DB
}

// NewMediaRepository creates a new SQLite media repository.
func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// cursor releases the read lock once the rows are closed.
type cursor struct {
	*sql.Rows
	release func()
}

func (c *cursor) Close() error {
	err := c.Rows.Close()
	c.release()
	return err
}

// Query runs a projection over a media table or content URI.
func (r *MediaRepository) Query(ctx context.Context, table string, columns []string, selection string, args ...any) (repository.Cursor, error) {
	query, queryArgs, err := repository.BuildQuery(table, columns, selection, args)
	if err != nil {
		return nil, err
	}

	r.db.RLock()
	rows, err := r.db.Conn().QueryContext(ctx, query, queryArgs...)
	if err != nil {
		r.db.RUnlock()
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	return &cursor{Rows: rows, release: sync.OnceFunc(r.db.RUnlock)}, nil
}

// Insert adds a new media item and returns its row id.
func (r *MediaRepository) Insert(ctx context.Context, item *models.MediaItem) (int64, error) {
	table := item.Kind.Table()
	if table == "" {
		return 0, fmt.Errorf("%w: %q", repository.ErrUnknownTable, item.Kind)
	}
	if item.DateAdded.IsZero() {
		item.DateAdded = time.Now()
	}

	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO `+table+` (_data, _display_name, _size, mime_type, date_added)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(_data) DO UPDATE SET
			_display_name = excluded._display_name,
			_size = excluded._size,
			mime_type = excluded.mime_type
	`, item.Data, item.DisplayName, item.Size, item.MimeType, item.DateAdded)
	if err != nil {
		return 0, fmt.Errorf("failed to insert media item: %w", err)
	}

	// LastInsertId is not reliable for the upsert path.
	var id int64
	err = r.db.Conn().QueryRowContext(ctx, `SELECT _id FROM `+table+` WHERE _data = ?`, item.Data).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read media item id: %w", err)
	}

	item.ID = id
	return id, nil
}

// Count returns the number of indexed items of the given kind.
func (r *MediaRepository) Count(ctx context.Context, kind models.MediaKind) (int, error) {
	table := kind.Table()
	if table == "" {
		return 0, fmt.Errorf("%w: %q", repository.ErrUnknownTable, kind)
	}

	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
