package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"facedetection/internal/models"
	"facedetection/internal/repository"

	"github.com/jackc/pgx/v5"
)

// Store implements repository.Store on a single PostgreSQL connection.
// pgx.Conn is not safe for concurrent use, so every operation holds mu
// and open cursors keep it until they are closed.
type Store struct {
	conn *pgx.Conn
	mu   sync.Mutex
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	var b strings.Builder
	for _, table := range []string{"images", "audio", "video"} {
		fmt.Fprintf(&b, `
		CREATE TABLE IF NOT EXISTS %s (
			_id BIGSERIAL PRIMARY KEY,
			_data TEXT NOT NULL UNIQUE,
			_display_name TEXT NOT NULL DEFAULT '',
			_size BIGINT DEFAULT 0,
			mime_type TEXT NOT NULL DEFAULT '',
			date_added TIMESTAMPTZ DEFAULT NOW()
		);`, table)
	}
	b.WriteString(`
		CREATE TABLE IF NOT EXISTS detections (
			id BIGSERIAL PRIMARY KEY,
			path TEXT NOT NULL,
			detect_ms BIGINT DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS faces (
			id BIGSERIAL PRIMARY KEY,
			detection_id BIGINT NOT NULL REFERENCES detections(id) ON DELETE CASCADE,
			position INT NOT NULL,
			x INT DEFAULT 0,
			y INT DEFAULT 0,
			width INT DEFAULT 0,
			height INT DEFAULT 0,
			confidence INT DEFAULT 0,
			angle INT DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS detections_path_idx ON detections (path);
		CREATE INDEX IF NOT EXISTS faces_detection_id_idx ON faces (detection_id);
	`)

	_, err := conn.Exec(ctx, b.String())
	return err
}

// Close terminates the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The caller's context may already be cancelled.
	return s.conn.Close(context.Background())
}

// Rebind rewrites ? placeholders into PostgreSQL's $n form.
// Question marks inside single-quoted literals are left alone.
func Rebind(query string) string {
	var b strings.Builder
	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cursor adapts pgx.Rows to repository.Cursor and releases the connection lock on Close.
type cursor struct {
	rows    pgx.Rows
	release func()
}

func (c *cursor) Next() bool             { return c.rows.Next() }
func (c *cursor) Scan(dest ...any) error { return c.rows.Scan(dest...) }
func (c *cursor) Err() error             { return c.rows.Err() }

func (c *cursor) Close() error {
	c.rows.Close()
	c.release()
	return c.rows.Err()
}

// Query runs a projection over a media table or content URI.
func (s *Store) Query(ctx context.Context, table string, columns []string, selection string, args ...any) (repository.Cursor, error) {
	query, queryArgs, err := repository.BuildQuery(table, columns, selection, args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	rows, err := s.conn.Query(ctx, Rebind(query), queryArgs...)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	return &cursor{rows: rows, release: sync.OnceFunc(s.mu.Unlock)}, nil
}

// Insert adds or updates a media item and returns its row id.
func (s *Store) Insert(ctx context.Context, item *models.MediaItem) (int64, error) {
	table := item.Kind.Table()
	if table == "" {
		return 0, fmt.Errorf("%w: %q", repository.ErrUnknownTable, item.Kind)
	}
	if item.DateAdded.IsZero() {
		item.DateAdded = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.conn.QueryRow(ctx, `
		INSERT INTO `+table+` (_data, _display_name, _size, mime_type, date_added)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (_data) DO UPDATE SET
			_display_name = EXCLUDED._display_name,
			_size = EXCLUDED._size,
			mime_type = EXCLUDED.mime_type
		RETURNING _id
	`, item.Data, item.DisplayName, item.Size, item.MimeType, item.DateAdded).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert media item: %w", err)
	}

	item.ID = id
	return id, nil
}

// Count returns the number of indexed items of the given kind.
func (s *Store) Count(ctx context.Context, kind models.MediaKind) (int, error) {
	table := kind.Table()
	if table == "" {
		return 0, fmt.Errorf("%w: %q", repository.ErrUnknownTable, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// Save stores a detection run and its faces in a single transaction.
func (s *Store) Save(ctx context.Context, rec *models.DetectionRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO detections (path, detect_ms, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, rec.Path, rec.DetectMs, rec.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection: %w", err)
	}

	batch := &pgx.Batch{}
	for i, f := range rec.Faces {
		batch.Queue(`
			INSERT INTO faces (detection_id, position, x, y, width, height, confidence, angle)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, i, f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height, f.Confidence, f.Angle)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("failed to insert faces: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit detection: %w", err)
	}

	rec.ID = id
	return id, nil
}

// Latest returns the most recent detection run for path, or nil if none exists.
func (s *Store) Latest(ctx context.Context, path string) (*models.DetectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := models.DetectionRecord{Faces: []models.Face{}}
	err := s.conn.QueryRow(ctx, `
		SELECT id, path, detect_ms, created_at
		FROM detections WHERE path = $1
		ORDER BY id DESC LIMIT 1
	`, path).Scan(&rec.ID, &rec.Path, &rec.DetectMs, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection: %w", err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT x, y, width, height, confidence, angle
		FROM faces WHERE detection_id = $1
		ORDER BY position
	`, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query faces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Face
		if err := rows.Scan(&f.Rect.X, &f.Rect.Y, &f.Rect.Width, &f.Rect.Height, &f.Confidence, &f.Angle); err != nil {
			return nil, fmt.Errorf("failed to scan face: %w", err)
		}
		rec.Faces = append(rec.Faces, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read faces: %w", err)
	}

	return &rec, nil
}
