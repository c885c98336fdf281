package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"facedetection/internal/models"
)

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Save stores a detection run and its faces in a single transaction.
func (r *DetectionRepository) Save(ctx context.Context, rec *models.DetectionRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO detections (path, detect_ms, created_at)
		VALUES (?, ?, ?)
	`, rec.Path, rec.DetectMs, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read detection id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO faces (detection_id, position, x, y, width, height, confidence, angle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, f := range rec.Faces {
		if _, err := stmt.ExecContext(ctx, id, i, f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height, f.Confidence, f.Angle); err != nil {
			return 0, fmt.Errorf("failed to insert face: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit detection: %w", err)
	}

	rec.ID = id
	return id, nil
}

// Latest returns the most recent detection run for path, or nil if none exists.
func (r *DetectionRepository) Latest(ctx context.Context, path string) (*models.DetectionRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rec := models.DetectionRecord{Faces: []models.Face{}}
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, path, detect_ms, created_at
		FROM detections WHERE path = ?
		ORDER BY id DESC LIMIT 1
	`, path).Scan(&rec.ID, &rec.Path, &rec.DetectMs, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection: %w", err)
	}

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT x, y, width, height, confidence, angle
		FROM faces WHERE detection_id = ?
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
