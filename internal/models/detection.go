package models

import "time"

// DetectionRecord is a stored detection run for a single file.
type DetectionRecord struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Faces     []Face    `json:"faces"`
	DetectMs  int64     `json:"detect_ms"`
	CreatedAt time.Time `json:"created_at"`
}
