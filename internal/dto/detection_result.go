package dto

import (
	"encoding/json"
	"time"

	"facedetection/internal/models"
)

// DetectResponse is the body of the detect endpoints. Faces is null when the
// image produced no usable result and [] when it holds no faces.
type DetectResponse struct {
	Faces []models.Face `json:"faces"`
}

// DetectionEvent is broadcast to viewers after an offloaded detection.
type DetectionEvent struct {
	Type        string        `json:"type"`
	RequestID   string        `json:"requestId"`
	RequestCode int           `json:"requestCode,omitempty"`
	Path        string        `json:"path"`
	Faces       []models.Face `json:"faces"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	FileSize    string        `json:"fileSize"`
	DetectMs    int64         `json:"detectMs"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// MarshalJSON formats CreatedAt as day-month-year and hour:minute:second.
func (e DetectionEvent) MarshalJSON() ([]byte, error) {
	type Alias DetectionEvent
	return json.Marshal(&struct {
		CreatedAt string `json:"createdAt"`
		Alias
	}{
		CreatedAt: e.CreatedAt.Format("02-01-2006 15:04:05"),
		Alias:     (Alias)(e),
	})
}
