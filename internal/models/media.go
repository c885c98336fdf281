package models

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaKind identifies one of the media collections.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Table returns the store table holding items of this kind.
func (k MediaKind) Table() string {
	switch k {
	case MediaImage:
		return "images"
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	}
	return ""
}

// MediaItem represents an indexed media file.
type MediaItem struct {
	ID          int64     `json:"id"`
	Kind        MediaKind `json:"kind"`
	Data        string    `json:"data"`
	DisplayName string    `json:"display_name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	DateAdded   time.Time `json:"date_added"`
}

var mimeTypes = map[string]struct {
	kind MediaKind
	mime string
}{
	".jpg":  {MediaImage, "image/jpeg"},
	".jpeg": {MediaImage, "image/jpeg"},
	".png":  {MediaImage, "image/png"},
	".gif":  {MediaImage, "image/gif"},
	".bmp":  {MediaImage, "image/bmp"},
	".webp": {MediaImage, "image/webp"},
	".mp3":  {MediaAudio, "audio/mpeg"},
	".m4a":  {MediaAudio, "audio/mp4"},
	".amr":  {MediaAudio, "audio/amr"},
	".wav":  {MediaAudio, "audio/wav"},
	".ogg":  {MediaAudio, "audio/ogg"},
	".mp4":  {MediaVideo, "video/mp4"},
	".3gp":  {MediaVideo, "video/3gpp"},
	".mkv":  {MediaVideo, "video/x-matroska"},
	".webm": {MediaVideo, "video/webm"},
}

// ClassifyFile returns the media kind and MIME type for a file name based on
// its extension. ok is false for unsupported extensions.
func ClassifyFile(name string) (kind MediaKind, mime string, ok bool) {
	t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", "", false
	}
	return t.kind, t.mime, true
}
