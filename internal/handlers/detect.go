package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"facedetection/internal/dto"
	"facedetection/internal/logger"
	"facedetection/internal/models"
	"facedetection/internal/services"
)

const maxUploadSize = 32 << 20

// DetectUploadHandler detects faces in an uploaded image. The image is the
// raw request body or the "file" part of a multipart form.
func DetectUploadHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		data, ext, err := readUpload(r)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}
		if len(data) == 0 {
			writeError(w, logger, http.StatusBadRequest, "empty image")
			return
		}

		path, err := manager.GetCacheService().Save(data, ext)
		if err != nil {
			logger.Error("Failed to store upload: %v", err)
			writeError(w, logger, http.StatusInternalServerError, "failed to store image")
			return
		}

		event := manager.DetectNow(r.Context(), path)
		writeFaces(w, logger, event.Faces)
	}
}

// DetectRefHandler resolves ?ref= and detects faces in the referenced image.
func DetectRefHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("ref")

		path, ok := manager.Resolve(r.Context(), ref)
		if !ok {
			writeError(w, logger, http.StatusNotFound, "media reference not found")
			return
		}

		event := manager.DetectNow(r.Context(), path)
		writeFaces(w, logger, event.Faces)
	}
}

// writeFaces answers 200 with the faces, or 422 with null faces when
// detection produced no usable result.
func writeFaces(w http.ResponseWriter, logger *logger.Logger, faces []models.Face) {
	status := http.StatusOK
	if faces == nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, logger, status, dto.DetectResponse{Faces: faces})
}

func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		return data, filepath.Ext(header.Filename), err
	}

	data, err := io.ReadAll(r.Body)
	return data, extensionFor(mediaType), err
}

func extensionFor(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
