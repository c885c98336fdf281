package handlers

import (
	"net/http"

	"facedetection/internal/dto"
	"facedetection/internal/logger"
	"facedetection/internal/services"
)

func ResolveHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("ref")

		path, ok := manager.Resolve(r.Context(), ref)
		if !ok {
			writeError(w, logger, http.StatusNotFound, "media reference not found")
			return
		}

		writeJSON(w, logger, http.StatusOK, dto.ResolveResponse{Ref: ref, Path: path})
	}
}

// AnnotateHandler returns the referenced image as JPEG with detected faces drawn on it.
func AnnotateHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := manager.Resolve(r.Context(), r.URL.Query().Get("ref"))
		if !ok {
			writeError(w, logger, http.StatusNotFound, "media reference not found")
			return
		}

		event := manager.DetectNow(r.Context(), path)
		if event.Faces == nil {
			writeJSON(w, logger, http.StatusUnprocessableEntity, dto.DetectResponse{})
			return
		}

		// Rectangles are in the coordinates of the image that was detected on.
		image, err := manager.Annotate(event.Path, event.Faces)
		if err != nil {
			logger.Error("Failed to annotate %s: %v", path, err)
			writeError(w, logger, http.StatusInternalServerError, "failed to annotate image")
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(image)
	}
}
