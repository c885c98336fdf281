package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"facedetection/internal/dto"
	"facedetection/internal/logger"
	"facedetection/internal/services"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LaunchCaptureHandler asks connected viewers to choose an image or take a photo.
func LaunchCaptureHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.LaunchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		var resp dto.LaunchResponse
		var err error
		switch req.Action {
		case dto.ActionChooseImage:
			resp.RequestCode = services.RequestChooseImage
			err = manager.ChooseImage()
		case dto.ActionTakePhoto:
			resp.RequestCode = services.RequestTakePhoto
			resp.SavePath, err = manager.TakePhoto()
		}
		if err != nil {
			logger.Error("Failed to launch %s: %v", req.Action, err)
			writeError(w, logger, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, logger, http.StatusAccepted, resp)
	}
}

// CaptureResultHandler receives the outcome of a launched capture. The photo
// of a take-photo request travels in the body.
func CaptureResultHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		requestCode, err := strconv.Atoi(query.Get("requestCode"))
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid requestCode")
			return
		}
		ok, _ := strconv.ParseBool(query.Get("ok"))

		result := dto.CaptureResult{RequestCode: requestCode, OK: ok, URI: query.Get("uri")}
		if err := validate.Struct(result); err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "failed to read body")
			return
		}

		id, err := manager.HandleCaptureResult(r.Context(), result.RequestCode, result.OK, result.URI, data)
		switch {
		case errors.Is(err, services.ErrUnresolvable):
			writeError(w, logger, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrNoPendingCapture):
			writeError(w, logger, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrQueueFull):
			writeError(w, logger, http.StatusServiceUnavailable, err.Error())
		case err != nil:
			logger.Error("Failed to handle capture result: %v", err)
			writeError(w, logger, http.StatusInternalServerError, err.Error())
		case id == "":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, logger, http.StatusAccepted, map[string]string{"requestId": id})
		}
	}
}
