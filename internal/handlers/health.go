package handlers

import (
	"net/http"

	"facedetection/internal/dto"
	"facedetection/internal/logger"
	"facedetection/internal/services"
	"facedetection/internal/services/websocket"
)

func HealthHandler(manager *services.Manager, hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := manager.GetDetectorService().Engine()
		lib := engine.Library()

		writeJSON(w, logger, http.StatusOK, dto.HealthResponse{
			Status:  "ok",
			Engine:  engine.Name(),
			Library: lib.Name(),
			Loaded:  lib.Loaded(),
			Viewers: hub.GetClientCount(),
		})
	}
}
