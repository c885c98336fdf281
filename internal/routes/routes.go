package routes

import (
	"net/http"

	"facedetection/internal/config"
	"facedetection/internal/handlers"
	"facedetection/internal/logger"
	"facedetection/internal/middleware"
	"facedetection/internal/services"
	"facedetection/internal/services/websocket"
)

// SetupRoutes registers the API, websocket and log endpoints and wraps the
// mux with the authentication middleware.
func SetupRoutes(manager *services.Manager, hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("POST /api/detect", handlers.DetectUploadHandler(manager, logger))
	mux.HandleFunc("GET /api/detect", handlers.DetectRefHandler(manager, logger))
	mux.HandleFunc("GET /api/media/resolve", handlers.ResolveHandler(manager, logger))
	mux.HandleFunc("GET /api/annotate", handlers.AnnotateHandler(manager, logger))
	mux.HandleFunc("POST /api/capture/launch", handlers.LaunchCaptureHandler(manager, logger))
	mux.HandleFunc("POST /api/capture/result", handlers.CaptureResultHandler(manager, logger))
	mux.HandleFunc("GET /api/view", handlers.ViewWebsocketHandler(hub, logger))

	// Log endpoints
	mux.HandleFunc("GET /logs", handlers.ShowLogsHandler(logger))
	mux.HandleFunc("POST /logs/clear", handlers.ClearLogsHandler(logger))

	mux.HandleFunc("GET /healthz", handlers.HealthHandler(manager, hub, logger))

	// Apply middleware
	return middleware.AuthMiddleware(cfg.APIToken, mux)
}
