package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"facedetection/internal/config"
	"facedetection/internal/logger"
	"facedetection/internal/repository/sqlite"
	"facedetection/internal/services"
	"facedetection/internal/services/ai"
	"facedetection/internal/services/media"
	"facedetection/internal/services/storage"
	"facedetection/internal/services/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type stubEngine struct{ lib *ai.Library }

func (e *stubEngine) Name() string                                  { return "stub" }
func (e *stubEngine) Library() *ai.Library                          { return e.lib }
func (e *stubEngine) Layout() ai.Layout                             { return ai.LayoutBGR }
func (e *stubEngine) Detect(mat gocv.Mat) ([]ai.Descriptor, error) { return nil, nil }
func (e *stubEngine) Close() error                                  { return nil }

func TestSetupRoutes(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		APIToken:            "secret",
		ExternalStorageRoot: dir,
		CacheDirectory:      filepath.Join(dir, "cache"),
		QueueSize:           1,
	}
	log := logger.New(io.Discard)

	store, err := sqlite.Open(filepath.Join(dir, "media.db"))
	require.NoError(t, err)
	defer store.Close()

	hub := websocket.NewHubService(log)
	cache := storage.NewCacheService(cfg, log)
	manager := services.NewManager(
		[]*ai.DetectorService{ai.NewDetectorService(&stubEngine{lib: ai.NewLibrary("stub", nil)}, log)},
		cache, storage.NewCompressor(cache, cfg), media.NewResolver(store, cfg, log), store, hub, cfg, log,
	)
	defer manager.Stop()

	router := SetupRoutes(manager, hub, cfg, log)

	tests := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/media/resolve?ref=x", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/media/resolve?ref=x", "secret", http.StatusNotFound},
		{http.MethodPut, "/api/detect", "secret", http.StatusMethodNotAllowed},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
