package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"facedetection/internal/config"
	"facedetection/internal/database"
	"facedetection/internal/logger"
	"facedetection/internal/repository"
	"facedetection/internal/routes"
	"facedetection/internal/services"
	"facedetection/internal/services/ai"
	"facedetection/internal/services/media"
	"facedetection/internal/services/storage"
	"facedetection/internal/services/websocket"
)

type App struct {
	config           *config.Config
	logger           *logger.Logger
	store            repository.Store
	detectorServices []*ai.DetectorService
	cacheService     *storage.CacheService
	hubService       *websocket.HubService
	manager          *services.Manager
}

func NewApp(ctx context.Context) (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg)

	store, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	detectors := make([]*ai.DetectorService, 0, cfg.ProcessingWorkers)
	for i := 0; i < cfg.ProcessingWorkers; i++ {
		engine, err := ai.NewEngine(cfg) // załaduj model osobno dla każdego workera
		if err != nil {
			for _, ds := range detectors {
				ds.Close()
			}
			store.Close()
			return nil, fmt.Errorf("failed to create %s engine: %w", cfg.Engine, err)
		}
		detectors = append(detectors, ai.NewDetectorService(engine, log))
	}

	cache := storage.NewCacheService(cfg, log)
	hub := websocket.NewHubService(log)
	resolver := media.NewResolver(store, cfg, log)

	mng := services.NewManager(detectors, cache, storage.NewCompressor(cache, cfg), resolver, store, hub, cfg, log)

	return &App{
		config:           cfg,
		logger:           log,
		store:            store,
		detectorServices: detectors,
		cacheService:     cache,
		hubService:       hub,
		manager:          mng,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (a *App) Run(ctx context.Context) error {
	// Start background services
	go a.cacheService.Run(time.Duration(a.config.CacheCleanInterval) * time.Second)
	go a.hubService.Run()

	router := routes.SetupRoutes(a.manager, a.hubService, a.config, a.logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("Face detection server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Engine: %s, model: %s, workers: %d", a.config.Engine, a.config.ModelPath, a.config.ProcessingWorkers)
	a.logger.Info("Database: %s, cache: %s", a.config.DatabaseURL, a.config.CacheDirectory)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = server.Shutdown(shutdownCtx)
	}

	a.Close()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the workers and releases the store.
func (a *App) Close() {
	a.cacheService.Stop()
	a.hubService.Stop()
	a.manager.Stop()
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
	a.logger.Info("Server stopped")
}
