package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"facedetection/internal/config"
	"facedetection/internal/dto"
	"facedetection/internal/logger"
	"facedetection/internal/models"
	"facedetection/internal/repository"
	"facedetection/internal/services/ai"
	"facedetection/internal/services/capture"
	"facedetection/internal/services/media"
	"facedetection/internal/services/storage"

	"github.com/google/uuid"
)

// Request codes tagging capture results.
const (
	RequestChooseImage = 1001
	RequestTakePhoto   = 1002
)

var (
	ErrQueueFull          = errors.New("processing queue full")
	ErrStopped            = errors.New("manager stopped")
	ErrNoPendingCapture   = errors.New("no photo capture pending")
	ErrUnresolvable       = errors.New("media reference cannot be resolved")
	ErrUnknownRequestCode = errors.New("unknown request code")
)

// Notifier delivers launch requests and detection events to viewers.
type Notifier interface {
	capture.CanLaunchForResult
	BroadcastJSON(v any) error
}

type Manager struct {
	detectorServices []*ai.DetectorService
	cacheService     *storage.CacheService
	compressor       *storage.Compressor
	resolver         *media.Resolver
	roots            []string
	detections       repository.DetectionRepository
	notifier         Notifier
	logger           *logger.Logger

	processingQueue chan ProcessingTask
	numWorkers      int

	pendingPhoto string // Ścieżka zdjęcia, na które czekamy
	pendingMu    sync.Mutex

	stopped bool
	stopMu  sync.RWMutex
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

type ProcessingTask struct {
	ID          string
	Path        string
	RequestCode int
}

// NewManager starts one worker per detector service. Detector services are
// never shared between workers; DetectNow borrows the first one.
func NewManager(
	detectorServices []*ai.DetectorService,
	cacheService *storage.CacheService,
	compressor *storage.Compressor,
	resolver *media.Resolver,
	detections repository.DetectionRepository,
	notifier Notifier,
	cfg *config.Config,
	logger *logger.Logger,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		detectorServices: detectorServices,
		cacheService:     cacheService,
		compressor:       compressor,
		resolver:         resolver,
		roots:            []string{cfg.ExternalStorageRoot, cfg.CacheDirectory},
		detections:       detections,
		notifier:         notifier,
		logger:           logger,
		numWorkers:       len(detectorServices),
		processingQueue:  make(chan ProcessingTask, max(cfg.QueueSize, 1)),
		ctx:              ctx,
		cancel:           cancel,
	}

	for i := 0; i < manager.numWorkers; i++ {
		manager.wg.Add(1)
		go manager.processingWorker(i)
	}

	manager.logger.Info("Manager started with %d worker(s)", manager.numWorkers)
	return manager
}

// ChooseImage asks the viewer to pick an image from its gallery.
func (m *Manager) ChooseImage() error {
	return capture.PickImage(m.notifier, RequestChooseImage)
}

// TakePhoto asks the viewer to take a photo and returns the path the photo
// will be stored at once uploaded.
func (m *Manager) TakePhoto() (string, error) {
	savePath, err := m.cacheService.NewPhotoPath(".jpg")
	if err != nil {
		return "", err
	}

	if err := capture.TakePhoto(m.notifier, RequestTakePhoto, savePath); err != nil {
		return "", err
	}

	m.pendingMu.Lock()
	m.pendingPhoto = savePath
	m.pendingMu.Unlock()

	return savePath, nil
}

// HandleCaptureResult handles the outcome of a launched capture. Results
// that are not ok are ignored. For take-photo results data holds the photo
// and is written to the pending save path; for choose-image results uri is
// resolved to a file. The file is then queued for detection and the task id
// returned.
func (m *Manager) HandleCaptureResult(ctx context.Context, requestCode int, ok bool, uri string, data []byte) (string, error) {
	if !ok {
		m.logger.Info("Capture %d cancelled", requestCode)
		return "", nil
	}

	switch requestCode {
	case RequestTakePhoto:
		m.pendingMu.Lock()
		savePath := m.pendingPhoto
		m.pendingPhoto = ""
		m.pendingMu.Unlock()

		if savePath == "" {
			return "", ErrNoPendingCapture
		}
		if len(data) > 0 {
			if err := os.WriteFile(savePath, data, 0644); err != nil {
				return "", fmt.Errorf("failed to save photo: %w", err)
			}
		}
		return m.Submit(savePath, requestCode)

	case RequestChooseImage:
		path, found := m.Resolve(ctx, uri)
		if !found {
			return "", fmt.Errorf("%w: %s", ErrUnresolvable, uri)
		}
		return m.Submit(path, requestCode)

	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownRequestCode, requestCode)
	}
}

// Submit queues path for detection and returns the task id. The result is
// broadcast as a DetectionEvent.
func (m *Manager) Submit(path string, requestCode int) (string, error) {
	m.stopMu.RLock()
	defer m.stopMu.RUnlock()

	if m.stopped {
		return "", ErrStopped
	}

	task := ProcessingTask{ID: uuid.NewString(), Path: path, RequestCode: requestCode}
	select {
	case m.processingQueue <- task:
		m.logger.Info("Queued %s for detection (task %s)", path, task.ID)
		return task.ID, nil
	default:
		m.logger.Warning("Processing queue full - skipping %s", path)
		return "", ErrQueueFull
	}
}

// DetectNow compresses and detects path on the calling goroutine.
func (m *Manager) DetectNow(ctx context.Context, path string) dto.DetectionEvent {
	return m.process(ctx, m.detectorServices[0], ProcessingTask{ID: uuid.NewString(), Path: path})
}

// Resolve maps a media reference to a filesystem path.
// Paths outside the external storage root and the cache directory are
// refused.
func (m *Manager) Resolve(ctx context.Context, ref string) (string, bool) {
	path, ok := m.resolver.Resolve(ctx, ref)
	if !ok {
		return "", false
	}
	if !media.Within(path, m.roots...) {
		m.logger.Warning("Refusing %q: %s is outside the media roots", ref, path)
		return "", false
	}
	return path, true
}

// Annotate draws faces onto the image at path.
func (m *Manager) Annotate(path string, faces []models.Face) ([]byte, error) {
	return m.detectorServices[0].Annotate(path, faces)
}

func (m *Manager) GetDetectorService() *ai.DetectorService {
	return m.detectorServices[0]
}

func (m *Manager) GetCacheService() *storage.CacheService {
	return m.cacheService
}

// processingWorker przetwarza zadania z kolejki
func (m *Manager) processingWorker(workerID int) {
	defer m.wg.Done()

	m.logger.Info("Processing worker %d started", workerID)

	for task := range m.processingQueue {
		event := m.process(m.ctx, m.detectorServices[workerID], task)
		if err := m.notifier.BroadcastJSON(event); err != nil {
			m.logger.Error("Failed to broadcast detection %s: %v", task.ID, err)
		}
	}

	m.logger.Info("Processing worker %d stopped", workerID)
}

func (m *Manager) process(ctx context.Context, detector *ai.DetectorService, task ProcessingTask) dto.DetectionEvent {
	path, err := m.compressor.Compress(task.Path)
	if err != nil {
		m.logger.Warning("Compression skipped for %s: %v", task.Path, err)
	}

	start := time.Now()
	faces := detector.Detect(path)
	detectMs := time.Since(start).Milliseconds()

	event := dto.DetectionEvent{
		Type:        "detection",
		RequestID:   task.ID,
		RequestCode: task.RequestCode,
		Path:        path,
		Faces:       faces,
		FileSize:    storage.FormatFileSize(path),
		DetectMs:    detectMs,
		CreatedAt:   time.Now(),
	}

	if w, h, err := storage.ImageSize(path); err == nil {
		event.Width, event.Height = w, h
	}

	if faces == nil {
		m.logger.Warning("No usable detection result for %s", path)
		return event
	}

	m.logger.Info("Image %dx%d, file size %s, %d face(s), detect time %dms",
		event.Width, event.Height, event.FileSize, len(faces), detectMs)
	for i, face := range faces {
		m.logger.Debug("Face %d: confidence %d, rect %+v, angle %d", i, face.Confidence, face.Rect, face.Angle)
	}

	if m.detections != nil {
		rec := &models.DetectionRecord{Path: path, Faces: faces, DetectMs: detectMs, CreatedAt: event.CreatedAt}
		if _, err := m.detections.Save(ctx, rec); err != nil {
			m.logger.Error("Failed to save detection for %s: %v", path, err)
		}
	}

	return event
}

// Stop zatrzymuje wszystkie workery i zwalnia detektory
func (m *Manager) Stop() {
	m.stopMu.Lock()
	if m.stopped {
		m.stopMu.Unlock()
		return
	}
	m.stopped = true
	close(m.processingQueue)
	m.stopMu.Unlock()

	m.wg.Wait()
	m.cancel()

	for _, detector := range m.detectorServices {
		if err := detector.Close(); err != nil {
			m.logger.Error("Failed to close detector: %v", err)
		}
	}
	m.logger.Info("All processing workers stopped")
}
