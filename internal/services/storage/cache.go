package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"facedetection/internal/config"
	"facedetection/internal/logger"
)

// CacheService manages the directory holding captured, uploaded and
// compressed images.
type CacheService struct {
	dir    string
	maxAge time.Duration
	logger *logger.Logger
	mu     sync.Mutex
	last   int64

	done     chan struct{}
	stopOnce sync.Once
}

func NewCacheService(cfg *config.Config, logger *logger.Logger) *CacheService {
	return &CacheService{
		dir:    cfg.CacheDirectory,
		maxAge: time.Duration(cfg.CacheMaxAge) * time.Minute,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Dir returns the cache directory.
func (s *CacheService) Dir() string {
	return s.dir
}

// Run prunes expired files every interval seconds until Stop is called.
func (s *CacheService) Run(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)

	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := s.Prune(); err != nil {
				s.logger.Error("Cache prune failed: %v", err)
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (s *CacheService) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// NewPhotoPath returns a fresh <cache>/<unix-millis><ext> path and makes
// sure the cache directory exists. Names are unique within the process.
func (s *CacheService) NewPhotoPath(ext string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	millis := time.Now().UnixMilli()
	if millis <= s.last {
		millis = s.last + 1
	}
	s.last = millis

	return filepath.Join(s.dir, fmt.Sprintf("%d%s", millis, ext)), nil
}

// Save writes data to a new cache file and returns its path.
func (s *CacheService) Save(data []byte, ext string) (string, error) {
	path, err := s.NewPhotoPath(ext)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// Prune removes cache files older than the configured maximum age and
// returns how many were removed. A zero maximum age disables pruning.
func (s *CacheService) Prune() (int, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warning("Error removing cache file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Pruned %d cached images", removed)
	}
	return removed, nil
}
