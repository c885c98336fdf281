package ai

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// Library is a native library that must be loaded once per process before
// any engine call. It is never unloaded.
type Library struct {
	name   string
	load   func() error
	once   sync.Once
	err    error
	loaded atomic.Bool
}

// NewLibrary returns a Library whose loader runs on the first EnsureLoaded.
func NewLibrary(name string, load func() error) *Library {
	return &Library{name: name, load: load}
}

// EnsureLoaded runs the loader exactly once. Every call returns the result
// of that single attempt, so a failed load stays failed.
func (l *Library) EnsureLoaded() error {
	l.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				l.err = fmt.Errorf("load %s panicked: %v", l.name, r)
			}
			l.loaded.Store(l.err == nil)
		}()
		if l.load != nil {
			l.err = l.load()
		}
	})
	return l.err
}

// Loaded reports whether the library has been loaded successfully.
func (l *Library) Loaded() bool {
	return l.loaded.Load()
}

// Name returns the library name.
func (l *Library) Name() string {
	return l.name
}

// SharedLibraryName returns the ONNX Runtime shared library file name for goos/goarch.
func SharedLibraryName(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		if goarch == "amd64" || goarch == "arm64" {
			return "onnxruntime.dll", nil
		}
	case "darwin":
		if goarch == "amd64" || goarch == "arm64" {
			return "libonnxruntime.dylib", nil
		}
	case "linux":
		if goarch == "arm64" {
			return "libonnxruntime_arm64.so", nil
		}
		if goarch == "amd64" {
			return "libonnxruntime.so", nil
		}
	}
	return "", fmt.Errorf("onnxruntime is not available for %s/%s", goos, goarch)
}

var (
	onnxRuntimeOnce sync.Once
	onnxRuntime     *Library

	openCVOnce sync.Once
	openCV     *Library
)

// ONNXRuntime returns the process-wide ONNX Runtime library. The directory
// passed on the first call wins; ONNX Runtime cannot be re-initialized.
func ONNXRuntime(dir string) *Library {
	onnxRuntimeOnce.Do(func() {
		onnxRuntime = NewLibrary("onnxruntime", func() error {
			name, err := SharedLibraryName(runtime.GOOS, runtime.GOARCH)
			if err != nil {
				return err
			}
			if ort.IsInitialized() {
				return nil
			}
			ort.SetSharedLibraryPath(filepath.Join(dir, name))
			if err := ort.InitializeEnvironment(); err != nil {
				return fmt.Errorf("failed to initialize onnxruntime from %s: %w", dir, err)
			}
			return nil
		})
	})
	return onnxRuntime
}

// OpenCV returns the process-wide OpenCV library handle. OpenCV is linked
// at build time; loading only verifies that the runtime answers.
func OpenCV() *Library {
	openCVOnce.Do(func() {
		openCV = NewLibrary("opencv", func() error {
			if gocv.Version() == "" || gocv.OpenCVVersion() == "" {
				return fmt.Errorf("opencv runtime unavailable")
			}
			return nil
		})
	})
	return openCV
}
