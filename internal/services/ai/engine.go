package ai

import (
	"fmt"
	"image"

	"facedetection/internal/config"

	"gocv.io/x/gocv"
)

// Layout is the pixel layout an engine expects its input matrix in.
type Layout int

const (
	LayoutBGR Layout = iota
	LayoutRGB
	LayoutRGBA
	LayoutGray
)

func (l Layout) String() string {
	switch l {
	case LayoutBGR:
		return "BGR"
	case LayoutRGB:
		return "RGB"
	case LayoutRGBA:
		return "RGBA"
	case LayoutGray:
		return "GRAY"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// conversion returns the colour conversion from decoded BGR into l.
// ok is false when the decoded buffer is already in the right layout.
func (l Layout) conversion() (code gocv.ColorConversionCode, ok bool) {
	switch l {
	case LayoutRGB:
		return gocv.ColorBGRToRGB, true
	case LayoutRGBA:
		return gocv.ColorBGRToRGBA, true
	case LayoutGray:
		return gocv.ColorBGRToGray, true
	}
	return 0, false
}

// Descriptor is a face record as produced by an engine.
type Descriptor struct {
	Rect       image.Rectangle
	Confidence int
	Angle      int
}

// Engine is a native face detector. Detect is synchronous and reads mat
// without retaining it. Implementations are not reentrant unless stated.
type Engine interface {
	Name() string
	// Library is the process-wide native library the engine depends on.
	Library() *Library
	Layout() Layout
	Detect(mat gocv.Mat) ([]Descriptor, error)
	Close() error
}

// NewEngine creates the engine selected by cfg.Engine.
func NewEngine(cfg *config.Config) (Engine, error) {
	switch cfg.Engine {
	case "", "yunet":
		return NewYuNet(YuNetConfig{
			ModelPath:      cfg.ModelPath,
			ScoreThreshold: cfg.ConfidenceThreshold,
			NMSThreshold:   cfg.NMSThreshold,
			TopK:           cfg.TopK,
		})
	case "onnx":
		return NewUltraFace(UltraFaceConfig{
			ModelPath:      cfg.ModelPath,
			LibraryDir:     cfg.LibraryDir,
			ScoreThreshold: cfg.ConfidenceThreshold,
			NMSThreshold:   cfg.NMSThreshold,
			TopK:           cfg.TopK,
		})
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}
