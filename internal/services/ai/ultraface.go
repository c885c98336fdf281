package ai

import (
	"image"
	"math"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// UltraFace RFB-320 model geometry.
const (
	ultraFaceWidth   = 320
	ultraFaceHeight  = 240
	ultraFaceAnchors = 4420
)

// UltraFaceConfig configures the ONNX Runtime UltraFace engine.
type UltraFaceConfig struct {
	ModelPath      string
	LibraryDir     string
	ScoreThreshold float64
	NMSThreshold   float64
	TopK           int
}

// UltraFace runs the Ultra-Light-Fast-Generic-Face-Detector RFB-320 model
// through ONNX Runtime. Safe for concurrent use; calls are serialized.
type UltraFace struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	scores  *ort.Tensor[float32]
	boxes   *ort.Tensor[float32]
	lib     *Library
	config  UltraFaceConfig
	mu      sync.Mutex
}

// NewUltraFace loads ONNX Runtime and creates an inference session.
func NewUltraFace(cfg UltraFaceConfig) (*UltraFace, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}

	lib := ONNXRuntime(cfg.LibraryDir)
	if err := lib.EnsureLoaded(); err != nil {
		return nil, errors.Wrap(err, "failed to load onnxruntime")
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, ultraFaceHeight, ultraFaceWidth))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}

	scores, err := ort.NewEmptyTensor[float32](ort.NewShape(1, ultraFaceAnchors, 2))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "failed to create scores tensor")
	}

	boxes, err := ort.NewEmptyTensor[float32](ort.NewShape(1, ultraFaceAnchors, 4))
	if err != nil {
		input.Destroy()
		scores.Destroy()
		return nil, errors.Wrap(err, "failed to create boxes tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		scores.Destroy()
		boxes.Destroy()
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"input"},
		[]string{"scores", "boxes"},
		[]ort.Value{input},
		[]ort.Value{scores, boxes},
		options,
	)
	if err != nil {
		input.Destroy()
		scores.Destroy()
		boxes.Destroy()
		return nil, errors.Wrap(err, "failed to create session")
	}

	return &UltraFace{
		session: session,
		input:   input,
		scores:  scores,
		boxes:   boxes,
		lib:     lib,
		config:  cfg,
	}, nil
}

func (u *UltraFace) Name() string      { return "ultraface" }
func (u *UltraFace) Library() *Library { return u.lib }
func (u *UltraFace) Layout() Layout    { return LayoutRGB }

// Detect finds faces in an RGB matrix.
func (u *UltraFace) Detect(mat gocv.Mat) ([]Descriptor, error) {
	if mat.Empty() {
		return nil, errors.New("empty input matrix")
	}

	blob := gocv.BlobFromImage(mat, 1.0/128.0, image.Pt(ultraFaceWidth, ultraFaceHeight), gocv.NewScalar(127, 127, 127, 0), false, false)
	defer blob.Close()

	data, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read blob")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if n := copy(u.input.GetData(), data); n != 3*ultraFaceWidth*ultraFaceHeight {
		return nil, errors.Errorf("unexpected blob size %d", n)
	}

	if err := u.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	return ultraFaceDescriptors(
		u.scores.GetData(),
		u.boxes.GetData(),
		image.Rect(0, 0, mat.Cols(), mat.Rows()),
		float32(u.config.ScoreThreshold),
		float32(u.config.NMSThreshold),
		u.config.TopK,
	), nil
}

// Close releases the session and tensors.
func (u *UltraFace) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var first error
	for _, destroy := range []func() error{u.session.Destroy, u.input.Destroy, u.scores.Destroy, u.boxes.Destroy} {
		if err := destroy(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ultraFaceDescriptors thresholds the face class score, scales normalized
// corner boxes to bounds and applies NMS. The model has no angle estimate.
func ultraFaceDescriptors(scores, boxes []float32, bounds image.Rectangle, scoreThreshold, nmsThreshold float32, topK int) []Descriptor {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	var candidates []candidate
	for i := 0; i*2+1 < len(scores) && i*4+3 < len(boxes); i++ {
		score := scores[i*2+1]
		if score <= scoreThreshold {
			continue
		}

		rect := image.Rect(
			int(math.Round(float64(boxes[i*4])*w)),
			int(math.Round(float64(boxes[i*4+1])*h)),
			int(math.Round(float64(boxes[i*4+2])*w)),
			int(math.Round(float64(boxes[i*4+3])*h)),
		).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		candidates = append(candidates, candidate{rect: rect, score: score})
	}

	kept := greedyNMS(candidates, nmsThreshold, topK)

	descriptors := make([]Descriptor, 0, len(kept))
	for _, c := range kept {
		descriptors = append(descriptors, Descriptor{
			Rect:       c.rect,
			Confidence: int(math.Round(float64(c.score) * 100)),
		})
	}
	return descriptors
}
