package ai

import (
	"image"
	"math"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// YuNet output row layout: box, five landmarks, score.
const (
	yunetColumns    = 15
	yunetRightEyeX  = 4
	yunetRightEyeY  = 5
	yunetLeftEyeX   = 6
	yunetLeftEyeY   = 7
	yunetScoreIndex = 14
)

// YuNetConfig configures the OpenCV FaceDetectorYN engine.
type YuNetConfig struct {
	ModelPath      string
	ScoreThreshold float64
	NMSThreshold   float64
	TopK           int
}

// YuNet runs OpenCV's FaceDetectorYN. Safe for concurrent use; calls are serialized.
type YuNet struct {
	detector gocv.FaceDetectorYN
	config   YuNetConfig
	mu       sync.Mutex
}

// NewYuNet loads the YuNet ONNX model.
func NewYuNet(cfg YuNetConfig) (*YuNet, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5000
	}

	// Input size is replaced per image in Detect.
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(320, 320),
		float32(cfg.ScoreThreshold),
		float32(cfg.NMSThreshold),
		cfg.TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{
		detector: detector,
		config:   cfg,
	}, nil
}

func (y *YuNet) Name() string      { return "yunet" }
func (y *YuNet) Library() *Library { return OpenCV() }
func (y *YuNet) Layout() Layout    { return LayoutBGR }

// Detect finds faces in a BGR matrix.
func (y *YuNet) Detect(mat gocv.Mat) ([]Descriptor, error) {
	if mat.Empty() {
		return nil, errors.New("empty input matrix")
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	y.detector.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	y.detector.Detect(mat, &faces)

	if !faces.Empty() && faces.Cols() < yunetColumns {
		return nil, errors.Errorf("unexpected yunet output with %d columns", faces.Cols())
	}

	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	descriptors := make([]Descriptor, 0, faces.Rows())
	row := make([]float32, yunetColumns)
	for r := 0; r < faces.Rows(); r++ {
		for c := range row {
			row[c] = faces.GetFloatAt(r, c)
		}
		if d, ok := yunetDescriptor(row, bounds); ok {
			descriptors = append(descriptors, d)
		}
	}

	return descriptors, nil
}

// Close releases the detector resources.
func (y *YuNet) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.detector.Close()
	return nil
}

// yunetDescriptor converts one YuNet output row. Boxes are clipped to bounds
// and rows whose box falls outside the image are dropped.
func yunetDescriptor(row []float32, bounds image.Rectangle) (Descriptor, bool) {
	x := int(math.Round(float64(row[0])))
	y := int(math.Round(float64(row[1])))
	w := int(math.Round(float64(row[2])))
	h := int(math.Round(float64(row[3])))

	rect := image.Rect(x, y, x+w, y+h).Intersect(bounds)
	if rect.Empty() {
		return Descriptor{}, false
	}

	dx := float64(row[yunetLeftEyeX] - row[yunetRightEyeX])
	dy := float64(row[yunetLeftEyeY] - row[yunetRightEyeY])
	angle := 0
	if dx != 0 || dy != 0 {
		angle = int(math.Round(math.Atan2(dy, dx) * 180 / math.Pi))
	}

	return Descriptor{
		Rect:       rect,
		Confidence: int(math.Round(float64(row[yunetScoreIndex]) * 100)),
		Angle:      angle,
	}, true
}
