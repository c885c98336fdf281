package ai

import (
	"io"
	"os"

	"facedetection/internal/logger"
	"facedetection/internal/models"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var (
	// ErrDecode covers missing, unreadable and undecodable files.
	ErrDecode = errors.New("image decode failed")
	// ErrDetection covers library load failures and engine errors.
	ErrDetection = errors.New("face detection failed")
)

// DetectorService bridges image files to the native detection engine.
// It holds no per-call state; concurrency limits are those of the engine.
type DetectorService struct {
	engine Engine
	logger *logger.Logger
}

// NewDetectorService creates a detector service over engine.
func NewDetectorService(engine Engine, logger *logger.Logger) *DetectorService {
	return &DetectorService{
		engine: engine,
		logger: logger,
	}
}

// Engine returns the underlying engine.
func (s *DetectorService) Engine() Engine {
	return s.engine
}

// Detect runs face detection on the image file at path. It returns nil when
// no usable result could be produced and a non-nil slice, possibly empty,
// otherwise. Failures are logged.
func (s *DetectorService) Detect(path string) []models.Face {
	faces, err := s.DetectWithError(path)
	if err != nil {
		s.logger.Warning("Face detection failed for %s: %v", path, err)
		return nil
	}
	return faces
}

// DetectWithError is Detect with the failure kind preserved. Returned errors
// match ErrDecode or ErrDetection under errors.Is. A panic anywhere in the
// pipeline is reported as ErrDetection.
func (s *DetectorService) DetectWithError(path string) (faces []models.Face, err error) {
	defer func() {
		if r := recover(); r != nil {
			faces = nil
			err = errors.Wrapf(ErrDetection, "%s: panic: %v", path, r)
		}
	}()

	data, err := readFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%s: %v", path, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.Wrapf(ErrDecode, "%s: unsupported or corrupt image", path)
	}

	input := mat
	if code, ok := s.engine.Layout().conversion(); ok {
		converted := gocv.NewMat()
		defer converted.Close()

		if err := gocv.CvtColor(mat, &converted, code); err != nil {
			return nil, errors.Wrapf(ErrDetection, "convert to %s: %v", s.engine.Layout(), err)
		}
		input = converted
	}

	lib := s.engine.Library()
	if err := lib.EnsureLoaded(); err != nil {
		return nil, errors.Wrapf(ErrDetection, "load %s: %v", lib.Name(), err)
	}

	descriptors, err := s.engine.Detect(input)
	if err != nil {
		return nil, errors.Wrapf(ErrDetection, "%s: %v", s.engine.Name(), err)
	}

	return marshalFaces(descriptors), nil
}

// Close releases the engine.
func (s *DetectorService) Close() error {
	return s.engine.Close()
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// marshalFaces copies descriptors into faces one to one, in order.
func marshalFaces(descriptors []Descriptor) []models.Face {
	faces := make([]models.Face, 0, len(descriptors))
	for _, d := range descriptors {
		faces = append(faces, models.Face{
			Rect:       models.RectFromImage(d.Rect),
			Confidence: d.Confidence,
			Angle:      d.Angle,
		})
	}
	return faces
}
