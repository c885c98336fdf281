package ai

import (
	"image"
	"image/color"
	"strconv"

	"facedetection/internal/models"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Annotate draws the face rectangles and confidences onto the image at path
// and returns it encoded as JPEG.
func (s *DetectorService) Annotate(path string, faces []models.Face) ([]byte, error) {
	green := color.RGBA{R: 0, G: 255, B: 0, A: 0}

	data, err := readFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.Errorf("%s: decoded image is empty", path)
	}

	for _, face := range faces {
		if err := gocv.Rectangle(&mat, face.Rect.Image(), green, 2); err != nil {
			return nil, errors.Wrap(err, "failed to draw rectangle")
		}

		label := strconv.Itoa(face.Confidence)
		pt := image.Pt(face.Rect.X, max(face.Rect.Y-5, 10))
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, green, 1); err != nil {
			return nil, errors.Wrap(err, "failed to draw text")
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
