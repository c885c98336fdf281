package storage

import (
	"image/jpeg"
	"os"
	"strings"

	"facedetection/internal/config"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// compressIgnoreBelow is the file size under which images are never recompressed.
const compressIgnoreBelow = 100 * 1024

// Compressor downsizes large photos before detection.
type Compressor struct {
	cache   *CacheService
	maxDim  int
	quality int
}

func NewCompressor(cache *CacheService, cfg *config.Config) *Compressor {
	return &Compressor{
		cache:   cache,
		maxDim:  cfg.CompressMaxDimension,
		quality: cfg.CompressQuality,
	}
}

// Compress returns the path of the image to run detection on. Empty paths,
// GIFs, small files and images within the size limit are returned as is;
// larger images are scaled down into a new JPEG in the cache directory.
// EXIF orientation is applied on decode, so the written JPEG is upright
// without carrying the tag.
func (c *Compressor) Compress(path string) (string, error) {
	if path == "" || strings.HasSuffix(strings.ToLower(path), ".gif") || c.maxDim <= 0 {
		return path, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return path, errors.Wrapf(err, "failed to stat %s", path)
	}
	if info.Size() <= compressIgnoreBelow {
		return path, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return path, errors.Wrapf(err, "failed to read %s", path)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return path, errors.Wrapf(err, "failed to decode %s", path)
	}
	defer mat.Close()
	if mat.Empty() {
		return path, errors.Errorf("failed to decode %s", path)
	}

	if max(mat.Cols(), mat.Rows()) <= c.maxDim {
		return path, nil
	}

	img, err := mat.ToImage()
	if err != nil {
		return path, errors.Wrapf(err, "failed to convert %s", path)
	}
	scaled := resize.Thumbnail(uint(c.maxDim), uint(c.maxDim), img, resize.Lanczos3)

	out, err := c.cache.NewPhotoPath(".jpg")
	if err != nil {
		return path, err
	}

	dst, err := os.Create(out)
	if err != nil {
		return path, errors.Wrapf(err, "failed to create %s", out)
	}

	if err := jpeg.Encode(dst, scaled, &jpeg.Options{Quality: c.quality}); err != nil {
		dst.Close()
		os.Remove(out)
		return path, errors.Wrapf(err, "failed to encode %s", out)
	}
	if err := dst.Close(); err != nil {
		os.Remove(out)
		return path, errors.Wrapf(err, "failed to write %s", out)
	}

	return out, nil
}
