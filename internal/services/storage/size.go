package storage

import (
	"fmt"
	"image"
	"os"
	"strings"
)

// FormatFileSize renders the size of the file at path with two decimals and
// a BT/KB/MB/GB unit. Directories yield "" and missing files "0BT".
func FormatFileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "0BT"
	}
	if info.IsDir() {
		return ""
	}
	return FormatSize(info.Size())
}

// FormatSize formats a byte count the way FormatFileSize does.
func FormatSize(n int64) string {
	v := float64(n)
	switch {
	case n < 1024:
		return twoDecimals(v) + "BT"
	case n < 1048576:
		return twoDecimals(v/1024) + "KB"
	case n < 1073741824:
		return twoDecimals(v/1048576) + "MB"
	}
	return twoDecimals(v/1073741824) + "GB"
}

// twoDecimals formats like the "#.00" pattern: no leading zero below one.
func twoDecimals(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	return strings.TrimPrefix(s, "0")
}

// ImageSize returns the pixel dimensions of the image at path without
// decoding the pixel data.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
