package capture

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Action names the facility a LaunchRequest asks for.
type Action string

const (
	ActionPick         Action = "pick"
	ActionGetContent   Action = "get_content"
	ActionImageCapture Action = "image_capture"
	ActionVideoCapture Action = "video_capture"
	ActionRecordSound  Action = "record_sound"
	ActionCrop         Action = "crop"
	ActionView         Action = "view"
)

const (
	ImageMedia = "image/*"
	AudioMedia = "audio/*"
	VideoMedia = "video/*"

	// ImagesContentURI is the collection the image picker browses.
	ImagesContentURI = "content://media/external/images/media"
)

// Flags granting the launched facility access to Data or the output location.
const (
	FlagGrantRead  = "grant_read_uri_permission"
	FlagGrantWrite = "grant_write_uri_permission"
)

var (
	ErrEmptySavePath   = errors.New("save path must not be empty")
	ErrEmptyPath       = errors.New("media path must not be empty")
	ErrCreateDirectory = errors.New("failed to create save directory")
	ErrFileNotFound    = errors.New("media file does not exist")
)

// LaunchRequest describes an external picker, camera, recorder, cropper or
// player invocation.
type LaunchRequest struct {
	Action    Action         `json:"action"`
	Data      string         `json:"data,omitempty"`
	MediaType string         `json:"type,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
	Flags     []string       `json:"flags,omitempty"`
}

// CanLaunchForResult is implemented by anything that can start a facility
// and later deliver its result tagged with requestCode.
type CanLaunchForResult interface {
	LaunchForResult(req LaunchRequest, requestCode int) error
}

// Launcher starts a facility without expecting a result.
type Launcher interface {
	Launch(req LaunchRequest) error
}

// PickImageUsePick opens the image collection picker.
func PickImageUsePick(p CanLaunchForResult, requestCode int) error {
	return p.LaunchForResult(LaunchRequest{
		Action:    ActionPick,
		Data:      ImagesContentURI,
		MediaType: ImageMedia,
	}, requestCode)
}

// PickImage opens a content chooser for images.
func PickImage(p CanLaunchForResult, requestCode int) error {
	return pickMedia(p, requestCode, ImageMedia)
}

// PickAudio opens a content chooser for audio files.
func PickAudio(p CanLaunchForResult, requestCode int) error {
	return pickMedia(p, requestCode, AudioMedia)
}

// PickVideo opens a content chooser for videos.
func PickVideo(p CanLaunchForResult, requestCode int) error {
	return pickMedia(p, requestCode, VideoMedia)
}

func pickMedia(p CanLaunchForResult, requestCode int, mediaType string) error {
	return p.LaunchForResult(LaunchRequest{
		Action:    ActionGetContent,
		MediaType: mediaType,
	}, requestCode)
}

// TakePhoto launches the camera, asking it to write the photo to savePath.
// The parent directory of savePath is created first.
func TakePhoto(p CanLaunchForResult, requestCode int, savePath string) error {
	if savePath == "" {
		return ErrEmptySavePath
	}
	if err := ensureParentDir(savePath); err != nil {
		return err
	}

	return p.LaunchForResult(LaunchRequest{
		Action: ActionImageCapture,
		Extras: map[string]any{"output": IntentURI(savePath)},
		Flags:  []string{FlagGrantWrite},
	}, requestCode)
}

// RecordAudio launches the sound recorder with a size cap in bytes.
func RecordAudio(p CanLaunchForResult, requestCode int, maxBytes int64) error {
	return p.LaunchForResult(LaunchRequest{
		Action: ActionRecordSound,
		Extras: map[string]any{"max_bytes": maxBytes},
	}, requestCode)
}

// RecordVideo launches the video camera, writing to savePath with a size
// cap in bytes. The parent directory of savePath is created first.
func RecordVideo(p CanLaunchForResult, requestCode int, sizeLimit int64, savePath string) error {
	if savePath == "" {
		return ErrEmptySavePath
	}
	if err := ensureParentDir(savePath); err != nil {
		return err
	}

	return p.LaunchForResult(LaunchRequest{
		Action: ActionVideoCapture,
		Extras: map[string]any{
			"video_quality": 0,
			"size_limit":    sizeLimit,
			"output":        IntentURI(savePath),
		},
		Flags: []string{FlagGrantWrite},
	}, requestCode)
}

// CropImage launches a square cropper on the image at imagePath, producing
// a w x h JPEG at savePath.
func CropImage(p CanLaunchForResult, imagePath string, w, h, requestCode int, savePath string) error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, imagePath)
	}
	return CropImageURI(p, IntentURI(imagePath), w, h, requestCode, savePath)
}

// CropImageURI is CropImage for an image already addressed by URI.
func CropImageURI(p CanLaunchForResult, imageURI string, w, h, requestCode int, savePath string) error {
	if savePath == "" {
		return ErrEmptySavePath
	}
	if err := ensureParentDir(savePath); err != nil {
		return err
	}

	return p.LaunchForResult(LaunchRequest{
		Action:    ActionCrop,
		Data:      imageURI,
		MediaType: ImageMedia,
		Extras: map[string]any{
			"crop":            "true",
			"aspectX":         1,
			"aspectY":         1,
			"outputX":         w,
			"outputY":         h,
			"return-data":     false,
			"scale":           true,
			"scaleUpIfNeeded": true,
			"output":          IntentURI(savePath),
			"outputFormat":    "JPEG",
		},
		Flags: []string{FlagGrantWrite, FlagGrantRead},
	}, requestCode)
}

// PlayVideo opens the video at videoPath in a player.
func PlayVideo(l Launcher, videoPath string) error {
	if videoPath == "" {
		return ErrEmptyPath
	}
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, videoPath)
	}

	return l.Launch(LaunchRequest{
		Action:    ActionView,
		Data:      IntentURI(videoPath),
		MediaType: VideoMedia,
		Extras:    map[string]any{"finish_on_completion": false},
		Flags:     []string{FlagGrantRead},
	})
}

// IntentURI returns the file:// URI handed to launched facilities for path.
// Relative paths are made absolute; an empty path yields "".
func IntentURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func ensureParentDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateDirectory, err)
	}
	return nil
}
