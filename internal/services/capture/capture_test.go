package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launch struct {
	req         LaunchRequest
	requestCode int
}

// recorder implements both CanLaunchForResult and Launcher.
type recorder struct {
	launches []launch
}

func (r *recorder) LaunchForResult(req LaunchRequest, requestCode int) error {
	r.launches = append(r.launches, launch{req, requestCode})
	return nil
}

func (r *recorder) Launch(req LaunchRequest) error {
	r.launches = append(r.launches, launch{req, -1})
	return nil
}

func TestPickers(t *testing.T) {
	r := &recorder{}

	require.NoError(t, PickImageUsePick(r, 1))
	require.NoError(t, PickImage(r, 2))
	require.NoError(t, PickAudio(r, 3))
	require.NoError(t, PickVideo(r, 4))

	require.Len(t, r.launches, 4)
	assert.Equal(t, launch{LaunchRequest{Action: ActionPick, Data: ImagesContentURI, MediaType: ImageMedia}, 1}, r.launches[0])
	assert.Equal(t, launch{LaunchRequest{Action: ActionGetContent, MediaType: ImageMedia}, 2}, r.launches[1])
	assert.Equal(t, launch{LaunchRequest{Action: ActionGetContent, MediaType: AudioMedia}, 3}, r.launches[2])
	assert.Equal(t, launch{LaunchRequest{Action: ActionGetContent, MediaType: VideoMedia}, 4}, r.launches[3])
}

func TestTakePhoto_CreatesParentDirectory(t *testing.T) {
	r := &recorder{}
	savePath := filepath.Join(t.TempDir(), "a", "b", "1700000000000.jpg")

	require.NoError(t, TakePhoto(r, 1002, savePath))

	info, err := os.Stat(filepath.Dir(savePath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.Len(t, r.launches, 1)
	assert.Equal(t, 1002, r.launches[0].requestCode)
	assert.Equal(t, ActionImageCapture, r.launches[0].req.Action)
	assert.Equal(t, "file://"+filepath.ToSlash(savePath), r.launches[0].req.Extras["output"])
	assert.Contains(t, r.launches[0].req.Flags, FlagGrantWrite)
}

func TestTakePhoto_Errors(t *testing.T) {
	r := &recorder{}

	assert.ErrorIs(t, TakePhoto(r, 1, ""), ErrEmptySavePath)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	assert.ErrorIs(t, TakePhoto(r, 1, filepath.Join(blocker, "photo.jpg")), ErrCreateDirectory)

	assert.Empty(t, r.launches, "nothing is launched on error")
}

func TestRecordAudioAndVideo(t *testing.T) {
	r := &recorder{}
	savePath := filepath.Join(t.TempDir(), "videos", "clip.mp4")

	require.NoError(t, RecordAudio(r, 7, 1<<20))
	require.NoError(t, RecordVideo(r, 8, 10<<20, savePath))
	assert.ErrorIs(t, RecordVideo(r, 9, 1, ""), ErrEmptySavePath)

	require.Len(t, r.launches, 2)
	assert.Equal(t, ActionRecordSound, r.launches[0].req.Action)
	assert.Equal(t, int64(1<<20), r.launches[0].req.Extras["max_bytes"])
	assert.Equal(t, ActionVideoCapture, r.launches[1].req.Action)
	assert.Equal(t, int64(10<<20), r.launches[1].req.Extras["size_limit"])
	assert.Equal(t, 0, r.launches[1].req.Extras["video_quality"])
}

func TestCropImage(t *testing.T) {
	r := &recorder{}
	dir := t.TempDir()
	src := filepath.Join(dir, "in.jpg")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	assert.ErrorIs(t, CropImage(r, filepath.Join(dir, "missing.jpg"), 200, 200, 5, filepath.Join(dir, "out.jpg")), ErrFileNotFound)

	require.NoError(t, CropImage(r, src, 200, 100, 5, filepath.Join(dir, "crops", "out.jpg")))
	require.Len(t, r.launches, 1)

	req := r.launches[0].req
	assert.Equal(t, ActionCrop, req.Action)
	assert.Equal(t, IntentURI(src), req.Data)
	assert.Equal(t, 1, req.Extras["aspectX"])
	assert.Equal(t, 1, req.Extras["aspectY"])
	assert.Equal(t, 200, req.Extras["outputX"])
	assert.Equal(t, 100, req.Extras["outputY"])
	assert.Equal(t, "JPEG", req.Extras["outputFormat"])
}

func TestPlayVideo(t *testing.T) {
	r := &recorder{}
	video := filepath.Join(t.TempDir(), "v.mp4")

	assert.ErrorIs(t, PlayVideo(r, ""), ErrEmptyPath)
	assert.ErrorIs(t, PlayVideo(r, video), ErrFileNotFound)

	require.NoError(t, os.WriteFile(video, []byte("x"), 0644))
	require.NoError(t, PlayVideo(r, video))
	require.Len(t, r.launches, 1)
	assert.Equal(t, ActionView, r.launches[0].req.Action)
	assert.Equal(t, VideoMedia, r.launches[0].req.MediaType)
}

func TestIntentURI(t *testing.T) {
	assert.Equal(t, "", IntentURI(""))
	assert.Equal(t, "file:///tmp/a%20b.jpg", IntentURI("/tmp/a b.jpg"))
}
