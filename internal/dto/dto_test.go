package dto

import (
	"encoding/json"
	"testing"
	"time"

	"facedetection/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectResponse_NullVersusEmpty(t *testing.T) {
	data, err := json.Marshal(DetectResponse{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"faces":null}`, string(data))

	data, err = json.Marshal(DetectResponse{Faces: []models.Face{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"faces":[]}`, string(data))
}

func TestDetectionEvent_MarshalJSON(t *testing.T) {
	event := DetectionEvent{
		Type:      "detection",
		RequestID: "abc",
		Path:      "/tmp/a.jpg",
		Faces:     []models.Face{{Rect: models.Rect{X: 1, Y: 2, Width: 3, Height: 4}, Confidence: 90}},
		CreatedAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "05-03-2024 14:07:09", decoded["createdAt"])
	assert.Equal(t, "abc", decoded["requestId"])
	assert.Len(t, decoded["faces"], 1)
}

func TestValidation(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(LaunchRequest{Action: ActionChooseImage}))
	assert.NoError(t, validate.Struct(LaunchRequest{Action: ActionTakePhoto}))
	assert.Error(t, validate.Struct(LaunchRequest{Action: "record_video"}))
	assert.Error(t, validate.Struct(LaunchRequest{}))

	assert.NoError(t, validate.Struct(CaptureResult{RequestCode: 1002, OK: true}))
	assert.NoError(t, validate.Struct(CaptureResult{RequestCode: 1001, OK: false}))
	assert.NoError(t, validate.Struct(CaptureResult{RequestCode: 1001, OK: true, URI: "content://x"}))
	assert.Error(t, validate.Struct(CaptureResult{RequestCode: 1001, OK: true}))
	assert.Error(t, validate.Struct(CaptureResult{RequestCode: 7, OK: true}))
}
