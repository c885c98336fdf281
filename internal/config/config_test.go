package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "yunet", cfg.Engine)
	assert.Equal(t, "/storage/emulated/0", cfg.ExternalStorageRoot)
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold)
	assert.Equal(t, 2, cfg.ProcessingWorkers)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENGINE", "onnx")
	t.Setenv("EXTERNAL_STORAGE", "/mnt/sdcard")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.55")
	t.Setenv("PROCESSING_WORKERS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "onnx", cfg.Engine)
	assert.Equal(t, "/mnt/sdcard", cfg.ExternalStorageRoot)
	assert.Equal(t, 0.55, cfg.ConfidenceThreshold)
	assert.Equal(t, 2, cfg.ProcessingWorkers, "invalid ints fall back to the default")
}

func TestValidate_RejectsUnknownEngine(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENGINE", "haar")

	err := Load().Validate()
	assert.Error(t, err)
}
