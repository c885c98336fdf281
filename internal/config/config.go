package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `validate:"min=1,max=65535"`
	APIToken string // Pusty token wyłącza autoryzację

	Engine              string  `validate:"oneof=yunet onnx"`
	ModelPath           string  `validate:"required"`
	LibraryDir          string  // Katalog z biblioteką onnxruntime
	ConfidenceThreshold float64 `validate:"gt=0,lt=1"`
	NMSThreshold        float64 `validate:"gt=0,lt=1"`
	TopK                int     `validate:"min=1"`

	DatabaseURL         string `validate:"required"` // Ścieżka SQLite albo postgres://
	ExternalStorageRoot string `validate:"required"`

	CacheDirectory       string `validate:"required"`
	CacheMaxAge          int    `validate:"min=0"` // W minutach, 0 = bez czyszczenia
	CacheCleanInterval   int    `validate:"min=1"` // W sekundach
	CompressMaxDimension int    `validate:"min=0"` // 0 = bez kompresji
	CompressQuality      int    `validate:"min=1,max=100"`

	ProcessingWorkers int `validate:"min=1"`
	QueueSize         int `validate:"min=1"`

	LogDirectory string
	LogLevel     string `validate:"oneof=debug info warn warning error"`
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory and then to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvAsInt("PORT", 8080),
		APIToken: getEnv("API_TOKEN", ""),

		Engine:              getEnv("ENGINE", "yunet"),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "face_detection_yunet_2023mar.onnx")),
		LibraryDir:          getEnv("LIBRARY_DIR", filepath.Join(".", "lib")),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.7),
		NMSThreshold:        getEnvAsFloat("NMS_THRESHOLD", 0.3),
		TopK:                getEnvAsInt("TOP_K", 5000),

		DatabaseURL:         getEnv("DATABASE_URL", filepath.Join(".", "data", "media.db")),
		ExternalStorageRoot: getEnv("EXTERNAL_STORAGE", "/storage/emulated/0"),

		CacheDirectory:       getEnv("CACHE_DIR", filepath.Join(".", "cache")),
		CacheMaxAge:          getEnvAsInt("CACHE_MAX_AGE", 60),
		CacheCleanInterval:   getEnvAsInt("CACHE_CLEAN_INTERVAL", 300),
		CompressMaxDimension: getEnvAsInt("COMPRESS_MAX_DIMENSION", 1280),
		CompressQuality:      getEnvAsInt("COMPRESS_QUALITY", 85),

		ProcessingWorkers: getEnvAsInt("PROCESSING_WORKERS", 2),
		QueueSize:         getEnvAsInt("QUEUE_SIZE", 100),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
