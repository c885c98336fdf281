package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"facedetection/internal/logger"
)

func ShowLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveLogFile(w, r, logger.LogFile())
	}
}

func serveLogFile(w http.ResponseWriter, r *http.Request, filePath string) {
	// Sprawdź czy plik istnieje
	if _, err := os.Stat(filePath); filePath == "" || os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filepath.Base(filePath)))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}

func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.CleanLogs(filepath.Base(logger.LogFile()))
		w.WriteHeader(http.StatusNoContent)
	}
}
