package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"facedetection/internal/config"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotating log file written inside the log directory.
const LogFileName = "app.log"

// Logger provides leveled printf-style logging to stdout and a rotating file.
type Logger struct {
	log    *logrus.Logger
	logDir string
	file   *lumberjack.Logger
	mu     sync.Mutex
}

// NewLogger creates a Logger writing to stdout and <LogDirectory>/app.log.
// When the directory cannot be created the logger keeps writing to stdout only.
func NewLogger(cfg *config.Config) *Logger {
	l := &Logger{
		log:    newLogrus(cfg.LogLevel),
		logDir: cfg.LogDirectory,
	}

	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		l.log.SetOutput(os.Stdout)
		l.Warning("Failed to create log directory %s: %v", cfg.LogDirectory, err)
		return l
	}

	l.file = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDirectory, LogFileName),
		LocalTime:  true,
		Compress:   true,
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
	}
	l.log.SetOutput(io.MultiWriter(os.Stdout, l.file))
	return l
}

// New creates a Logger without a backing file. Used by the CLI and tests.
func New(w io.Writer) *Logger {
	l := &Logger{log: newLogrus("info")}
	l.log.SetOutput(w)
	return l
}

func newLogrus(level string) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	log.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		FieldsOrder:     []string{"caller"},
	})
	return log
}

func (l *Logger) entry() *logrus.Entry {
	if _, file, line, ok := runtime.Caller(2); ok {
		return l.log.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	return logrus.NewEntry(l.log)
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry().Debugf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.entry().Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.entry().Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.entry().Errorf(format, v...)
}

// LogFile returns the path of the active log file, or "" when logging to stdout only.
func (l *Logger) LogFile() string {
	if l.file == nil {
		return ""
	}
	return l.file.Filename
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logDir == "" {
		return
	}

	filePath := filepath.Join(l.logDir, filepath.Base(fileName))
	if err := os.Truncate(filePath, 0); err != nil {
		l.Error("Error clearing log file: %v", err)
		return
	}

	// Lumberjack reopens the file in append mode on the next write.
	if l.file != nil && l.file.Filename == filePath {
		l.file.Close()
	}

	l.Info("File content has been cleared.")
}
