// Package common provides shared constants, types, and utilities
// used across the WireGuard GUI application.
package common

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config value to a level. Unknown values map to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// AppLogger writes leveled log lines to stderr and, when enabled, to a
// size-rotated file.
type AppLogger struct {
	mu          sync.Mutex
	level       LogLevel
	logger      *log.Logger
	console     io.Writer
	logFile     *os.File
	filePath    string
	maxFileSize int64
	maxBackups  int
}

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level LogLevel
	// Dir enables file logging into Dir when non-empty.
	Dir         string
	MaxFileSize int64 // in bytes, default 5MB
	MaxBackups  int   // number of rotated files to keep, default 5
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

var _ Logger = (*AppLogger)(nil)

const (
	defaultMaxFileSize = 5 * 1024 * 1024
	defaultMaxBackups  = 5
)

// GetLogger returns the process-wide logger.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = &AppLogger{
			level:       LevelInfo,
			console:     os.Stderr,
			logger:      log.New(os.Stderr, "", 0),
			maxFileSize: defaultMaxFileSize,
			maxBackups:  defaultMaxBackups,
		}
	})
	return defaultLogger
}

// InitLogger configures the process-wide logger.
// Should be called early in application startup.
func InitLogger(cfg LogConfig) error {
	logger := GetLogger()
	logger.SetLevel(cfg.Level)

	if cfg.MaxFileSize > 0 {
		logger.maxFileSize = cfg.MaxFileSize
	}
	if cfg.MaxBackups > 0 {
		logger.maxBackups = cfg.MaxBackups
	}

	if cfg.Dir != "" {
		return logger.EnableFileLogging(cfg.Dir)
	}
	return nil
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput replaces the console destination.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = w
	if l.logFile != nil {
		l.logger = log.New(io.MultiWriter(w, l.logFile), "", 0)
		return
	}
	l.logger = log.New(w, "", 0)
}

// EnableFileLogging mirrors output into dir/wireguard-gui.log.
// The file is rotated first if it already exceeds maxFileSize.
func (l *AppLogger) EnableFileLogging(dir string) error {
	if IsSymlink(dir) {
		return fmt.Errorf("refusing symlinked log directory %s", dir)
	}
	if err := EnsureDir(dir); err != nil {
		return err
	}

	logPath := filepath.Join(dir, LogFileName)
	if IsSymlink(logPath) {
		return fmt.Errorf("refusing symlinked log file %s", logPath)
	}

	l.rotateIfNeeded(logPath)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
	}
	l.logFile = file
	l.filePath = logPath
	l.logger = log.New(io.MultiWriter(l.console, file), "", 0)
	return nil
}

func (l *AppLogger) rotateIfNeeded(logPath string) {
	info, err := os.Stat(logPath)
	if err != nil || info.Size() < l.maxFileSize {
		return
	}
	l.rotate(logPath)
}

// rotate gzips the current file next to it and prunes old archives.
func (l *AppLogger) rotate(logPath string) {
	l.mu.Lock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
	l.mu.Unlock()

	archive := fmt.Sprintf("%s.%s.gz", logPath, time.Now().Format("20060102-150405"))
	if err := gzipFile(logPath, archive); err != nil {
		os.Rename(logPath, strings.TrimSuffix(archive, ".gz"))
	} else {
		os.Remove(logPath)
	}

	l.pruneArchives(filepath.Dir(logPath))
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (l *AppLogger) pruneArchives(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, LogFileName+".*"))
	if err != nil || len(matches) <= l.maxBackups {
		return
	}

	// oldest first
	sort.Slice(matches, func(i, j int) bool {
		infoI, errI := os.Stat(matches[i])
		infoJ, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().Before(infoJ.ModTime())
	})

	for _, path := range matches[:len(matches)-l.maxBackups] {
		os.Remove(path)
	}
}

func (l *AppLogger) log(level LogLevel, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf(msg, args...)
	}

	l.logger.Printf("%s [%s] %s: %s", time.Now().Format("2006/01/02 15:04:05"), level, caller, text)
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	GetLogger().Debug(msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().Info(msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().Warn(msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().Error(msg, args...)
}

// Close closes the log file. Should be called on application shutdown.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	l.logger = log.New(l.console, "", 0)
	return err
}

// CloseLogger closes the default logger.
func CloseLogger() error {
	return GetLogger().Close()
}
