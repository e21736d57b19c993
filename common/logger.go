// Package common provides shared constants, types, and utilities
// used across the Rig Panel application.
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

// ParseLogLevel maps a name such as "debug" to a LogLevel.
// Unknown names map to LevelInfo.
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// logSink is the state shared by a logger and every component logger
// derived from it.
type logSink struct {
	mu          sync.Mutex
	level       LogLevel
	out         *log.Logger
	console     io.Writer
	file        *os.File
	filePath    string
	maxFileSize int64
	maxBackups  int
}

// AppLogger is the application logger. Loggers returned by With share the
// parent's level, outputs and rotation state; they only add a component tag.
type AppLogger struct {
	sink      *logSink
	component string
}

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level       LogLevel
	EnableFile  bool
	MaxFileSize int64 // in bytes, default 5MB
	MaxBackups  int   // number of rotated files to keep, default 5
	// Console receives log lines besides the file; nil means stdout.
	// The terminal UI passes io.Discard so logs don't tear its screen.
	Console io.Writer
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

const (
	defaultMaxFileSize = 5 * 1024 * 1024 // 5MB
	defaultMaxBackups  = 5
)

// NewLogger creates a logger writing to w at the given level.
func NewLogger(w io.Writer, level LogLevel) *AppLogger {
	return &AppLogger{
		sink: &logSink{
			level:       level,
			out:         log.New(w, "", 0),
			console:     w,
			maxFileSize: defaultMaxFileSize,
			maxBackups:  defaultMaxBackups,
		},
	}
}

// GetLogger returns the process-wide logger.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = NewLogger(os.Stdout, LevelInfo)
	})
	return defaultLogger
}

// InitLogger configures the process-wide logger.
// Should be called early in application startup.
func InitLogger(config LogConfig) error {
	logger := GetLogger()
	logger.SetLevel(config.Level)

	logger.sink.mu.Lock()
	if config.MaxFileSize > 0 {
		logger.sink.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		logger.sink.maxBackups = config.MaxBackups
	}
	if config.Console != nil {
		logger.sink.console = config.Console
		logger.sink.out = log.New(config.Console, "", 0)
	}
	logger.sink.mu.Unlock()

	if config.EnableFile {
		return logger.EnableFileLogging(GetLogDir())
	}
	return nil
}

// With returns a logger that tags every line with component.
func (l *AppLogger) With(component string) *AppLogger {
	return &AppLogger{sink: l.sink, component: component}
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the current minimum log level.
func (l *AppLogger) Level() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetOutput replaces the log destination. Any open log file is closed.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		l.sink.file.Close()
		l.sink.file = nil
		l.sink.filePath = ""
	}
	l.sink.out = log.New(w, "", 0)
	l.sink.console = w
}

// EnableFileLogging writes to dir/rigpanel.log in addition to the console.
// The file is rotated when it exceeds the configured size.
func (l *AppLogger) EnableFileLogging(dir string) error {
	if dir == "" {
		return fmt.Errorf("log directory unknown")
	}
	if isSymlink(dir) {
		return fmt.Errorf("security error: log directory is a symlink")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	logPath := filepath.Join(dir, LogFileName)
	if isSymlink(logPath) {
		return fmt.Errorf("security error: log file is a symlink")
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.openLocked(logPath)
}

// openLocked rotates logPath if it is too large and opens it for append.
func (s *logSink) openLocked(logPath string) error {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}

	if info, err := os.Stat(logPath); err == nil && info.Size() >= s.maxFileSize {
		rotateFile(logPath, s.maxBackups)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	s.file = file
	s.filePath = logPath
	s.out = log.New(io.MultiWriter(s.console, file), "", 0)
	return nil
}

// CheckRotation rotates the log file when it has grown past the limit.
// Long-running modes call it periodically.
func (l *AppLogger) CheckRotation() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.filePath == "" {
		return
	}
	info, err := os.Stat(l.sink.filePath)
	if err != nil || info.Size() < l.sink.maxFileSize {
		return
	}
	if err := l.sink.openLocked(l.sink.filePath); err != nil {
		l.sink.out = log.New(l.sink.console, "", 0)
		l.sink.filePath = ""
	}
}

// Close closes the log file. Should be called on application shutdown.
func (l *AppLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	l.sink.filePath = ""
	l.sink.out = log.New(os.Stdout, "", 0)
	return err
}

// CloseLogger closes the process-wide logger.
func CloseLogger() error {
	return GetLogger().Close()
}

// rotateFile gzips logPath into logPath.<timestamp>.gz and prunes old backups.
// When compression fails the file is renamed instead.
func rotateFile(logPath string, maxBackups int) {
	rotated := fmt.Sprintf("%s.%s", logPath, time.Now().Format("20060102-150405"))
	if err := gzipFile(logPath, rotated+".gz"); err != nil {
		os.Remove(rotated + ".gz")
		os.Rename(logPath, rotated)
	} else {
		os.Remove(logPath)
	}
	pruneBackups(logPath, maxBackups)
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

// pruneBackups keeps the newest maxBackups rotated files of logPath.
func pruneBackups(logPath string, maxBackups int) {
	matches, err := filepath.Glob(logPath + ".*")
	if err != nil || len(matches) <= maxBackups {
		return
	}

	modTime := func(p string) time.Time {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}
		}
		return info.ModTime()
	}
	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).Before(modTime(matches[j]))
	})

	for _, p := range matches[:len(matches)-maxBackups] {
		os.Remove(p)
	}
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// logf formats and writes one line. depth is the number of frames between
// logf and the code that should be reported as the caller.
func (l *AppLogger) logf(depth int, level LogLevel, msg string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if level < l.sink.level {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(depth); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	if l.component != "" {
		msg = "[" + l.component + "] " + msg
	}

	l.sink.out.Printf("%s [%s] %s: %s",
		time.Now().Format("2006/01/02 15:04:05"), level, caller, msg)
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.logf(2, LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.logf(2, LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.logf(2, LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.logf(2, LevelError, msg, args...)
}

// Shorthand functions for the process-wide logger.

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	GetLogger().logf(2, LevelDebug, msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().logf(2, LevelInfo, msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().logf(2, LevelWarn, msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().logf(2, LevelError, msg, args...)
}
