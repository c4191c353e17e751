// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Output always goes to stderr. When a log file is configured it is
// additionally written to a size-rotated file.
//
// Example usage:
//
//	logger.Init(logger.Config{Verbosity: 2, File: "logs/pricer.log"})
//	defer logger.Close()
//	logger.Infof("listening on %s", addr)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

// Config controls verbosity and the optional rotating log file.
type Config struct {
	Verbosity  int    `mapstructure:"verbosity"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	mu      sync.RWMutex
	current = Info
	rotator *lumberjack.Logger
)

func init() {
	log.SetOutput(os.Stderr)
	// e.g. 2026/01/25 15:42:10 server.go:87 [INFO]  listening on :8080
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// Init applies cfg. It may be called again to reconfigure; a previously
// opened log file is closed first.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	current = Level(cfg.Verbosity)

	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return err
	}

	rotator = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}

// Close releases the rotating log file, if any, and falls back to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	log.SetOutput(os.Stderr)
	return err
}

// SetVerbosity sets the global logging verbosity.
func SetVerbosity(v int) {
	mu.Lock()
	current = Level(v)
	mu.Unlock()
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return current >= l
}

// logf checks verbosity and delegates formatting/output to the standard
// library logger. calldepth 3 points Lshortfile at the caller of Infof etc.
func logf(l Level, prefix, format string, args ...any) {
	if enabled(l) {
		_ = log.Output(3, prefix+fmt.Sprintf(format, args...))
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Warnf logs a recoverable problem at info verbosity.
func Warnf(format string, args ...any) {
	logf(Info, "[WARN]  ", format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
