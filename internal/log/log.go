// Package log provides the process-wide structured logger. Call Configure
// once at startup; the package-level functions are safe for concurrent use.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/paularlott/logger"
	logslog "github.com/paularlott/logger/slog"
)

var current atomic.Value // logger.Logger

func init() {
	current.Store(newLogger("info", "console"))
}

// Configure sets the global log level and output format. Level is one of
// trace, debug, info, warn, error; format is console or json. Unknown values
// fall back to info/console.
func Configure(level, format string) {
	current.Store(newLogger(level, format))
}

func newLogger(level, format string) logger.Logger {
	return logslog.New(logslog.Config{
		Level:  strings.ToLower(level),
		Format: strings.ToLower(format),
		Writer: os.Stderr,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logslog.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() logger.Logger {
	return current.Load().(logger.Logger)
}

// Debug logs a debug message with key/value pairs.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs an informational message with key/value pairs.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs a warning message with key/value pairs.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs an error message with key/value pairs.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}
