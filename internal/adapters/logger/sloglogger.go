// Package logger implements ports.Logger on top of log/slog with the tint
// handler for colored, human-readable output.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level aliases slog.Level so config does not import slog directly.
type Level = slog.Level

// ParseLevel converts a string level to a Level. Unknown strings default to Info.
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to Info
	}
}

// SlogLogger implements the ports.Logger interface using log/slog.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger writing colored output to os.Stderr.
func NewSlogLogger(level Level) *SlogLogger {
	return &SlogLogger{
		logger: slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})),
	}
}

// args flattens the optional field map into slog key-value pairs.
func args(fields ...map[string]interface{}) []any {
	if len(fields) == 0 || fields[0] == nil {
		return nil
	}
	kv := make([]any, 0, len(fields[0])*2)
	for k, v := range fields[0] {
		kv = append(kv, k, v)
	}
	return kv
}

// Debug logs a message at Debug level.
func (l *SlogLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.DebugContext(ctx, msg, args(fields...)...)
}

// Info logs a message at Info level.
func (l *SlogLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.InfoContext(ctx, msg, args(fields...)...)
}

// Warn logs a message at Warning level.
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.logger.WarnContext(ctx, msg, args(fields...)...)
}

// Error logs an error message at Error level.
func (l *SlogLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	kv := append([]any{"error", err}, args(fields...)...)
	l.logger.ErrorContext(ctx, msg, kv...)
}
