// Package logger
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"ecotrace/internal/config"
)

// Logger is the structured key-value logger used across the project.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func New(cfg *config.Config) Logger {
	level := slog.LevelInfo

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// Discard drops everything. Used as a default when no logger is wired.
func Discard() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
