// Package observability provides the structured logger and Prometheus
// metrics shared across the engine.
package observability

import (
	"log/slog"
	"os"
)

// LoggerConfig is the subset of service configuration the logger needs.
type LoggerConfig interface {
	LoggingLevel() string
	LoggingFormat() string
}

// NewLogger builds a slog.Logger writing to stdout with the configured
// level and format. Unknown levels fall back to info; unknown formats to JSON.
func NewLogger(cfg LoggerConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LoggingLevel() {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LoggingFormat() == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
