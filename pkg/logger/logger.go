// Package logger provides the application-wide structured logger built on
// log/slog, plus small helpers for common attributes.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"
)

// Module provides the shared *slog.Logger.
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)

// NewLogger creates a slog.Logger configured from the environment.
//
// LOG_LEVEL selects the minimum level (debug, info, warn, error; default info).
// GO_ENV=development switches to a human-readable text handler; any other
// value emits JSON for log aggregation.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Scope returns a "scope" attribute used to namespace log lines per component
// (e.g. "entities.repo", "projectrel.svc").
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an "error" attribute carrying the error value itself so
// handlers can render it however they like.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
