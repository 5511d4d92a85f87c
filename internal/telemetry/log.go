// Package telemetry wires the engine's ambient logging and tracing: a
// leveled slog logger filtered by the MEILISYNC_LOG environment variable,
// and the OpenTelemetry tracer/meter providers. The providers are installed
// globally and flushed on exit; the reconciler records no spans or metrics.
package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// EnvLogFilter is the environment variable controlling log verbosity,
// analogous to RUST_LOG in the system this engine mirrors.
const EnvLogFilter = "MEILISYNC_LOG"

// NewLogger builds a text-handler slog.Logger whose level is read from
// EnvLogFilter (default "info"). Accepted values: debug, info, warn, error.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFilter))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
