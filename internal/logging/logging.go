package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger. JSON output when
// NEXASHIELD_JSON_LOG=1/true, text otherwise. Logs go to stderr so scan
// output on stdout stays machine-readable.
func Init(component string) *slog.Logger {
	mode := strings.ToLower(os.Getenv("NEXASHIELD_JSON_LOG"))
	jsonMode := mode == "1" || mode == "true" || mode == "json"

	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	var handler slog.Handler
	if jsonMode {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler).With("component", component)
	slog.SetDefault(logger)
	return logger
}

func levelFromEnv() slog.Leveler {
	switch strings.ToLower(os.Getenv("NEXASHIELD_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
