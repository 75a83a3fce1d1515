package runtime

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/md-rashed-zaman/consultdesk/libs/config"
)

// NewLogger returns the JSON logger every process in this repo writes with.
// LOG_LEVEL selects debug, info, warn or error; anything else means info.
func NewLogger(service string) *slog.Logger {
	return NewLoggerTo(os.Stdout, service, ParseLevel(config.String("LOG_LEVEL", "info")))
}

func NewLoggerTo(w io.Writer, service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("service", service)
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
