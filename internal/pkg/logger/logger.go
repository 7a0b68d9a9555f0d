package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/V4T54L/rentwise/internal/adapter/pii"
)

// New builds the process-wide JSON logger. Unknown levels fall back to info.
// A non-nil redactor masks configured attribute keys before they are written.
func New(level string, redactor *pii.Redactor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if redactor != nil {
		opts.ReplaceAttr = redactor.ReplaceAttr
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
