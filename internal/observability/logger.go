package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLoggerTo builds a slog.Logger writing to w, with the same level and
// format switch as storm-data-shared's observability.NewLogger. The service
// uses the shared constructor; this variant exists for the one-shot tools,
// which must keep stdout for their own output and must not replace the
// process-wide default logger.
func NewLoggerTo(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	name := strings.TrimSpace(level)
	if strings.EqualFold(name, "warning") {
		name = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}
