package log

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// SlogAdapter writes diagnostic events to an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at the slog level matching its severity.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("code", event.Code.String()),
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.Register != "" {
		attrs = append(attrs, slog.String("register", event.Register))
	}
	if event.Field != "" {
		attrs = append(attrs, slog.String("field", event.Field))
	}
	for _, k := range slices.Sorted(maps.Keys(event.Context)) {
		attrs = append(attrs, slog.String(k, event.Context[k]))
	}

	msg := event.Message
	if msg == "" {
		msg = "diagnostic"
	}
	a.logger.LogAttrs(context.Background(), slogLevel(event.Severity), msg, attrs...)
}

func slogLevel(s Severity) slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
