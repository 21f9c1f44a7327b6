package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes coordinator events to an slog.Logger.
// Useful for development when you want to see events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at a level matching its severity.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}

	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}

	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.StoreIO != nil:
		attrs = append(attrs,
			slog.String("op", event.StoreIO.Op),
			slog.String("key", event.StoreIO.Key),
			slog.Int("size", event.StoreIO.Size),
		)
	case event.Transport != nil:
		attrs = append(attrs,
			slog.Uint64("file_id", uint64(event.Transport.FileID)),
			slog.Int("offset", event.Transport.Offset),
			slog.Int("size", event.Transport.Size),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slogLevel(event.Severity), event.Message, attrs...)
}

// slogLevel maps an event severity to an slog level.
// Fatal maps to slog.LevelError+4; slog has no fatal level and the
// coordinator never terminates the process on fatal events.
func slogLevel(s Severity) slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	case SeverityFatal:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
