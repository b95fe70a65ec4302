package audit

import (
	"context"
	"log/slog"
)

// SlogSink writes audit events into the structured application log.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Record(ctx context.Context, ev Event) {
	attrs := []any{
		"audit_event", ev.Event,
		"timestamp", ev.Timestamp,
	}
	if ev.RequestID != "" {
		attrs = append(attrs, "request_id", ev.RequestID)
	}
	if ev.ErrorCode != "" {
		attrs = append(attrs, "error_code", ev.ErrorCode)
	}
	for key, val := range ev.Fields {
		attrs = append(attrs, key, val)
	}

	switch ev.Level {
	case LevelError:
		s.logger.Error("audit", attrs...)
	case LevelWarn:
		s.logger.Warn("audit", attrs...)
	default:
		s.logger.Info("audit", attrs...)
	}
}
