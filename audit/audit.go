// Package audit records security-relevant pipeline events: admission
// rejections, sandbox faults, unhandled failures. Sinks are fire and
// forget, a broken sink never fails a submission.
package audit

import (
	"context"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is one audit entry. Fields carries event-specific detail such as
// the rejected key or the quest under evaluation.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     string         `json:"event"`
	RequestID string         `json:"request_id,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

type Sink interface {
	Record(ctx context.Context, ev Event)
}

// MultiSink fans one event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, ev Event) {
	for _, sink := range m {
		sink.Record(ctx, ev)
	}
}

// NopSink discards everything; used when auditing is not configured.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, ev Event) {}
