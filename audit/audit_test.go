package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captureSink struct {
	events []Event
}

func (c *captureSink) Record(ctx context.Context, ev Event) {
	c.events = append(c.events, ev)
}

func TestMultiSinkFansOut(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	multi := MultiSink{first, second, NopSink{}}

	ev := Event{
		Timestamp: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Level:     LevelWarn,
		Event:     "submission_rate_limited",
		ErrorCode: "admission_denied",
		Fields:    map[string]any{"user_id": "u1"},
	}
	multi.Record(context.Background(), ev)

	assert.Equal(t, []Event{ev}, first.events)
	assert.Equal(t, []Event{ev}, second.events)
}

func TestEmptyMultiSink(t *testing.T) {
	assert.NotPanics(t, func() {
		MultiSink{}.Record(context.Background(), Event{Event: "noop"})
	})
}
