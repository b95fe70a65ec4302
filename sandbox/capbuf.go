package sandbox

import (
	"fmt"
	"sync"
)

// CapBuffer is a bounded output accumulator. Writes past the configured
// ceiling are dropped, the truncated flag is set, and a single trailing
// marker noting the ceiling is appended to the readable contents.
type CapBuffer struct {
	mu        sync.Mutex
	buf       []byte
	limit     int
	truncated bool
}

func NewCapBuffer(limit int) *CapBuffer {
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}
	return &CapBuffer{limit: limit}
}

// Write never returns an error; an exec.Cmd must not be interrupted by the
// capture layer. Bytes beyond the ceiling are discarded.
func (b *CapBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.truncated {
		return len(p), nil
	}
	room := b.limit - len(b.buf)
	if len(p) <= room {
		b.buf = append(b.buf, p...)
		return len(p), nil
	}
	b.buf = append(b.buf, p[:room]...)
	b.truncated = true
	return len(p), nil
}

// Truncated reports whether any bytes were dropped.
func (b *CapBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}

// Len returns the number of captured bytes, excluding the marker.
func (b *CapBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// String returns the captured output. If the buffer overflowed, the
// truncation marker is appended exactly once.
func (b *CapBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.truncated {
		return string(b.buf)
	}
	return string(b.buf) + fmt.Sprintf("\n[output truncated - exceeded %d byte limit]", b.limit)
}
