package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, window time.Duration, now *time.Time) *Limiter {
	l := NewLimiter(limit, window)
	l.now = func() time.Time { return *now }
	return l
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(3, time.Minute, &now)
	defer l.Close()

	for i := 0; i < 3; i++ {
		decision := l.Check("u1|10.0.0.1")
		assert.True(t, decision.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, decision.Remaining)
	}

	decision := l.Check("u1|10.0.0.1")
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, now.Add(time.Minute), decision.ResetAt)
}

func TestLimiterWindowSlides(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(2, time.Minute, &now)
	defer l.Close()

	require.True(t, l.Check("k").Allowed)
	require.True(t, l.Check("k").Allowed)
	require.False(t, l.Check("k").Allowed)

	// beyond the window both slots free up again
	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Check("k").Allowed)
	assert.True(t, l.Check("k").Allowed)
	assert.False(t, l.Check("k").Allowed)
}

func TestLimiterDeniedProbesDoNotExtendReset(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	start := now
	l := newTestLimiter(1, time.Minute, &now)
	defer l.Close()

	require.True(t, l.Check("k").Allowed)

	now = now.Add(30 * time.Second)
	decision := l.Check("k")
	require.False(t, decision.Allowed)
	assert.Equal(t, start.Add(time.Minute), decision.ResetAt)
	assert.Equal(t, 30*time.Second, decision.RetryAfter(now))

	// the denied probe above must not delay the original expiry
	now = start.Add(time.Minute + time.Second)
	assert.True(t, l.Check("k").Allowed)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(1, time.Minute, &now)
	defer l.Close()

	require.True(t, l.Check(Key("u1", "10.0.0.1")).Allowed)
	assert.False(t, l.Check(Key("u1", "10.0.0.1")).Allowed)

	assert.True(t, l.Check(Key("u2", "10.0.0.1")).Allowed)
	assert.True(t, l.Check(Key("u1", "10.0.0.2")).Allowed)
}

func TestLimiterSweepDropsIdleKeys(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(5, time.Minute, &now)
	defer l.Close()

	for i := 0; i < 10; i++ {
		l.Check(fmt.Sprintf("key-%d", i))
	}

	now = now.Add(2 * time.Minute)
	l.sweep()

	l.lock.Lock()
	defer l.lock.Unlock()
	assert.Empty(t, l.hits)
}

func TestLimiterConcurrentChecks(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Close()

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Check("shared").Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 100, count)
}
