// Package ratelimit admits or rejects submissions with a sliding-window
// log kept in process memory. Counters live for the process lifetime, a
// restart forgets them.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

const (
	DefaultLimit  = 30
	DefaultWindow = 60 * time.Second

	// idle keys are swept at this cadence so the map does not grow with
	// every user the process has ever seen
	janitorInterval = 5 * time.Minute
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before the next
// attempt can succeed. Zero when the decision was allowed.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed {
		return 0
	}
	wait := d.ResetAt.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	lock sync.Mutex
	hits map[string][]time.Time

	stop chan struct{}
	once sync.Once
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
		stop:   make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Key composes the admission key from the authenticated user and the
// remote address, so one user cannot spend another's allowance and one
// address cannot spend across users.
func Key(userID, remoteAddr string) string {
	return fmt.Sprintf("%s|%s", userID, remoteAddr)
}

// Check records an admission probe for key and decides it. A denied
// probe is not recorded, so rejected traffic does not push the reset
// time further out.
func (l *Limiter) Check(key string) Decision {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.lock.Lock()
	defer l.lock.Unlock()

	kept := prune(l.hits[key], cutoff)
	if len(kept) >= l.limit {
		l.hits[key] = kept
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   kept[0].Add(l.window),
		}
	}

	kept = append(kept, now)
	l.hits[key] = kept
	return Decision{
		Allowed:   true,
		Remaining: l.limit - len(kept),
		ResetAt:   kept[0].Add(l.window),
	}
}

func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.window)

	l.lock.Lock()
	defer l.lock.Unlock()

	for key, times := range l.hits {
		kept := prune(times, cutoff)
		if len(kept) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = kept
		}
	}
}

func prune(times []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(times) && !times[idx].After(cutoff) {
		idx++
	}
	return times[idx:]
}
