// Package ratelimit implements a fixed-window request limiter keyed by
// caller identity. Policies share one limiter; callers keep key spaces
// apart with a key prefix (for example "api:" vs "workflow:").
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Error reports a rejected request and how long the caller should wait.
type Error struct {
	Limit         int    // window budget
	WindowMs      int    // window length
	RetryAfterSec int    // whole seconds until the window resets
	Identifier    string // rejected key
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limit of %d requests per %dms exceeded, retry in %ds", e.Limit, e.WindowMs, e.RetryAfterSec)
}

type entry struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

// Limiter counts requests per key in fixed windows. A disabled limiter
// admits everything. Safe for concurrent use; each check is a short map
// operation plus expiry cleanup.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	enabled bool
	now     func() time.Time
}

// NewLimiter returns a limiter. With enabled false, Check is a no-op.
func NewLimiter(enabled bool) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		enabled: enabled,
		now:     time.Now,
	}
}

// Check records one request against key and admits it if it fits the
// budget of limit requests per window. The first request of a window
// starts the window; request limit+1 inside it is rejected with a retry
// hint.
func (l *Limiter) Check(key string, limit int, window time.Duration) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	e, ok := l.entries[key]
	if !ok {
		l.entries[key] = &entry{count: 1, windowStart: now, window: window}
		return nil
	}

	if e.count >= limit {
		remaining := window - now.Sub(e.windowStart)
		return &Error{
			Limit:         limit,
			WindowMs:      int(window.Milliseconds()),
			RetryAfterSec: int((remaining + time.Second - 1) / time.Second),
			Identifier:    key,
		}
	}

	e.count++
	return nil
}

// prune drops entries whose window has passed; expired keys start a fresh
// window on their next request.
func (l *Limiter) prune(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= e.window {
			delete(l.entries, key)
		}
	}
}
