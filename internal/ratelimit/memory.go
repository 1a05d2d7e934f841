package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/verlyx/hub/internal/clock"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter counts requests per key in fixed windows.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	ttl     time.Duration
	clock   clock.Clock
	sweepAt time.Time
}

func NewMemoryLimiter(max int, ttl time.Duration, clk clock.Clock) *MemoryLimiter {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &MemoryLimiter{
		windows: map[string]*window{},
		max:     max,
		ttl:     ttl,
		clock:   clk,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (*RateLimitResult, error) {
	if key == "" {
		return &RateLimitResult{Allowed: false}, errors.New("rate limiter key is empty")
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.ttl)}
		l.windows[key] = w
	}

	if w.count >= l.max {
		return &RateLimitResult{
			Allowed:    false,
			Limit:      l.max,
			Remaining:  0,
			ResetTime:  w.resetAt,
			RetryAfter: w.resetAt.Sub(now),
		}, nil
	}

	w.count++
	return &RateLimitResult{
		Allowed:   true,
		Limit:     l.max,
		Remaining: l.max - w.count,
		ResetTime: w.resetAt,
	}, nil
}

// sweep drops elapsed windows at most once per ttl.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.sweepAt = now.Add(l.ttl)
}
