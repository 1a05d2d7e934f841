package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// windowScript increments the counter for the current window, starting the
// window on first hit. Returns {count, remaining window ms}.
const windowScript = `
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if count == 1 or ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

// RedisWindow is the fixed-window counter shared by every API instance.
type RedisWindow struct {
	client *redis.Client
	script *redis.Script
	max    int
	ttl    time.Duration
	now    func() time.Time
}

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

func NewRedisWindow(client *redis.Client, max int, ttl time.Duration, now func() time.Time) *RedisWindow {
	if client == nil {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &RedisWindow{
		client: client,
		script: redis.NewScript(windowScript),
		max:    max,
		ttl:    ttl,
		now:    now,
	}
}

func (w *RedisWindow) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	if w == nil {
		return nil, errors.New("redis rate limiter not configured")
	}
	if key == "" {
		return nil, errors.New("rate limiter key is empty")
	}

	res, err := w.script.Run(ctx, w.client, []string{key}, w.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	return windowResult(int(res[0]), w.max, time.Duration(res[1])*time.Millisecond, w.now()), nil
}

// windowResult turns a hit count and the time left in its window into a
// decision. The hit that crosses max is the first one refused.
func windowResult(count, max int, left time.Duration, now time.Time) *RateLimitResult {
	if left < 0 {
		left = 0
	}
	res := &RateLimitResult{
		Allowed:   count <= max,
		Limit:     max,
		Remaining: max - count,
		ResetTime: now.Add(left),
	}
	if !res.Allowed {
		res.Remaining = 0
		res.RetryAfter = left
	}
	return res
}
