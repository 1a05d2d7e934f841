package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyRequest = "ratelimit:request:%s"

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

// RequestLimiter applies the global per-client request budget.
type RequestLimiter struct {
	shared *RedisWindow
	local  *MemoryLimiter
	log    *zap.Logger
}

func NewRequestLimiter(cfg config.Config, client *redis.Client, clk clock.Clock, log *zap.Logger) *RequestLimiter {
	max := cfg.RateLimitMax
	if max <= 0 {
		max = 100
	}
	ttl := cfg.RateLimitTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &RequestLimiter{
		shared: NewRedisWindow(client, max, ttl, clk.Now),
		local:  NewMemoryLimiter(max, ttl, clk),
		log:    log.Named("ratelimit"),
	}
}

// Allow counts against the shared Redis window when available. A Redis
// failure falls back to the local window so an outage does not block traffic.
func (l *RequestLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	key = strings.TrimSpace(key)
	if l.shared != nil && key != "" {
		res, err := l.shared.Allow(ctx, fmt.Sprintf(keyRequest, key))
		if err == nil {
			return res, nil
		}
		l.log.Warn("redis rate limit failed, using local window", zap.Error(err))
	}
	return l.local.Allow(ctx, key)
}

// NewRedisClient returns nil when REDIS_ADDR is unset.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("redis not configured, using in-memory rate limiting and locks")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewLocker(client *redis.Client, clk clock.Clock) Locker {
	if client == nil {
		return NewMemoryLocker(clk)
	}
	return NewRedisLocker(client)
}
