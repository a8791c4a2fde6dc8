package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle budgets failed login attempts per account key. A nil
// throttle disables budgeting.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) bool
	RecordFailure(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

// redisLoginThrottle counts failures in Redis with a decaying window.
type redisLoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginThrottle builds a Redis-backed throttle. Redis outages fail
// open: an unreachable counter never locks accounts out.
func NewRedisLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &redisLoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func (t *redisLoginThrottle) key(key string) string {
	return "login_attempts:" + key
}

func (t *redisLoginThrottle) Allow(ctx context.Context, key string) bool {
	count, err := t.client.Get(ctx, t.key(key)).Int()
	if err != nil {
		return true
	}
	return count < t.maxAttempts
}

func (t *redisLoginThrottle) RecordFailure(ctx context.Context, key string) {
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, t.key(key))
	pipe.Expire(ctx, t.key(key), t.window)
	_, _ = pipe.Exec(ctx)
}

func (t *redisLoginThrottle) Reset(ctx context.Context, key string) {
	_ = t.client.Del(ctx, t.key(key)).Err()
}
