// Package ratelimit provides the per-client limiter injected into services
// that guard expensive upstream calls. Implementations are safe for
// concurrent use.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a token bucket per key held in process memory. Each key
// gets max tokens refilled continuously over window.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     float64
	refill  float64
	now     func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewMemory constructs an in-process token bucket limiter allowing max
// requests per window for each key.
func NewMemory(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		max:     float64(max),
		refill:  float64(max) / window.Seconds(),
		now:     time.Now,
	}
}

// Allow consumes one token for key, reporting false when the bucket is empty.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.max, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.refill
		if b.tokens > l.max {
			b.tokens = l.max
		}
		b.last = now
	}

	if b.tokens < 1 {
		return false, nil
	}

	b.tokens--
	return true, nil
}

// RedisLimiter counts requests in fixed windows shared across instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedis constructs a Redis-backed fixed-window limiter. The prefix
// namespaces the counter keys.
func NewRedis(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		window: window,
	}
}

// Allow increments the window counter for key and reports whether the count
// stays within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	counter := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.client.Incr(ctx, counter).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, counter, l.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	return count <= l.max, nil
}
