package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterConsumesAndRefills(t *testing.T) {
	limiter := NewMemory(2, time.Minute)

	current := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(context.Background(), "admin-1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.False(t, allowed, "bucket exhausted")

	// half the window refills one of the two tokens
	current = current.Add(30 * time.Second)
	allowed, err = limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemory(1, time.Minute)

	allowed, err := limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "scheduler-2")
	require.NoError(t, err)
	require.True(t, allowed, "other keys keep their own bucket")
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	limiter := NewRedis(client, "assist", 2, time.Minute)

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(context.Background(), "admin-1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = limiter.Allow(context.Background(), "scheduler-2")
	require.NoError(t, err)
	require.True(t, allowed, "counters are per key")

	server.FastForward(2 * time.Minute)

	allowed, err = limiter.Allow(context.Background(), "admin-1")
	require.NoError(t, err)
	require.True(t, allowed, "window expired")
}

func TestRedisLimiterReportsBackendErrors(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	server.Close()

	limiter := NewRedis(client, "assist", 2, time.Minute)
	_, err = limiter.Allow(context.Background(), "admin-1")
	require.Error(t, err)
}
