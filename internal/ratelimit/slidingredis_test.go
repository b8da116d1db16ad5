package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newSliding(t *testing.T) (SlidingRedis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return SlidingRedis{Client: client, Prefix: "test:"}, mr
}

func TestSlidingRedisWindow(t *testing.T) {
	limiter, mr := newSliding(t)
	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "coupon:203.0.113.9", window, max)
		require.NoError(t, err)
		require.True(t, allowed, "attempt %d", i)
		require.Equal(t, max-(i+1), remaining)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "coupon:203.0.113.9", window, max)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)

	// rejected attempts are not stored
	members, err := limiter.Client.ZCard(ctx, "test:coupon:203.0.113.9").Result()
	require.NoError(t, err)
	require.EqualValues(t, max, members)

	mr.FastForward(window)

	allowed, _, _, err = limiter.Allow(ctx, "coupon:203.0.113.9", window, max)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestSlidingRedisResetFollowsOldestAttempt(t *testing.T) {
	limiter, _ := newSliding(t)
	ctx := context.Background()
	window := time.Minute

	before := time.Now().Add(-time.Millisecond)
	_, _, _, err := limiter.Allow(ctx, "k", window, 1)
	require.NoError(t, err)

	allowed, _, reset, err := limiter.Allow(ctx, "k", window, 1)
	require.NoError(t, err)
	require.False(t, allowed)
	require.False(t, reset.Before(before.Add(window)))
	require.False(t, reset.After(time.Now().Add(window)))
}

func TestSlidingRedisKeysAreIndependent(t *testing.T) {
	limiter, _ := newSliding(t)
	ctx := context.Background()

	allowed, _, _, err := limiter.Allow(ctx, "a", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, _, err = limiter.Allow(ctx, "b", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestSlidingRedisWithoutClientAllows(t *testing.T) {
	allowed, remaining, _, err := SlidingRedis{}.Allow(context.Background(), "k", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 3, remaining)
}
