package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "sales_cart:acc-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "sales_cart:acc-1", []byte(`[]`), time.Hour))
	b, ok, err := c.Get(ctx, "sales_cart:acc-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`[]`), b)
	require.Equal(t, time.Hour, mr.TTL("sales_cart:acc-1"))

	require.NoError(t, c.Delete(ctx, "sales_cart:acc-1"))
	_, ok, err = c.Get(ctx, "sales_cart:acc-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_SetWithoutTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	require.NoError(t, c.Set(context.Background(), "pet_status_updates", []byte(`{}`), 0))
	require.Equal(t, time.Duration(0), mr.TTL("pet_status_updates"))
}

func TestRedisCache_GetError(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis get")
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())
	defer rl.Close()

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)
}

func TestRateLimiter_OrderPollBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())
	defer rl.Close()

	at := time.Date(2025, 6, 1, 17, 4, 59, 0, time.FixedZone("ICT", 7*3600))
	key := OrderPollKey(at)
	require.Equal(t, "rl:cafeapi:orders:202506011004", key)

	_, _, err := rl.Allow(context.Background(), key, 60, OrderPollWindow)
	require.NoError(t, err)
	require.Equal(t, OrderPollWindow, mr.TTL(key))

	mr.Close()
	_, _, err = rl.Allow(context.Background(), key, 60, OrderPollWindow)
	require.ErrorContains(t, err, "rate limit rl:cafeapi:orders:")
}
