package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// OrderPollWindow outlives the minute bucket so late increments still expire.
const OrderPollWindow = 70 * time.Second

// OrderPollKey is the per-minute bucket for watcher reads of GET /orders/:id.
func OrderPollKey(at time.Time) string {
	return "rl:cafeapi:orders:" + at.UTC().Format("200601021504")
}

// RateLimiter counts backend calls per bucket with INCR + EXPIRE.
type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Allow counts one call in bucket key and reports whether the bucket is
// still within limit, along with the current count.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrapf(err, "rate limit %s", key)
	}
	n := incr.Val()
	return n <= limit, n, nil
}

func (rl *RateLimiter) Close() error {
	return rl.c.Close()
}
