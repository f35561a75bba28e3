// Package redisstore implements the rate limiter and the short-lived caches
// on top of Redis.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window log limiter. Each (endpoint, client) pair
// owns a sorted set of request timestamps in milliseconds.
type RateLimiter struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(rdb redis.Cmdable) *RateLimiter {
	return &RateLimiter{rdb: rdb, now: time.Now}
}

// IsLimited records the request and reports whether it exceeds maxRequests
// within the trailing window. The current request is part of the count.
func (l *RateLimiter) IsLimited(ctx context.Context, clientID, endpoint string, maxRequests int, window time.Duration) (bool, error) {
	key := rateKey(endpoint, clientID)
	now := l.now()
	nowMs := now.UnixMilli()
	cutoff := now.Add(-window).UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	var count *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		count = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redisstore: rate limit %s: %w", key, err)
	}

	return count.Val() > int64(maxRequests), nil
}

func rateKey(endpoint, clientID string) string {
	return "ratelimit:" + endpoint + ":" + clientID
}
