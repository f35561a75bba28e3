package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

const (
	DefaultAnalysisTTL = time.Hour
	DefaultArtistIDTTL = time.Hour
)

// ResultCache memoizes analysis results. Concurrent misses for one key may
// both compute; the last write wins.
type ResultCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger hclog.Logger
}

// NewResultCache constructs a ResultCache. A non-positive ttl means DefaultAnalysisTTL.
func NewResultCache(rdb redis.Cmdable, ttl time.Duration, logger hclog.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ResultCache{rdb: rdb, ttl: ttl, logger: logger.Named("result-cache")}
}

// GetOrCompute returns the cached result for req or stores the output of compute.
// Cache failures never reach the caller; the result is computed instead.
func (c *ResultCache) GetOrCompute(ctx context.Context, req domain.AnalysisRequest, compute func(context.Context) (domain.AnalysisResult, error)) (domain.AnalysisResult, error) {
	key := AnalysisKey(req)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached domain.AnalysisResult
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("dropping corrupt cache entry", "key", key, "error", jsonErr)
		if delErr := c.rdb.Del(ctx, key).Err(); delErr != nil {
			c.logger.Warn("failed to delete corrupt cache entry", "key", key, "error", delErr)
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	result, err := compute(ctx)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to encode result", "key", key, "error", err)
		return result, nil
	}
	if err := c.rdb.Set(context.WithoutCancel(ctx), key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return result, nil
}

// AnalysisKey is sha256(lower(trim(text))) followed by language and level.
func AnalysisKey(req domain.AnalysisRequest) string {
	sum := sha256.Sum256([]byte(req.NormalizedText()))
	return "analysis:" + hex.EncodeToString(sum[:]) + ":" + req.Language + ":" + req.Level
}

// ArtistIDCache maps searched artist names to metadata ids.
type ArtistIDCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger hclog.Logger
}

// NewArtistIDCache constructs an ArtistIDCache. A non-positive ttl means DefaultArtistIDTTL.
func NewArtistIDCache(rdb redis.Cmdable, ttl time.Duration, logger hclog.Logger) *ArtistIDCache {
	if ttl <= 0 {
		ttl = DefaultArtistIDTTL
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ArtistIDCache{rdb: rdb, ttl: ttl, logger: logger.Named("artist-id-cache")}
}

func (c *ArtistIDCache) Get(ctx context.Context, name string) (int64, bool) {
	key := artistIDKey(name)
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.logger.Warn("dropping corrupt cache entry", "key", key, "error", err)
		c.rdb.Del(ctx, key)
		return 0, false
	}
	return id, true
}

func (c *ArtistIDCache) Set(ctx context.Context, name string, id int64) {
	key := artistIDKey(name)
	if err := c.rdb.Set(ctx, key, strconv.FormatInt(id, 10), c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func artistIDKey(name string) string {
	return "artist_id:" + strings.ToLower(strings.TrimSpace(name))
}
