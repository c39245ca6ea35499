package translate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "wabot:tr:"

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Cache memoizes translations in Redis. Redis failures are logged and
// bypassed; empty results are never stored.
type Cache struct {
	next   Translator
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache wraps next with a Redis cache.
func NewCache(next Translator, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Translate returns a cached translation or asks the wrapped translator.
func (c *Cache) Translate(ctx context.Context, text, target string) (string, error) {
	key := cacheKey(text, target)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.logger.Debug("translation cache hit", zap.String("target", target))
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("translation cache read failed", zap.Error(err))
	}

	out, err := c.next.Translate(ctx, text, target)
	if err != nil || out == "" {
		return out, err
	}

	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.logger.Warn("translation cache write failed", zap.Error(err))
	}
	return out, nil
}

func cacheKey(text, target string) string {
	sum := sha1.Sum([]byte(text))
	return keyPrefix + target + ":" + hex.EncodeToString(sum[:])
}
