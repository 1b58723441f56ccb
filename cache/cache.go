// Package cache is a thin JSON cache over redis. A nil *Cache is valid and
// turns every operation into a miss, so callers never branch on whether
// redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/MayMartirosyan/svmotors-backend/config"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis when an address is configured and returns nil
// otherwise.
func New(cfg config.RedisConfig) *Cache {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		return nil
	}
	return &Cache{client: client, ttl: 5 * time.Minute}
}

// GetJSON loads key into dest and reports whether it was a hit. Corrupt
// entries count as misses.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the default TTL. Failures are logged
// and swallowed; the cache is never on a request's critical path.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
