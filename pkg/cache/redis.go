package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "fc"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// Cache stores JSON-encoded values under namespaced keys.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	store cmdable
	raw   *redis.Client
}

// NewRedis connects to the Redis instance at url and verifies connectivity.
func NewRedis(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{store: raw, raw: raw}, nil
}

func newWithStore(store cmdable) *RedisCache {
	return &RedisCache{store: store}
}

// Key builds a namespaced cache key from parts.
func Key(parts ...string) string {
	key := keyNamespace
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// GetJSON decodes the value at key into dst. It reports false on a cache miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}
	if err := c.store.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
