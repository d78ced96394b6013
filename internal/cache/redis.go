package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL is the explicit TTL applied when a caller passes zero.
const DefaultRedisTTL = time.Hour

// RedisCache is the shared cache tier: a network key-value store visible to
// every process, with explicit per-entry TTLs and pattern eviction via SCAN.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// RedisCacheConfig holds configuration for the Redis tier.
type RedisCacheConfig struct {
	Addr       string        // Redis address (e.g. "localhost:6379")
	Password   string        // Redis password
	DB         int           // Redis database number
	KeyPrefix  string        // Key prefix for namespacing (default "recall:")
	DefaultTTL time.Duration // TTL used when Set receives zero (default 1h)
}

// NewRedisCache creates a Redis-backed cache tier.
func NewRedisCache(cfg RedisCacheConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheFromClient(client, cfg.KeyPrefix, cfg.DefaultTTL)
}

// NewRedisCacheFromClient creates a Redis tier using an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "recall:"
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultRedisTTL
	}
	return &RedisCache{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// DeletePattern removes every key containing pattern as a substring, using
// cursor-based SCAN so large keyspaces never block the server.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	removed := 0

	for {
		keys, next, err := c.client.Scan(ctx, cursor, "*"+c.key(pattern)+"*", 100).Result()
		if err != nil {
			return removed, err
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
