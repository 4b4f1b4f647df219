// Package cache provides Redis-backed caching and short-lived mutual
// exclusion locks for serializing reward settlements.
package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/habitloop/habitloop/internal/config"
	"github.com/habitloop/habitloop/pkg/logger"
)

// Cache is the caching interface used by services.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (int64, error)
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

// Locker acquires and releases short-lived exclusive locks. Lock returns a
// holder token, empty when another holder owns the lock; Unlock releases
// only while the token still owns it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

// RedisCache implements Cache and Locker on a Redis client.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedis creates a Redis-backed cache and verifies connectivity.
func NewRedis(cfg *config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("Connected to Redis")

	return &RedisCache{client: client, log: log}, nil
}

// NewRedisWithClient wraps an existing client (useful for testing with miniredis).
func NewRedisWithClient(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

// Get retrieves a value. Missing keys return an empty string, like Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set stores a value with an expiration.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Del deletes keys.
func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Exists counts how many of the given keys exist.
func (c *RedisCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.client.Exists(ctx, keys...).Result()
}

// SetNX sets a key only if it does not exist.
func (c *RedisCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, expiration).Result()
}

// unlockScript deletes the lock key only while the caller's token still owns
// it, so a holder that outlived its TTL cannot release a lock that has since
// been acquired by someone else.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock acquires an exclusive lock on key for at most ttl. Returns the holder
// token, or an empty string when another holder already owns the lock.
func (c *RedisCache) Lock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := newLockToken()
	acquired, err := c.SetNX(ctx, "lock:"+key, token, ttl)
	if err != nil || !acquired {
		return "", err
	}
	return token, nil
}

// Unlock releases a lock acquired with Lock if token still holds it.
func (c *RedisCache) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, c.client, []string{"lock:" + key}, token).Err()
}

func newLockToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
