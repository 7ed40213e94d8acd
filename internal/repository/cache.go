package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// PayloadCache stores raw upstream payloads.
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a PayloadCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects lazily to the Redis server at addr.
func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	return &RedisCache{client: client, prefix: "cropdash:payload:"}
}

// Ping checks the connection to the Redis server.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to Redis: %w", err)
	}
	return nil
}

// Get returns the cached payload for key, if present.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, true, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoCache never holds anything.
type NoCache struct{}

func (NoCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
