// Package redis implements the cache port on a Redis server, for headless
// deployments where the client runs next to existing infrastructure instead
// of on a device.
package redis

import (
	"context"
	"errors"
	"fmt"

	"nutrigo/internal/domain"

	"github.com/redis/go-redis/v9"
)

var _ domain.Cache = (*Cache)(nil)

// Cache is a domain.Cache backed by Redis.
type Cache struct {
	client *redis.Client
}

// Open connects to the Redis server at addr and pings it.
func Open(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{client: client}, nil
}

// Close releases the client's connections.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key with no expiry; history entries live until the
// user removes them.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value stored under key.
func (c *Cache) Remove(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache remove %q: %w", key, err)
	}
	return nil
}
