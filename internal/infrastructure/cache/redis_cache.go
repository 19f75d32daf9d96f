package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ReadLater/internal/domain"
	"ReadLater/internal/ports"
)

const keyPrefix = "readlater:discovery:"

// RedisCache stores discovery results as JSON with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.DiscoveryCache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Dial parses a redis:// URL and checks the connection.
func Dial(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// GetLinks returns cached site-map links.
func (c *RedisCache) GetLinks(ctx context.Context, key string) ([]string, bool, error) {
	var links []string
	ok, err := c.get(ctx, key, &links)
	return links, ok, err
}

// SetLinks caches site-map links.
func (c *RedisCache) SetLinks(ctx context.Context, key string, links []string) error {
	return c.set(ctx, key, links)
}

// GetResults returns cached search results.
func (c *RedisCache) GetResults(ctx context.Context, key string) ([]domain.SearchResult, bool, error) {
	var results []domain.SearchResult
	ok, err := c.get(ctx, key, &results)
	return results, ok, err
}

// SetResults caches search results.
func (c *RedisCache) SetResults(ctx context.Context, key string, results []domain.SearchResult) error {
	return c.set(ctx, key, results)
}

func (c *RedisCache) get(ctx context.Context, key string, v any) (bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode cached value: %w", err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
