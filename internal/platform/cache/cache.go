package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache groups.
const (
	GroupOptions = "options"
	GroupTerms   = "terms"
)

// ObjectCache stores JSON values in Redis under versioned groups.
type ObjectCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewObjectCache creates a cache. Keys are namespaced by prefix; a zero ttl
// keeps entries until their group is flushed.
func NewObjectCache(client redis.UniversalClient, prefix string, ttl time.Duration, logger *slog.Logger) *ObjectCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "object_cache")),
	}
}

func (c *ObjectCache) genKey(group string) string {
	return c.prefix + ":" + group + ":gen"
}

func (c *ObjectCache) generation(ctx context.Context, group string) (int64, error) {
	v, err := c.client.Get(ctx, c.genKey(group)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *ObjectCache) key(ctx context.Context, group, key string) (string, error) {
	gen, err := c.generation(ctx, group)
	if err != nil {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	return c.prefix + ":" + group + ":" + strconv.FormatInt(gen, 10) + ":" + key, nil
}

// Get decodes a cached value into dst and reports whether it was present.
func (c *ObjectCache) Get(ctx context.Context, group, key string, dst any) (bool, error) {
	k, err := c.key(ctx, group, key)
	if err != nil {
		return false, err
	}
	data, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", k, err)
	}
	return true, nil
}

// Set stores v as JSON.
func (c *ObjectCache) Set(ctx context.Context, group, key string, v any) error {
	k, err := c.key(ctx, group, key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Flush invalidates every entry of a group.
func (c *ObjectCache) Flush(ctx context.Context, group string) error {
	if err := c.client.Incr(ctx, c.genKey(group)).Err(); err != nil {
		return fmt.Errorf("failed to flush cache group %s: %w", group, err)
	}
	return nil
}

// flushQuietly flushes a group and logs failures.
func (c *ObjectCache) flushQuietly(ctx context.Context, group string) {
	if err := c.Flush(ctx, group); err != nil {
		c.logger.Warn("cache flush failed", slog.String("group", group), slog.String("error", err.Error()))
	}
}

// lookup reads a cached value and treats Redis failures as misses.
func (c *ObjectCache) lookup(ctx context.Context, group, key string, dst any) bool {
	ok, err := c.Get(ctx, group, key, dst)
	if err != nil {
		c.logger.Warn("cache read failed", slog.String("group", group), slog.String("error", err.Error()))
		return false
	}
	return ok
}

// store writes a value and logs failures.
func (c *ObjectCache) store(ctx context.Context, group, key string, v any) {
	if err := c.Set(ctx, group, key, v); err != nil {
		c.logger.Warn("cache write failed", slog.String("group", group), slog.String("error", err.Error()))
	}
}

// Ping checks the Redis connection.
func (c *ObjectCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
