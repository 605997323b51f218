package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shuttle/internal/utils"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache holds derived availability snapshots. It is advisory:
// reservation capacity checks never read it.
type AvailabilityCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache stores JSON values under a TTL.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache parses url and pings the server.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{Client: client, TTL: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, data, c.TTL).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func availabilityKey(routeID int64, date time.Time) string {
	return fmt.Sprintf("availability:%d:%s", routeID, utils.FormatDate(date))
}

// invalidateAvailability drops the cached snapshot; failures only get logged
// since entries expire on their own.
func invalidateAvailability(ctx context.Context, cache AvailabilityCache, requestID string, routeID int64, date time.Time) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, availabilityKey(routeID, date)); err != nil {
		utils.LogError(requestID, "availability", "cache_invalidate_failed", err)
	}
}
