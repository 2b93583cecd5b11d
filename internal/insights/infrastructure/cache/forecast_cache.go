// Package cache keeps computed demand forecasts in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/insights/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "meditrack:forecast:"

	// DefaultTTL is used when NewRedisForecastCache gets a non-positive ttl.
	DefaultTTL = 15 * time.Minute

	scanBatch = 100
)

// RedisForecastCache stores forecasts as JSON with a TTL.
type RedisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisForecastCache creates a cache on client.
func NewRedisForecastCache(client *redis.Client, ttl time.Duration) *RedisForecastCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisForecastCache{client: client, ttl: ttl}
}

func (c *RedisForecastCache) Get(ctx context.Context, key domain.ForecastKey) (*domain.Forecast, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read forecast: %w", err)
	}

	var forecast domain.Forecast
	if err := json.Unmarshal(data, &forecast); err != nil {
		return nil, false, fmt.Errorf("decode forecast: %w", err)
	}
	return &forecast, true, nil
}

func (c *RedisForecastCache) Set(ctx context.Context, key domain.ForecastKey, forecast domain.Forecast) error {
	data, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key.String(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write forecast: %w", err)
	}
	return nil
}

// Invalidate deletes every cached forecast.
func (c *RedisForecastCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan forecasts: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// NoopForecastCache never hits.
type NoopForecastCache struct{}

func (NoopForecastCache) Get(context.Context, domain.ForecastKey) (*domain.Forecast, bool, error) {
	return nil, false, nil
}

func (NoopForecastCache) Set(context.Context, domain.ForecastKey, domain.Forecast) error { return nil }
func (NoopForecastCache) Invalidate(context.Context) error                              { return nil }
