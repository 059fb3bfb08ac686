package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/redis/go-redis/v9"
)

// WeatherCache stores weather lookups per city and date.
type WeatherCache interface {
	Get(ctx context.Context, city, date string) (*types.WeatherData, bool, error)
	Set(ctx context.Context, city, date string, weather *types.WeatherData) error
}

// RedisWeatherCache keeps weather lookups in Redis as JSON with a TTL.
type RedisWeatherCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisWeatherCache(client redis.Cmdable, ttl time.Duration) *RedisWeatherCache {
	return &RedisWeatherCache{client: client, ttl: ttl}
}

func weatherCacheKey(city, date string) string {
	return fmt.Sprintf("weather:%s:%s", strings.ToLower(strings.TrimSpace(city)), date)
}

func (c *RedisWeatherCache) Get(ctx context.Context, city, date string) (*types.WeatherData, bool, error) {
	raw, err := c.client.Get(ctx, weatherCacheKey(city, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("weather cache get: %w", err)
	}

	var weather types.WeatherData
	if err := json.Unmarshal(raw, &weather); err != nil {
		return nil, false, fmt.Errorf("weather cache decode: %w", err)
	}
	return &weather, true, nil
}

func (c *RedisWeatherCache) Set(ctx context.Context, city, date string, weather *types.WeatherData) error {
	raw, err := json.Marshal(weather)
	if err != nil {
		return fmt.Errorf("weather cache encode: %w", err)
	}
	if err := c.client.Set(ctx, weatherCacheKey(city, date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("weather cache set: %w", err)
	}
	return nil
}
