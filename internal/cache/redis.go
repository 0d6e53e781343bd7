package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/AviatorPredictor/models"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when nothing is cached under the key
var ErrCacheMiss = errors.New("cache miss")

const latestPredictionKey = "prediction:latest"

// RedisConfig holds Redis connection parameters
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisCache stores the latest prediction in Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisCacheWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "aviator"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// SetLatest caches the latest prediction result
func (c *RedisCache) SetLatest(ctx context.Context, result models.PredictionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding prediction: %w", err)
	}
	return c.client.Set(ctx, c.wrapKey(latestPredictionKey), data, c.ttl).Err()
}

// Latest returns the cached prediction or ErrCacheMiss
func (c *RedisCache) Latest(ctx context.Context) (models.PredictionResult, error) {
	var result models.PredictionResult

	data, err := c.client.Get(ctx, c.wrapKey(latestPredictionKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return result, ErrCacheMiss
		}
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decoding prediction: %w", err)
	}
	return result, nil
}

func (c *RedisCache) wrapKey(key string) string {
	return c.prefix + ":" + key
}
