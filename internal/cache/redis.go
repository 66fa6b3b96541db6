package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Redis is a Client backed by a Redis server.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration
}

var _ Client = (*Redis)(nil)

// NewRedis connects to the server in cfg and verifies it with a ping.
func NewRedis(cfg config.CacheConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return NewRedisFromClient(rdb, cfg.DefaultTTL), nil
}

// NewRedisFromClient wraps an existing go-redis client.
func NewRedisFromClient(rdb *redis.Client, defaultTTL time.Duration) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Redis{client: rdb, defaultTTL: defaultTTL}
}

func (r *Redis) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return r.defaultTTL
	}
	return ttl
}

// Get implements Client.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache: redis get: %w", err)
	}
	return val, nil
}

// Set implements Client.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, r.ttl(ttl)).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// SetIfAbsent implements Client.
func (r *Redis) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, r.ttl(ttl)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis setnx: %w", err)
	}
	return ok, nil
}

// Delete implements Client.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// Ping implements Client.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close implements Client.
func (r *Redis) Close() error {
	return r.client.Close()
}
