package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// RedisKV implements KV using Redis. This is suitable for distributed
// deployments where multiple instances need to share session snapshots.
type RedisKV struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisKV creates a new Redis-backed KV store and verifies connectivity
func NewRedisKV(cfg config.RedisConfig) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisKV{
		client:    client,
		keyPrefix: "storefront:",
	}, nil
}

// NewRedisKVWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisKVWithClient(client *redis.Client, keyPrefix string) *RedisKV {
	if keyPrefix == "" {
		keyPrefix = "storefront:"
	}
	return &RedisKV{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the value for key, or (nil, nil) when the key is absent
func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return val, nil
}

// Set stores value under key with the given TTL
func (s *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisKV) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisKV) GetClient() *redis.Client {
	return s.client
}

var _ KV = (*RedisKV)(nil)
