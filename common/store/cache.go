package store

import (
	"context"
	"time"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/redis"
)

const cachePrefix = "cache:"

// CacheStore provides TTL'd key-value storage over Redis.
// Development-mode single-node execution uses it to materialize upstream
// outputs under "<node_id>_output" keys.
type CacheStore struct {
	client *redis.Client
	logger redis.Logger
}

// NewCacheStore creates a cache store backed by the given Redis client
func NewCacheStore(client *redis.Client, logger redis.Logger) *CacheStore {
	return &CacheStore{
		client: client,
		logger: logger,
	}
}

// Set stores a value with a TTL (0 = no expiration)
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, cachePrefix+key, string(value), ttl)
}

// Get retrieves a value. The second return value reports whether the key
// exists.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok, err := s.client.Get(ctx, cachePrefix+key)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(val), true, nil
}

// Delete removes a key
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	return s.client.Delete(ctx, cachePrefix+key)
}

// Exists reports whether a key is present
func (s *CacheStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.client.Exists(ctx, cachePrefix+key)
}
