package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Client wraps redis.Client with common operations and instrumentation
type Client struct {
	redis  *redis.Client
	logger Logger
}

// NewClient creates a new Redis client wrapper
func NewClient(redisClient *redis.Client, logger Logger) *Client {
	return &Client{
		redis:  redisClient,
		logger: logger,
	}
}

// GetUnderlying returns the underlying redis.Client for advanced operations
func (c *Client) GetUnderlying() *redis.Client {
	return c.redis
}

// Ping verifies connectivity to the backing store
func (c *Client) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Set sets a key with optional expiration (0 = no expiration)
func (c *Client) Set(ctx context.Context, key, value string, expiry time.Duration) error {
	err := c.redis.Set(ctx, key, value, expiry).Err()
	if err != nil {
		c.logger.Error("redis SET failed", "key", key, "error", err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.logger.Debug("redis SET", "key", key, "expiry", expiry)
	return nil
}

// Get retrieves a value by key. The second return value reports whether
// the key exists.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("redis GET key not found", "key", key)
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("redis GET failed", "key", key, "error", err)
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	c.logger.Debug("redis GET", "key", key)
	return val, true, nil
}

// Exists reports whether a key exists
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.redis.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis EXISTS failed", "key", key, "error", err)
		return false, fmt.Errorf("failed to check key %s: %w", key, err)
	}
	return n > 0, nil
}

// Delete removes one or more keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	err := c.redis.Del(ctx, keys...).Err()
	if err != nil {
		c.logger.Error("redis DEL failed", "keys", keys, "error", err)
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	c.logger.Debug("redis DEL", "keys", keys)
	return nil
}

// LeftPush pushes values to the left of a list
func (c *Client) LeftPush(ctx context.Context, key string, values ...interface{}) error {
	err := c.redis.LPush(ctx, key, values...).Err()
	if err != nil {
		c.logger.Error("redis LPUSH failed", "key", key, "error", err)
		return fmt.Errorf("failed to lpush to %s: %w", key, err)
	}
	c.logger.Debug("redis LPUSH", "key", key, "count", len(values))
	return nil
}

// BlockingPopRight blocks and pops from the right side of a list.
// Returns ("", false, nil) on timeout.
func (c *Client) BlockingPopRight(ctx context.Context, timeout time.Duration, key string) (string, bool, error) {
	result, err := c.redis.BRPop(ctx, timeout, key).Result()
	if err == redis.Nil {
		// Timeout - not an error
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("redis BRPOP failed", "key", key, "error", err)
		return "", false, fmt.Errorf("failed to brpop from %s: %w", key, err)
	}
	if len(result) < 2 {
		return "", false, fmt.Errorf("unexpected brpop reply from %s", key)
	}
	c.logger.Debug("redis BRPOP", "key", key)
	return result[1], true, nil
}

// ListLength returns the length of a list
func (c *Client) ListLength(ctx context.Context, key string) (int64, error) {
	n, err := c.redis.LLen(ctx, key).Result()
	if err != nil {
		c.logger.Error("redis LLEN failed", "key", key, "error", err)
		return 0, fmt.Errorf("failed to llen %s: %w", key, err)
	}
	return n, nil
}

// Publish publishes a message to a channel and returns the number of
// subscribers that received it
func (c *Client) Publish(ctx context.Context, channel, message string) (int64, error) {
	n, err := c.redis.Publish(ctx, channel, message).Result()
	if err != nil {
		c.logger.Error("redis PUBLISH failed", "channel", channel, "error", err)
		return 0, fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	c.logger.Debug("redis PUBLISH", "channel", channel, "receivers", n)
	return n, nil
}

// Subscribe subscribes to a channel. The returned PubSub holds a dedicated
// connection and must be closed by the caller.
func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	c.logger.Debug("redis SUBSCRIBE", "channels", channels)
	return c.redis.Subscribe(ctx, channels...)
}
