package store

import (
	"context"
	"time"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/redis"
)

const queuePrefix = "queue:"

// QueueStore provides durable FIFO queues over Redis lists.
// Push is a left-push, Pop is a blocking right-pop, so a single queue
// delivers messages in insertion order. Each element is delivered to at
// most one consumer.
type QueueStore struct {
	client *redis.Client
	logger redis.Logger
}

// NewQueueStore creates a queue store backed by the given Redis client
func NewQueueStore(client *redis.Client, logger redis.Logger) *QueueStore {
	return &QueueStore{
		client: client,
		logger: logger,
	}
}

// Push appends a message to the named queue
func (s *QueueStore) Push(ctx context.Context, name string, value []byte) error {
	return s.client.LeftPush(ctx, queuePrefix+name, value)
}

// Pop blocks until a message is available or the timeout elapses.
// Returns (nil, false, nil) on timeout. A zero timeout blocks until
// a message arrives or the context is cancelled.
func (s *QueueStore) Pop(ctx context.Context, name string, timeout time.Duration) ([]byte, bool, error) {
	val, ok, err := s.client.BlockingPopRight(ctx, timeout, queuePrefix+name)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(val), true, nil
}

// Length returns the number of pending messages in the named queue
func (s *QueueStore) Length(ctx context.Context, name string) (int64, error) {
	return s.client.ListLength(ctx, queuePrefix+name)
}
