package store

import (
	"context"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/redis"
	goredis "github.com/redis/go-redis/v9"
)

// PubSubStore provides transient fan-out channels over Redis pub/sub.
// Messages published with zero current subscribers are lost; webhook
// deliveries rely on a producer holding an open subscription.
type PubSubStore struct {
	client *redis.Client
	logger redis.Logger
}

// NewPubSubStore creates a pub/sub store backed by the given Redis client
func NewPubSubStore(client *redis.Client, logger redis.Logger) *PubSubStore {
	return &PubSubStore{
		client: client,
		logger: logger,
	}
}

// Publish sends a message to a channel and returns the subscriber count
func (s *PubSubStore) Publish(ctx context.Context, channel string, value []byte) (int64, error) {
	return s.client.Publish(ctx, channel, string(value))
}

// Subscription is an open pub/sub subscription holding a dedicated
// connection. Close it when done.
type Subscription struct {
	pubsub   *goredis.PubSub
	messages chan []byte
	done     chan struct{}
}

// Subscribe opens a subscription on a channel. Received payloads are
// delivered on Messages until Close is called or the context ends.
func (s *PubSubStore) Subscribe(ctx context.Context, channel string) (*Subscription, error) {
	pubsub := s.client.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so a publish immediately
	// after Subscribe returns is not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := &Subscription{
		pubsub:   pubsub,
		messages: make(chan []byte),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(sub.messages)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case sub.messages <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				case <-sub.done:
					return
				}
			}
		}
	}()

	s.logger.Debug("subscribed to channel", "channel", channel)
	return sub, nil
}

// Messages returns the channel of received payloads. It is closed when
// the subscription ends.
func (sub *Subscription) Messages() <-chan []byte {
	return sub.messages
}

// Close terminates the subscription and releases its connection
func (sub *Subscription) Close() error {
	select {
	case <-sub.done:
	default:
		close(sub.done)
	}
	return sub.pubsub.Close()
}
