package events

import (
	"sync"
)

// Logger interface for event bus logging
type Logger interface {
	Warn(msg string, keysAndValues ...interface{})
}

// Handler consumes events. Handlers run synchronously on the
// publishing goroutine, in subscription order.
type Handler func(Event)

// Bus is a synchronous in-process event dispatcher. A panicking
// handler is contained so it cannot take down the publishing loop.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	order    []int
	logger   Logger
}

// NewBus creates an event bus. Logger may be nil.
func NewBus(logger Logger) *Bus {
	return &Bus{
		handlers: make(map[int]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for all subsequent events and returns a
// function that removes it
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, existing := range b.order {
			if existing == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to every subscriber in subscription order
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		if h, ok := b.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Warn("event handler panicked",
				"kind", e.Kind,
				"workflow_id", e.WorkflowID,
				"panic", r)
		}
	}()
	h(e)
}

// SubscriberCount returns the number of registered handlers
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
