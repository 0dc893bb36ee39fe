package nodes

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// queueName resolves the wired queue name from a node's config, falling
// back to an explicit form entry
func queueName(cfg *node.Config) (string, error) {
	if name, ok := cfg.ConfigString("queue_name"); ok && name != "" {
		return name, nil
	}
	if raw, ok := cfg.Form()["queue_name"].(string); ok && raw != "" {
		return raw, nil
	}
	return "", fmt.Errorf("node %s has no queue name wired", cfg.ID)
}

// queueWriter pushes its input onto a durable queue and passes it
// through unchanged. On drain it forwards the completion sentinel into
// the queue so the reading loop drains too.
type queueWriter struct {
	node.Base
	deps Deps

	queue string
}

func newQueueWriter(cfg *node.Config, deps Deps) (node.Node, error) {
	if deps.Queues == nil {
		return nil, fmt.Errorf("queue-writer requires a queue store")
	}
	return &queueWriter{Base: node.NewBase(cfg), deps: deps}, nil
}

func (w *queueWriter) Identifier() string { return "queue-writer" }
func (w *queueWriter) WritesQueue() bool  { return true }

func (w *queueWriter) Setup(ctx context.Context) error {
	name, err := queueName(w.Config())
	if err != nil {
		return err
	}
	w.queue = name
	return nil
}

func (w *queueWriter) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	encoded, err := in.Encode()
	if err != nil {
		return nil, err
	}
	if err := w.deps.Queues.Push(ctx, w.queue, encoded); err != nil {
		return nil, fmt.Errorf("failed to push to queue %s: %w", w.queue, err)
	}
	w.deps.Logger.Debug("queued message", "node_id", w.ID(), "queue", w.queue)
	return in.Clone(), nil
}

func (w *queueWriter) Cleanup(ctx context.Context, in *node.Output) error {
	if w.queue == "" || !in.IsSentinel() {
		return nil
	}
	encoded, err := in.Encode()
	if err != nil {
		return err
	}
	if err := w.deps.Queues.Push(ctx, w.queue, encoded); err != nil {
		return fmt.Errorf("failed to forward completion to queue %s: %w", w.queue, err)
	}
	w.deps.Logger.Info("completion forwarded to queue", "node_id", w.ID(), "queue", w.queue)
	return nil
}

// queueReader is a producer that drains a durable queue. A pop timeout
// yields no output for the iteration; a sentinel read from the queue
// ends the reading loop.
type queueReader struct {
	node.Base
	deps Deps

	queue string
}

func newQueueReader(cfg *node.Config, deps Deps) (node.Node, error) {
	if deps.Queues == nil {
		return nil, fmt.Errorf("queue-reader requires a queue store")
	}
	return &queueReader{Base: node.NewBase(cfg), deps: deps}, nil
}

func (r *queueReader) Identifier() string    { return "queue-reader" }
func (r *queueReader) Variant() node.Variant { return node.VariantProducer }
func (r *queueReader) ReadsQueue() bool      { return true }

func (r *queueReader) Setup(ctx context.Context) error {
	name, err := queueName(r.Config())
	if err != nil {
		return err
	}
	r.queue = name
	return nil
}

func (r *queueReader) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	raw, ok, err := r.deps.Queues.Pop(ctx, r.queue, r.deps.PopTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to pop from queue %s: %w", r.queue, err)
	}
	if !ok {
		// nothing this round
		return nil, nil
	}

	out, err := node.DecodeOutput(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed message on queue %s: %w", r.queue, err)
	}
	if out.IsSentinel() {
		r.deps.Logger.Info("completion received from queue", "node_id", r.ID(), "queue", r.queue)
	}
	return out, nil
}
