package pool

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// Logger interface for executor logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Opts configures the executor
type Opts struct {
	Logger           Logger
	Registry         *node.Registry
	WorkerPoolSize   int
	IsolatedPoolSize int
	Tracer           trace.Tracer
}

// Executor runs node invocations on one of three backends: inline on the
// calling goroutine, on a bounded worker pool, or in an isolated worker
// that operates on a serialized copy of the node. Every invocation gets a
// trace span.
type Executor struct {
	log      Logger
	registry *node.Registry
	workers  *workerPool
	isolated *workerPool
	tracer   trace.Tracer
}

type result struct {
	out *node.Output
	err error
}

// NewExecutor creates an executor. Pool sizes default to 4 workers and 2
// isolated slots.
func NewExecutor(opts Opts) *Executor {
	if opts.WorkerPoolSize <= 0 {
		opts.WorkerPoolSize = 4
	}
	if opts.IsolatedPoolSize <= 0 {
		opts.IsolatedPoolSize = 2
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("workflow-engine/pool")
	}
	return &Executor{
		log:      opts.Logger,
		registry: opts.Registry,
		workers:  newWorkerPool("worker", opts.WorkerPoolSize),
		isolated: newWorkerPool("isolated", opts.IsolatedPoolSize),
		tracer:   opts.Tracer,
	}
}

// Run invokes a node on the requested backend. Completion sentinels always
// run inline: cleanup must reach the instance that holds the resources.
func (e *Executor) Run(ctx context.Context, kind node.PoolKind, n node.Node, in *node.Output) (*node.Output, error) {
	ctx, span := e.tracer.Start(ctx, "node.invoke", trace.WithAttributes(
		attribute.String("node.id", n.ID()),
		attribute.String("node.type", n.Identifier()),
		attribute.String("pool", kind.String()),
	))
	defer span.End()

	if in.IsSentinel() {
		kind = node.PoolCooperative
	}

	out, err := e.dispatch(ctx, kind, n, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func (e *Executor) dispatch(ctx context.Context, kind node.PoolKind, n node.Node, in *node.Output) (*node.Output, error) {
	switch kind {
	case node.PoolCooperative:
		return node.Invoke(ctx, n, in)
	case node.PoolWorker:
		return e.runOn(ctx, e.workers, n, in, func(ctx context.Context) (*node.Output, error) {
			return node.Invoke(ctx, n, in)
		})
	case node.PoolIsolated:
		return e.runOn(ctx, e.isolated, n, in, func(ctx context.Context) (*node.Output, error) {
			return e.runIsolated(ctx, n, in)
		})
	default:
		return nil, fmt.Errorf("unknown pool kind %d", kind)
	}
}

// runOn submits the body to a pool and waits for its result
func (e *Executor) runOn(ctx context.Context, p *workerPool, n node.Node, in *node.Output, body func(context.Context) (*node.Output, error)) (*node.Output, error) {
	done := make(chan result, 1)
	err := p.submit(ctx, func() {
		out, err := body(ctx)
		done <- result{out: out, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID(), err)
	}

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops both pools. When wait is true it blocks until in-flight
// tasks finish; otherwise queued tasks are abandoned.
func (e *Executor) Shutdown(wait bool) {
	e.workers.shutdown(wait)
	e.isolated.shutdown(wait)
}
