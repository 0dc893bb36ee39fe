package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// Opts configures a loop runner
type Opts struct {
	Producer *graph.Node
	Walker   *Walker
	Backoff  time.Duration
	Logger   Logger
}

// LoopRunner drives one producer's subgraph. Each iteration asks the
// producer for an output and descends through the chain; a completion
// sentinel from the producer drains the chain and ends the loop. Errors
// back off and the loop continues.
type LoopRunner struct {
	producer *graph.Node
	walker   *Walker
	chain    []*graph.Node
	poolKind node.PoolKind
	backoff  time.Duration
	log      Logger

	iteration atomic.Int64
	stopping  atomic.Bool
	cascaded  atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	runErr    error
}

// NewLoopRunner creates a runner for one producer. Backoff defaults to
// one second.
func NewLoopRunner(opts Opts) *LoopRunner {
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	chain := graph.NewAnalyzer(opts.Walker.Graph).Chain(opts.Producer.ID)
	kinds := make([]node.PoolKind, 0, len(chain))
	for _, n := range chain {
		kinds = append(kinds, n.Instance.PreferredPool())
	}

	return &LoopRunner{
		producer: opts.Producer,
		walker:   opts.Walker,
		chain:    chain,
		poolKind: node.MaxPool(kinds...),
		backoff:  opts.Backoff,
		log:      opts.Logger,
		done:     make(chan struct{}),
	}
}

// PoolKind returns the backend the whole iteration runs on: the
// heaviest pool any node in the chain prefers
func (r *LoopRunner) PoolKind() node.PoolKind {
	return r.poolKind
}

// Iterations returns the number of completed producer iterations
func (r *LoopRunner) Iterations() int64 {
	return r.iteration.Load()
}

// Start initializes every node in the chain once, then runs the loop on
// its own goroutine. Initialization failure aborts before the first
// iteration.
func (r *LoopRunner) Start(ctx context.Context) error {
	for _, n := range r.chain {
		if err := node.Initialize(ctx, n.Instance); err != nil {
			return fmt.Errorf("loop %s: %w", r.producer.ID, err)
		}
	}

	ctx, r.cancel = context.WithCancel(ctx)
	go r.run(ctx)
	return nil
}

func (r *LoopRunner) run(ctx context.Context) {
	defer close(r.done)
	r.log.Info("loop started",
		"producer_id", r.producer.ID,
		"chain_size", len(r.chain),
		"pool", r.poolKind.String())

	for !r.stopping.Load() && ctx.Err() == nil {
		if err := r.iterate(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			r.log.Error("iteration failed, backing off",
				"producer_id", r.producer.ID,
				"iteration", r.iteration.Load(),
				"error", err)
			select {
			case <-time.After(r.backoff):
			case <-ctx.Done():
			}
			continue
		}
		if r.drained() {
			break
		}
	}

	// a stop request ends the loop without a sentinel from the producer;
	// the chain still has to drain so queue writers forward completion and
	// resources are released. A forced stop skips this.
	if ctx.Err() == nil && !r.cascaded.Load() {
		r.cascade(ctx, node.NewSentinel(r.producer.ID))
	}
	r.log.Info("loop stopped", "producer_id", r.producer.ID, "iterations", r.iteration.Load())
}

func (r *LoopRunner) iterate(ctx context.Context) error {
	out, err := r.walker.PollProducer(ctx, r.producer, r.poolKind)
	if err != nil {
		return err
	}
	if out == nil {
		// producer had nothing this round
		return nil
	}
	r.iteration.Add(1)

	if out.IsSentinel() {
		r.cascade(ctx, out)
		r.markDrained()
		return nil
	}
	return r.walker.Descend(ctx, r.producer, out, r.poolKind)
}

// cascade delivers the completion sentinel breadth-first through the
// chain. Every reachable node is visited exactly once, so shared
// downstream nodes clean up a single time.
func (r *LoopRunner) cascade(ctx context.Context, sentinel *node.Output) {
	r.cascaded.Store(true)
	visited := map[string]bool{r.producer.ID: true}

	// the producer detected completion; it drains first
	if _, err := r.walker.RunNode(ctx, r.producer, sentinel, r.poolKind); err != nil {
		r.log.Error("sentinel delivery failed",
			"producer_id", r.producer.ID,
			"node_id", r.producer.ID,
			"error", err)
	}
	queue := r.walker.Children(r.producer, sentinel)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current.ID] {
			continue
		}
		visited[current.ID] = true

		if _, err := r.walker.RunNode(ctx, current, sentinel, r.poolKind); err != nil {
			r.log.Error("sentinel delivery failed",
				"producer_id", r.producer.ID,
				"node_id", current.ID,
				"error", err)
		}
		queue = append(queue, r.walker.Children(current, sentinel)...)
	}
	r.log.Info("chain drained", "producer_id", r.producer.ID, "nodes_visited", len(visited))
}

func (r *LoopRunner) markDrained()  { r.stopping.Store(true) }
func (r *LoopRunner) drained() bool { return r.stopping.Load() }

// Shutdown requests a soft stop: the current iteration finishes, then
// the loop exits
func (r *LoopRunner) Shutdown() {
	r.stopping.Store(true)
}

// ForceShutdown cancels the loop's context, interrupting blocking work
func (r *LoopRunner) ForceShutdown() {
	r.stopping.Store(true)
	if r.cancel != nil {
		r.cancel()
	}
}

// Done is closed when the loop goroutine has exited
func (r *LoopRunner) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the loop exits or the context is done
func (r *LoopRunner) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
