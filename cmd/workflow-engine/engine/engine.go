package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/mode"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/pool"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/runner"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/strategy"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/validation"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
)

// Logger interface for engine logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Opts configures the engine. Logger and Registry are required; every
// other collaborator gets a sensible default.
type Opts struct {
	Logger     Logger
	Registry   *node.Registry
	Pipeline   *validation.Pipeline
	Strategies *strategy.Registry
	Executor   *pool.Executor
	Bus        *events.Bus
	Tracker    *events.StateTracker
	Cache      *store.CacheStore
	Backoff    time.Duration
	CacheTTL   time.Duration
}

// Engine loads workflow descriptions, validates them, and runs them
// through the strategy matching their mode
type Engine struct {
	log        Logger
	registry   *node.Registry
	pipeline   *validation.Pipeline
	strategies *strategy.Registry
	executor   *pool.Executor
	bus        *events.Bus
	tracker    *events.StateTracker
	cache      *store.CacheStore
	backoff    time.Duration
	cacheTTL   time.Duration

	mu        sync.RWMutex
	workflows map[string]*workflow
}

type workflow struct {
	id    string
	raw   []byte
	desc  *graph.Description
	graph *graph.Graph
	mode  mode.Mode
	strat strategy.Strategy

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// WorkflowStatus is the externally visible state of one loaded workflow
type WorkflowStatus struct {
	WorkflowID string                `json:"workflow_id"`
	Mode       mode.Mode             `json:"mode"`
	Running    bool                  `json:"running"`
	Nodes      int                   `json:"nodes"`
	State      *events.WorkflowState `json:"state,omitempty"`
}

// New creates an engine
func New(opts Opts) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("engine requires a logger")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("engine requires a node registry")
	}
	if opts.Pipeline == nil {
		opts.Pipeline = validation.NewPipeline()
	}
	if opts.Strategies == nil {
		opts.Strategies = strategy.NewRegistry()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}
	if opts.Tracker == nil {
		opts.Tracker = events.NewStateTracker()
		opts.Bus.Subscribe(opts.Tracker.Apply)
	}
	if opts.Executor == nil {
		opts.Executor = pool.NewExecutor(pool.Opts{
			Logger:   opts.Logger,
			Registry: opts.Registry,
		})
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	return &Engine{
		log:        opts.Logger,
		registry:   opts.Registry,
		pipeline:   opts.Pipeline,
		strategies: opts.Strategies,
		executor:   opts.Executor,
		bus:        opts.Bus,
		tracker:    opts.Tracker,
		cache:      opts.Cache,
		backoff:    opts.Backoff,
		cacheTTL:   opts.CacheTTL,
		workflows:  make(map[string]*workflow),
	}, nil
}

// Bus exposes the engine's event bus for additional subscribers
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Tracker exposes the engine's state tracker
func (e *Engine) Tracker() *events.StateTracker {
	return e.tracker
}

// Load parses, builds, validates, and prepares a workflow under the
// given id. Loading an id that already exists is an error; use
// PatchDescription or Unload first.
func (e *Engine) Load(ctx context.Context, id string, raw []byte) error {
	e.mu.Lock()
	if _, exists := e.workflows[id]; exists {
		e.mu.Unlock()
		return fmt.Errorf("workflow %s is already loaded", id)
	}
	e.mu.Unlock()

	w, err := e.assemble(ctx, id, raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.workflows[id]; exists {
		return fmt.Errorf("workflow %s is already loaded", id)
	}
	e.workflows[id] = w
	e.log.Info("workflow loaded", "workflow_id", id, "mode", w.mode, "nodes", w.graph.Len())
	return nil
}

// assemble runs the full load pipeline: parse, build, detect, validate,
// preprocess, prepare
func (e *Engine) assemble(ctx context.Context, id string, raw []byte) (*workflow, error) {
	desc, err := graph.ParseDescription(raw)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", id, err)
	}

	g, err := graph.Build(desc, e.registry)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", id, err)
	}

	m := mode.Detect(desc, g)

	target := &validation.Target{Mode: m, Description: desc, Graph: g}
	if err := e.pipeline.Validate(ctx, target); err != nil {
		return nil, fmt.Errorf("workflow %s: %w", id, err)
	}
	if err := e.pipeline.Preprocess(ctx, target); err != nil {
		return nil, fmt.Errorf("workflow %s: %w", id, err)
	}

	walker := &runner.Walker{
		WorkflowID: id,
		Graph:      g,
		Executor:   e.executor,
		Bus:        e.bus,
		Log:        e.log,
	}

	strat, err := e.strategies.Create(m, strategy.Deps{
		WorkflowID: id,
		Graph:      g,
		Walker:     walker,
		Bus:        e.bus,
		Backoff:    e.backoff,
		Logger:     e.log,
	})
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", id, err)
	}
	if err := strat.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("workflow %s: prepare failed: %w", id, err)
	}

	return &workflow{
		id:    id,
		raw:   raw,
		desc:  desc,
		graph: g,
		mode:  m,
		strat: strat,
	}, nil
}

// Start runs a workflow in the background. Production workflows run
// until drained or stopped; other modes run once with no trigger.
func (e *Engine) Start(ctx context.Context, id string) error {
	w, err := e.lookup(id)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("workflow %s is already running", id)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		defer cancel()
		if _, err := w.strat.Execute(runCtx, nil); err != nil {
			e.log.Error("workflow run failed", "workflow_id", id, "error", err)
		}
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()
	return nil
}

// Run executes a workflow synchronously with a trigger input and
// returns the response output. Meant for api and single node modes.
func (e *Engine) Run(ctx context.Context, id string, trigger *node.Output) (*node.Output, error) {
	w, err := e.lookup(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil, fmt.Errorf("workflow %s is already running", id)
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()
	return w.strat.Execute(ctx, trigger)
}

// Stop requests a soft stop: running iterations finish first
func (e *Engine) Stop(ctx context.Context, id string) error {
	return e.stop(ctx, id, false)
}

// ForceStop interrupts the workflow immediately
func (e *Engine) ForceStop(ctx context.Context, id string) error {
	return e.stop(ctx, id, true)
}

func (e *Engine) stop(ctx context.Context, id string, force bool) error {
	w, err := e.lookup(id)
	if err != nil {
		return err
	}

	if err := w.strat.Shutdown(ctx, force); err != nil {
		return fmt.Errorf("workflow %s: shutdown failed: %w", id, err)
	}

	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if force && cancel != nil {
		cancel()
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Status reports the state of one loaded workflow
func (e *Engine) Status(id string) (WorkflowStatus, error) {
	w, err := e.lookup(id)
	if err != nil {
		return WorkflowStatus{}, err
	}

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	status := WorkflowStatus{
		WorkflowID: id,
		Mode:       w.mode,
		Running:    running,
		Nodes:      w.graph.Len(),
	}
	if state, ok := e.tracker.Snapshot(id); ok {
		status.State = &state
	}
	return status, nil
}

// List returns the loaded workflow ids in sorted order
func (e *Engine) List() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.workflows))
	for id := range e.workflows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Description returns the raw description a workflow was loaded from
func (e *Engine) Description(id string) ([]byte, error) {
	w, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return w.raw, nil
}

// Unload stops and removes a workflow
func (e *Engine) Unload(ctx context.Context, id string) error {
	w, err := e.lookup(id)
	if err != nil {
		return err
	}

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		if err := e.stop(ctx, id, true); err != nil {
			return err
		}
	}

	e.mu.Lock()
	delete(e.workflows, id)
	e.mu.Unlock()
	e.tracker.Forget(id)
	e.log.Info("workflow unloaded", "workflow_id", id)
	return nil
}

// Shutdown stops every workflow and the executor pools
func (e *Engine) Shutdown(ctx context.Context, force bool) {
	for _, id := range e.List() {
		if err := e.stop(ctx, id, force); err != nil {
			e.log.Warn("workflow stop failed during shutdown", "workflow_id", id, "error", err)
		}
	}
	e.executor.Shutdown(!force)
}

func (e *Engine) lookup(id string) (*workflow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s is not loaded", id)
	}
	return w, nil
}
