package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/mode"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/runner"
)

// Strategy is how one workflow executes in its mode. Prepare builds the
// mode's machinery, Execute runs it (blocking until the run finishes),
// Shutdown stops it.
type Strategy interface {
	Prepare(ctx context.Context) error
	Execute(ctx context.Context, trigger *node.Output) (*node.Output, error)
	Shutdown(ctx context.Context, force bool) error
}

// Deps is everything a strategy needs for one workflow
type Deps struct {
	WorkflowID string
	Graph      *graph.Graph
	Walker     *runner.Walker
	Bus        *events.Bus
	Backoff    time.Duration
	Logger     runner.Logger
}

// Factory builds a strategy instance for one workflow
type Factory func(deps Deps) Strategy

// Registry maps workflow modes to strategy factories
type Registry struct {
	mu        sync.RWMutex
	factories map[mode.Mode]Factory
}

// NewRegistry creates a registry preloaded with the standard strategies
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[mode.Mode]Factory)}
	r.Register(mode.Production, NewProduction)
	r.Register(mode.API, NewAPI)
	r.Register(mode.SingleNode, NewSingleNode)
	return r
}

// Register maps a mode to a factory, replacing any previous mapping
func (r *Registry) Register(m mode.Mode, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[m] = f
}

// Create builds the strategy for a mode
func (r *Registry) Create(m mode.Mode, deps Deps) (Strategy, error) {
	r.mu.RLock()
	factory, ok := r.factories[m]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no strategy registered for mode %q", m)
	}
	return factory(deps), nil
}

// publish sends a workflow-level event if a bus is wired
func publish(deps Deps, kind events.Kind, errMsg string) {
	if deps.Bus == nil {
		return
	}
	e := events.New(deps.WorkflowID, kind)
	e.Err = errMsg
	deps.Bus.Publish(e)
}

// graphPool returns the heaviest pool any node in the graph prefers
func graphPool(g *graph.Graph) node.PoolKind {
	kinds := make([]node.PoolKind, 0, g.Len())
	for _, n := range g.Nodes() {
		kinds = append(kinds, n.Instance.PreferredPool())
	}
	return node.MaxPool(kinds...)
}
