package strategy

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// API runs one request/response walk from the workflow's single entry
// node. The walk stops at the first response-ready output, at a node
// that does not continue, or when the chain runs out; whichever output
// stopped the walk is the response.
type API struct {
	deps  Deps
	entry *graph.Node
	pool  node.PoolKind
}

// NewAPI creates the api strategy
func NewAPI(deps Deps) Strategy {
	return &API{deps: deps}
}

// Prepare resolves the unique entry node and initializes the graph
func (s *API) Prepare(ctx context.Context) error {
	entries := graph.NewAnalyzer(s.deps.Graph).EntryIDs()
	if len(entries) != 1 {
		return fmt.Errorf("workflow %s needs exactly one entry node, found %d", s.deps.WorkflowID, len(entries))
	}
	entry, _ := s.deps.Graph.Lookup(entries[0])
	s.entry = entry
	s.pool = graphPool(s.deps.Graph)

	for _, n := range s.deps.Graph.Nodes() {
		if err := node.Initialize(ctx, n.Instance); err != nil {
			return fmt.Errorf("workflow %s: %w", s.deps.WorkflowID, err)
		}
	}
	return nil
}

// Execute walks the graph from the entry node with the trigger as input
// and returns the response output
func (s *API) Execute(ctx context.Context, trigger *node.Output) (*node.Output, error) {
	publish(s.deps, events.WorkflowStarted, "")

	response, _, err := s.walk(ctx, s.entry, trigger)
	if err != nil {
		publish(s.deps, events.WorkflowFailed, err.Error())
		return nil, err
	}

	publish(s.deps, events.WorkflowCompleted, "")
	return response, nil
}

// walk runs one node and descends until something stops it. The bool
// reports whether a response-ready output ended the walk early.
func (s *API) walk(ctx context.Context, n *graph.Node, in *node.Output) (*node.Output, bool, error) {
	out, err := s.deps.Walker.RunNode(ctx, n, in, s.pool)
	if err != nil {
		return nil, false, err
	}
	if out.IsResponse() {
		return out, true, nil
	}
	if !n.Instance.ContinueAfterExecution() {
		return out, true, nil
	}

	last := out
	for _, child := range s.deps.Walker.Children(n, out) {
		result, stopped, err := s.walk(ctx, child, out)
		if err != nil {
			return nil, false, err
		}
		last = result
		if stopped {
			return result, true, nil
		}
	}
	return last, false, nil
}

// Shutdown is a no-op: the walk holds no background machinery
func (s *API) Shutdown(ctx context.Context, force bool) error {
	return nil
}
