package strategy

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// SingleNode invokes the workflow's one node and returns its output
type SingleNode struct {
	deps Deps
	only *graph.Node
}

// NewSingleNode creates the single node strategy
func NewSingleNode(deps Deps) Strategy {
	return &SingleNode{deps: deps}
}

// Prepare resolves and initializes the single node
func (s *SingleNode) Prepare(ctx context.Context) error {
	nodes := s.deps.Graph.Nodes()
	if len(nodes) != 1 {
		return fmt.Errorf("workflow %s needs exactly one node, found %d", s.deps.WorkflowID, len(nodes))
	}
	s.only = nodes[0]
	return node.Initialize(ctx, s.only.Instance)
}

// Execute invokes the node once with the trigger as input
func (s *SingleNode) Execute(ctx context.Context, trigger *node.Output) (*node.Output, error) {
	publish(s.deps, events.WorkflowStarted, "")

	out, err := s.deps.Walker.RunNode(ctx, s.only, trigger, s.only.Instance.PreferredPool())
	if err != nil {
		publish(s.deps, events.WorkflowFailed, err.Error())
		return nil, err
	}

	publish(s.deps, events.WorkflowCompleted, "")
	return out, nil
}

// Shutdown is a no-op
func (s *SingleNode) Shutdown(ctx context.Context, force bool) error {
	return nil
}
