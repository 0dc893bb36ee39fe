package node

import (
	"context"
	"fmt"
)

type initTracker interface {
	beginInitialize() bool
}

// Initialize prepares a node for its first iteration: validates readiness
// and runs the setup hook. Repeated calls are no-ops for nodes embedding
// Base, so diamond-shaped subgraphs initialize each node once.
func Initialize(ctx context.Context, n Node) error {
	if t, ok := n.(initTracker); ok && !t.beginInitialize() {
		return nil
	}
	if r := n.IsReady(); !r.OK {
		return fmt.Errorf("node %s (%s) is not ready: %v", n.ID(), n.Identifier(), r.Errors)
	}
	if err := n.Setup(ctx); err != nil {
		return fmt.Errorf("node %s setup failed: %w", n.ID(), err)
	}
	return nil
}

// Invoke is the composite entry point for one node run. A completion
// sentinel triggers the cleanup hook and passes through unchanged; any
// other input is rendered into the form, executed, and counted.
func Invoke(ctx context.Context, n Node, in *Output) (*Output, error) {
	if in.IsSentinel() {
		if err := n.Cleanup(ctx, in); err != nil {
			return in, fmt.Errorf("node %s cleanup failed: %w", n.ID(), err)
		}
		return in, nil
	}

	if err := n.PopulateForm(in); err != nil {
		return nil, fmt.Errorf("node %s form rendering failed: %w", n.ID(), err)
	}

	out, err := n.Execute(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("node %s execution failed: %w", n.ID(), err)
	}

	if c, ok := n.(ExecutionCounter); ok {
		c.RecordExecution()
	}
	return out, nil
}
