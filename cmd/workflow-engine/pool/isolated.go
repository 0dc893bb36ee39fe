package pool

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// runIsolated executes a node through a serialization boundary: the
// descriptor and input are round-tripped through JSON, a fresh instance is
// rebuilt from the registry and set up, and the output is detached the
// same way. Shared mutable state cannot leak across the boundary. The
// original instance's execution count is kept monotone.
func (e *Executor) runIsolated(ctx context.Context, n node.Node, in *node.Output) (*node.Output, error) {
	if e.registry == nil {
		return nil, fmt.Errorf("node %s: isolated pool has no registry", n.ID())
	}

	cfg, err := n.Config().Clone()
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID(), err)
	}

	inCopy, err := detachOutput(in)
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to detach input: %w", n.ID(), err)
	}

	replica, err := e.registry.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to rebuild for isolated run: %w", n.ID(), err)
	}
	if err := node.Initialize(ctx, replica); err != nil {
		return nil, fmt.Errorf("node %s: isolated setup failed: %w", n.ID(), err)
	}
	defer func() {
		if cleanupErr := replica.Cleanup(ctx, nil); cleanupErr != nil && e.log != nil {
			e.log.Error("isolated replica cleanup failed", "node_id", n.ID(), "error", cleanupErr)
		}
	}()

	out, err := node.Invoke(ctx, replica, inCopy)
	if err != nil {
		return nil, err
	}

	detached, err := detachOutput(out)
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to detach output: %w", n.ID(), err)
	}

	// mirror the replica's run onto the original instance
	if c, ok := n.(node.ExecutionCounter); ok {
		c.RecordExecution()
	}

	// conditionals decide routing on the original, so copy the decision
	// back, but only when the replica actually decided: forcing an unset
	// decision onto the original would read as "no"
	if orig, ok := n.(interface{ SetDecision(bool) }); ok {
		if rep, ok := replica.(node.Conditional); ok && rep.SelectedBranch() != node.BranchUnset {
			orig.SetDecision(rep.LastResult())
		}
	}

	return detached, nil
}

// detachOutput deep-copies an output through its JSON encoding; nil stays nil
func detachOutput(o *node.Output) (*node.Output, error) {
	if o == nil {
		return nil, nil
	}
	raw, err := o.Encode()
	if err != nil {
		return nil, err
	}
	return node.DecodeOutput(raw)
}
