package runner

import (
	"context"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/pool"
)

// Logger interface for runner logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Walker runs single nodes and descends through their chosen branches.
// It owns the event publication around each invocation; loop runners and
// execution strategies share it so routing behaves identically in every
// mode.
type Walker struct {
	WorkflowID string
	Graph      *graph.Graph
	Executor   *pool.Executor
	Bus        *events.Bus
	Log        Logger
}

// RunNode invokes one node on the given pool, publishing started and
// completed/failed events around it. The completed event's route is the
// node's own routing decision.
func (w *Walker) RunNode(ctx context.Context, n *graph.Node, in *node.Output, kind node.PoolKind) (*node.Output, error) {
	w.publish(events.NewNodeEvent(w.WorkflowID, events.NodeStarted, n.ID, n.Instance.Identifier()))

	out, err := w.Executor.Run(ctx, kind, n.Instance, in)
	if err != nil {
		failed := events.NewNodeEvent(w.WorkflowID, events.NodeFailed, n.ID, n.Instance.Identifier())
		failed.Err = err.Error()
		w.publish(failed)
		return nil, err
	}

	completed := events.NewNodeEvent(w.WorkflowID, events.NodeCompleted, n.ID, n.Instance.Identifier())
	completed.Route = string(routeOf(n.Instance))
	w.publish(completed)
	return out, nil
}

// PollProducer runs a producer for one iteration. An empty poll (nil
// output, nil error) publishes nothing, so idle producers do not pad the
// tracked history; yields and failures get the usual event pair.
func (w *Walker) PollProducer(ctx context.Context, n *graph.Node, kind node.PoolKind) (*node.Output, error) {
	out, err := w.Executor.Run(ctx, kind, n.Instance, nil)
	if err != nil {
		w.publish(events.NewNodeEvent(w.WorkflowID, events.NodeStarted, n.ID, n.Instance.Identifier()))
		failed := events.NewNodeEvent(w.WorkflowID, events.NodeFailed, n.ID, n.Instance.Identifier())
		failed.Err = err.Error()
		w.publish(failed)
		return nil, err
	}
	if out == nil {
		return nil, nil
	}

	w.publish(events.NewNodeEvent(w.WorkflowID, events.NodeStarted, n.ID, n.Instance.Identifier()))
	completed := events.NewNodeEvent(w.WorkflowID, events.NodeCompleted, n.ID, n.Instance.Identifier())
	completed.Route = string(routeOf(n.Instance))
	w.publish(completed)
	return out, nil
}

// Children returns the targets the node wants to descend into for this
// output, flattened across its chosen branches in branch order. Producer
// targets are excluded: a producer drives its own loop and only ever
// receives work through the medium it reads, never inline from an
// upstream walk.
func (w *Walker) Children(n *graph.Node, out *node.Output) []*graph.Node {
	available := n.Branches()
	if len(available) == 0 {
		return nil
	}
	chosen := n.Instance.BranchesToFollow(out, available)

	var children []*graph.Node
	for _, key := range chosen {
		for _, child := range n.Next()[key] {
			if child.Instance.Variant() == node.VariantProducer {
				continue
			}
			children = append(children, child)
		}
	}
	return children
}

// Descend runs the node's children depth-first, honoring each node's
// descent preference. Nodes that do not continue after execution still
// run but their subtrees are skipped.
func (w *Walker) Descend(ctx context.Context, n *graph.Node, out *node.Output, kind node.PoolKind) error {
	for _, child := range w.Children(n, out) {
		childOut, err := w.RunNode(ctx, child, out, kind)
		if err != nil {
			return err
		}
		if childOut == nil || !child.Instance.ContinueAfterExecution() {
			continue
		}
		if err := w.Descend(ctx, child, childOut, kind); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) publish(e events.Event) {
	if w.Bus != nil {
		w.Bus.Publish(e)
	}
}

// routeOf is the executed node's own routing decision: a conditional
// reports its selected branch, everything else reports the default
func routeOf(n node.Node) node.BranchKey {
	if c, ok := n.(node.Conditional); ok {
		if selected := c.SelectedBranch(); selected != node.BranchUnset {
			return selected
		}
	}
	return node.BranchDefault
}
