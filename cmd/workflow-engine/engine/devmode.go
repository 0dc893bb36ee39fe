package engine

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// outputKey is the cache key holding one node's latest output within a
// workflow's development session
func outputKey(workflowID, nodeID string) string {
	return fmt.Sprintf("%s:%s_output", workflowID, nodeID)
}

// ExecuteNode runs one node in isolation for development: upstream
// outputs are read from the cache, merged into the input, and the node's
// own output is cached for downstream runs. When no upstream ids are
// given and the workflow is loaded, the node's direct predecessors are
// resolved from its graph; otherwise the workflow does not need to be
// loaded.
func (e *Engine) ExecuteNode(ctx context.Context, workflowID string, cfg *node.Config, upstreamIDs []string) (*node.Output, error) {
	if e.cache == nil {
		return nil, fmt.Errorf("node execution requires a cache store")
	}

	if upstreamIDs == nil {
		if w, err := e.lookup(workflowID); err == nil {
			for _, parent := range w.graph.UpstreamOf(cfg.ID) {
				upstreamIDs = append(upstreamIDs, parent.ID)
			}
		}
	}

	in := node.NewOutput(cfg.ID)
	for _, upstreamID := range upstreamIDs {
		raw, ok, err := e.cache.Get(ctx, outputKey(workflowID, upstreamID))
		if err != nil {
			return nil, fmt.Errorf("node %s: failed to read upstream %s: %w", cfg.ID, upstreamID, err)
		}
		if !ok {
			return nil, fmt.Errorf("node %s: upstream %s has no cached output, execute it first", cfg.ID, upstreamID)
		}
		upstream, err := node.DecodeOutput(raw)
		if err != nil {
			return nil, fmt.Errorf("node %s: upstream %s: %w", cfg.ID, upstreamID, err)
		}
		for k, v := range upstream.Data {
			in.Data[k] = v
		}
	}

	instance, err := e.registry.Create(cfg)
	if err != nil {
		return nil, err
	}
	if err := node.Initialize(ctx, instance); err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := instance.Cleanup(ctx, nil); cleanupErr != nil {
			e.log.Warn("node cleanup failed", "workflow_id", workflowID, "node_id", cfg.ID, "error", cleanupErr)
		}
	}()

	out, err := e.executor.Run(ctx, instance.PreferredPool(), instance, in)
	if err != nil {
		return nil, err
	}

	encoded, err := out.Encode()
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, outputKey(workflowID, cfg.ID), encoded, e.cacheTTL); err != nil {
		return nil, fmt.Errorf("node %s: failed to cache output: %w", cfg.ID, err)
	}

	e.log.Debug("node executed in isolation",
		"workflow_id", workflowID,
		"node_id", cfg.ID,
		"upstream_count", len(upstreamIDs))
	return out, nil
}
