package engine

import (
	"context"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// PatchDescription applies a JSON Patch (RFC 6902) to a loaded
// workflow's description and rebuilds it. The workflow must not be
// running; the previous build is discarded only after the patched one
// assembles cleanly.
func (e *Engine) PatchDescription(ctx context.Context, id string, patchDoc []byte) error {
	w, err := e.lookup(id)
	if err != nil {
		return err
	}

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		return fmt.Errorf("workflow %s is running, stop it before patching", id)
	}

	patch, err := jsonpatch.DecodePatch(patchDoc)
	if err != nil {
		return fmt.Errorf("workflow %s: malformed patch: %w", id, err)
	}
	patched, err := patch.Apply(w.raw)
	if err != nil {
		return fmt.Errorf("workflow %s: patch failed to apply: %w", id, err)
	}

	rebuilt, err := e.assemble(ctx, id, patched)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.workflows[id] = rebuilt
	e.mu.Unlock()
	e.tracker.Forget(id)
	e.log.Info("workflow description patched", "workflow_id", id, "mode", rebuilt.mode)
	return nil
}
