package node

import (
	"context"
	"sync"
	"sync/atomic"
)

// Base provides the default node behavior. Concrete implementations embed
// it and implement Identifier and Execute; everything else is overridable.
type Base struct {
	cfg *Config

	executions  atomic.Int64
	initialized atomic.Bool

	formMu       sync.RWMutex
	renderedForm map[string]interface{}
}

// NewBase creates a base around the given descriptor
func NewBase(cfg *Config) Base {
	return Base{cfg: cfg}
}

// ID returns the stable instance id
func (b *Base) ID() string {
	return b.cfg.ID
}

// Config exposes the declarative descriptor
func (b *Base) Config() *Config {
	return b.cfg
}

// Variant defaults to blocking
func (b *Base) Variant() Variant {
	return VariantBlocking
}

// PreferredPool defaults to the cooperative backend
func (b *Base) PreferredPool() PoolKind {
	return PoolCooperative
}

// IsReady defaults to passing; nodes with required form fields override it
func (b *Base) IsReady() *Readiness {
	return Ready()
}

// Setup acquires resources; the default holds none
func (b *Base) Setup(ctx context.Context) error {
	return nil
}

// Cleanup releases resources; the default holds none
func (b *Base) Cleanup(ctx context.Context, in *Output) error {
	return nil
}

// PopulateForm renders template expressions in the form against the
// incoming output's data. The rendered form is what Form returns until
// the next call.
func (b *Base) PopulateForm(in *Output) error {
	var data map[string]interface{}
	if in != nil {
		data = in.Data
	}
	rendered, err := RenderTemplates(b.cfg.Form(), data)
	if err != nil {
		return err
	}
	b.formMu.Lock()
	b.renderedForm = rendered
	b.formMu.Unlock()
	return nil
}

// Form returns the rendered form from the last PopulateForm, or the raw
// form if no rendering has happened yet
func (b *Base) Form() map[string]interface{} {
	b.formMu.RLock()
	defer b.formMu.RUnlock()
	if b.renderedForm != nil {
		return b.renderedForm
	}
	return b.cfg.Form()
}

// BranchesToFollow follows the default branch, or broadcasts to every
// available branch when draining a completion sentinel
func (b *Base) BranchesToFollow(in *Output, available []BranchKey) []BranchKey {
	if in.IsSentinel() {
		return append([]BranchKey(nil), available...)
	}
	return []BranchKey{BranchDefault}
}

// ContinueAfterExecution defaults to descending into children
func (b *Base) ContinueAfterExecution() bool {
	return true
}

// ExecutionCount returns the number of completed executions
func (b *Base) ExecutionCount() int64 {
	return b.executions.Load()
}

// RecordExecution increments the execution count
func (b *Base) RecordExecution() {
	b.executions.Add(1)
}

// beginInitialize flips the initialized flag; returns false when the node
// was already initialized
func (b *Base) beginInitialize() bool {
	return b.initialized.CompareAndSwap(false, true)
}

// ConditionalBase extends Base with the yes/no decision state of a
// conditional node
type ConditionalBase struct {
	Base

	decisionMu sync.RWMutex
	selected   BranchKey
	lastResult bool
}

// NewConditionalBase creates a conditional base around the descriptor
func NewConditionalBase(cfg *Config) ConditionalBase {
	return ConditionalBase{Base: NewBase(cfg), selected: BranchUnset}
}

// Variant reports the conditional class
func (b *ConditionalBase) Variant() Variant {
	return VariantConditional
}

// SetDecision records the outcome of the node's condition
func (b *ConditionalBase) SetDecision(result bool) {
	b.decisionMu.Lock()
	defer b.decisionMu.Unlock()
	b.lastResult = result
	if result {
		b.selected = BranchYes
	} else {
		b.selected = BranchNo
	}
}

// SelectedBranch returns the branch chosen by the last decision, or
// BranchUnset before the first decision
func (b *ConditionalBase) SelectedBranch() BranchKey {
	b.decisionMu.RLock()
	defer b.decisionMu.RUnlock()
	return b.selected
}

// LastResult returns the boolean outcome of the last decision
func (b *ConditionalBase) LastResult() bool {
	b.decisionMu.RLock()
	defer b.decisionMu.RUnlock()
	return b.lastResult
}

// BranchesToFollow follows only the selected branch; empty before the
// first decision. Sentinels broadcast.
func (b *ConditionalBase) BranchesToFollow(in *Output, available []BranchKey) []BranchKey {
	if in.IsSentinel() {
		return append([]BranchKey(nil), available...)
	}
	selected := b.SelectedBranch()
	if selected == BranchUnset {
		return nil
	}
	return []BranchKey{selected}
}
