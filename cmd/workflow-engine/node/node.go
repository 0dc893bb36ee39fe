package node

import "context"

// Variant classifies how the scheduler treats a node
type Variant string

const (
	VariantProducer    Variant = "producer"     // no inputs, drives one loop
	VariantBlocking    Variant = "blocking"     // scheduler descends after execution
	VariantNonBlocking Variant = "non_blocking" // execute, do not descend
	VariantConditional Variant = "conditional"  // selects one branch key
)

// PoolKind selects the executor backend for a node invocation.
// Ordered by escalation priority: isolated > worker > cooperative.
type PoolKind int

const (
	PoolCooperative PoolKind = iota // run inline on the calling goroutine
	PoolWorker                      // bounded worker pool for blocking bodies
	PoolIsolated                    // serialized run in an isolated worker
)

// String returns the wire name of the pool kind
func (k PoolKind) String() string {
	switch k {
	case PoolWorker:
		return "worker"
	case PoolIsolated:
		return "isolated"
	default:
		return "cooperative"
	}
}

// MaxPool returns the highest-priority pool kind among the given kinds.
// An iteration runs on the heaviest pool any touched node prefers.
func MaxPool(kinds ...PoolKind) PoolKind {
	max := PoolCooperative
	for _, k := range kinds {
		if k > max {
			max = k
		}
	}
	return max
}

// BranchKey is a canonical label on an outbound edge
type BranchKey string

const (
	BranchDefault BranchKey = "default"
	BranchYes     BranchKey = "yes"
	BranchNo      BranchKey = "no"
	BranchUnset   BranchKey = ""
)

// Readiness is the result of a node's structural config check
type Readiness struct {
	OK     bool
	Errors map[string][]string // field -> messages
}

// Ready returns a passing readiness report
func Ready() *Readiness {
	return &Readiness{OK: true, Errors: map[string][]string{}}
}

// NotReady returns a failing readiness report with the given field errors
func NotReady(errors map[string][]string) *Readiness {
	return &Readiness{OK: false, Errors: errors}
}

// Node is the polymorphic contract the scheduler depends on. Concrete
// implementations embed Base (or ConditionalBase) and override what they
// need; the scheduler is a generic walker over this interface.
type Node interface {
	// ID returns the stable instance id from the workflow description
	ID() string
	// Identifier returns the kebab-case type tag used by the registry
	Identifier() string
	// Variant classifies the node for the scheduler
	Variant() Variant
	// PreferredPool is the executor backend this node wants
	PreferredPool() PoolKind
	// Config exposes the node's declarative descriptor
	Config() *Config

	// IsReady performs the structural config check. Fields holding
	// template expressions are only checked for presence here; the full
	// check runs after rendering.
	IsReady() *Readiness
	// Setup acquires the node's resources
	Setup(ctx context.Context) error
	// Cleanup releases resources; receives the sentinel when draining
	Cleanup(ctx context.Context, in *Output) error
	// PopulateForm renders {{ ... }} templates in the form against the
	// incoming output's data and re-validates
	PopulateForm(in *Output) error
	// Execute performs the node's work
	Execute(ctx context.Context, in *Output) (*Output, error)

	// BranchesToFollow returns the branch keys the scheduler should
	// descend into for this input, chosen from the available keys
	BranchesToFollow(in *Output, available []BranchKey) []BranchKey
	// ContinueAfterExecution reports whether the scheduler may descend
	// into this node's children in the same iteration
	ContinueAfterExecution() bool
}

// Conditional is implemented by nodes that pick a yes/no branch
type Conditional interface {
	Node
	SelectedBranch() BranchKey
	LastResult() bool
}

// Responder is implemented by terminal nodes that produce the response of
// a request/response workflow
type Responder interface {
	Responds() bool
}

// QueueWriter is implemented by nodes that feed cross-loop queues; the
// queue namer wires their queue names during pre-processing
type QueueWriter interface {
	WritesQueue() bool
}

// QueueReader is implemented by producers that drain cross-loop queues
type QueueReader interface {
	ReadsQueue() bool
}

// ExecutionCounter is implemented by nodes that track how many times they
// have executed. Pool backends that run a serialized copy use it to keep
// the original instance's count monotone.
type ExecutionCounter interface {
	ExecutionCount() int64
	RecordExecution()
}
