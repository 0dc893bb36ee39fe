package events

import (
	"sync"
	"time"
)

// Status is the coarse lifecycle state of a workflow
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ExecutingNode is one in-flight node execution
type ExecutingNode struct {
	NodeID    string    `json:"node_id"`
	NodeType  string    `json:"node_type"`
	StartedAt time.Time `json:"started_at"`
}

// NodeRecord is one finished node execution. Duration is measured from
// the matching start event; zero when the start was never observed.
type NodeRecord struct {
	NodeID     string        `json:"node_id"`
	NodeType   string        `json:"node_type"`
	Route      string        `json:"route,omitempty"`
	Err        string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// WorkflowState is a point-in-time view of one workflow
type WorkflowState struct {
	WorkflowID  string          `json:"workflow_id"`
	Status      Status          `json:"status"`
	Executing   []ExecutingNode `json:"executing"`
	Completed   []NodeRecord    `json:"completed"`
	LastError   string          `json:"last_error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type workflowState struct {
	status      Status
	executing   map[string]ExecutingNode
	completed   []NodeRecord
	lastError   string
	startedAt   time.Time
	completedAt time.Time
	updatedAt   time.Time
}

// StateTracker folds the event stream into queryable per-workflow state.
// Wire it to a bus with tracker.Apply as the handler.
type StateTracker struct {
	mu        sync.RWMutex
	workflows map[string]*workflowState
}

// NewStateTracker creates an empty tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{workflows: make(map[string]*workflowState)}
}

// Apply folds one event into the tracked state
func (t *StateTracker) Apply(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ws, ok := t.workflows[e.WorkflowID]
	if !ok {
		ws = &workflowState{
			status:    StatusIdle,
			executing: make(map[string]ExecutingNode),
		}
		t.workflows[e.WorkflowID] = ws
	}
	ws.updatedAt = e.Timestamp

	switch e.Kind {
	case WorkflowStarted:
		ws.status = StatusRunning
		ws.startedAt = e.Timestamp
		ws.completedAt = time.Time{}
	case WorkflowCompleted:
		ws.status = StatusCompleted
		ws.completedAt = e.Timestamp
	case WorkflowFailed:
		ws.status = StatusFailed
		ws.lastError = e.Err
		ws.completedAt = e.Timestamp
	case NodeStarted:
		ws.executing[e.NodeID] = ExecutingNode{
			NodeID:    e.NodeID,
			NodeType:  e.NodeType,
			StartedAt: e.Timestamp,
		}
	case NodeCompleted:
		ws.completed = append(ws.completed, ws.finish(e))
	case NodeFailed:
		record := ws.finish(e)
		record.Err = e.Err
		ws.lastError = e.Err
		ws.completed = append(ws.completed, record)
	}
}

// finish moves a node out of the executing set, computing its duration
// from the recorded start
func (ws *workflowState) finish(e Event) NodeRecord {
	record := NodeRecord{
		NodeID:     e.NodeID,
		NodeType:   e.NodeType,
		Route:      e.Route,
		FinishedAt: e.Timestamp,
	}
	if started, ok := ws.executing[e.NodeID]; ok {
		record.StartedAt = started.StartedAt
		record.Duration = e.Timestamp.Sub(started.StartedAt)
		delete(ws.executing, e.NodeID)
	}
	return record
}

// Snapshot returns a deep copy of one workflow's state; ok is false when
// the workflow has never produced an event
func (t *StateTracker) Snapshot(workflowID string) (WorkflowState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ws, ok := t.workflows[workflowID]
	if !ok {
		return WorkflowState{}, false
	}
	return t.copyState(workflowID, ws), true
}

// Snapshots returns deep copies of every tracked workflow
func (t *StateTracker) Snapshots() []WorkflowState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]WorkflowState, 0, len(t.workflows))
	for id, ws := range t.workflows {
		out = append(out, t.copyState(id, ws))
	}
	return out
}

func (t *StateTracker) copyState(id string, ws *workflowState) WorkflowState {
	executing := make([]ExecutingNode, 0, len(ws.executing))
	for _, entry := range ws.executing {
		executing = append(executing, entry)
	}
	completed := make([]NodeRecord, len(ws.completed))
	copy(completed, ws.completed)

	return WorkflowState{
		WorkflowID:  id,
		Status:      ws.status,
		Executing:   executing,
		Completed:   completed,
		LastError:   ws.lastError,
		StartedAt:   ws.startedAt,
		CompletedAt: ws.completedAt,
		UpdatedAt:   ws.updatedAt,
	}
}

// Forget drops a workflow's tracked state
func (t *StateTracker) Forget(workflowID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.workflows, workflowID)
}
