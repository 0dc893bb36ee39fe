package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the lifecycle moment an event records
type Kind string

const (
	WorkflowStarted   Kind = "workflow_started"
	WorkflowCompleted Kind = "workflow_completed"
	WorkflowFailed    Kind = "workflow_failed"
	NodeStarted       Kind = "node_started"
	NodeCompleted     Kind = "node_completed"
	NodeFailed        Kind = "node_failed"
)

// Event is a single lifecycle observation. Route is only set on
// node_completed and names the branch the node chose to follow.
type Event struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	Kind       Kind      `json:"kind"`
	NodeID     string    `json:"node_id,omitempty"`
	NodeType   string    `json:"node_type,omitempty"`
	Route      string    `json:"route,omitempty"`
	Err        string    `json:"error,omitempty"`
	Iteration  int64     `json:"iteration,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// New creates an event stamped with a fresh id and the current time
func New(workflowID string, kind Kind) Event {
	return Event{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Kind:       kind,
		Timestamp:  time.Now().UTC(),
	}
}

// NewNodeEvent creates an event scoped to a node
func NewNodeEvent(workflowID string, kind Kind, nodeID, nodeType string) Event {
	e := New(workflowID, kind)
	e.NodeID = nodeID
	e.NodeType = nodeType
	return e
}
