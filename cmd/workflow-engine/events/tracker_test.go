package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerFoldsLifecycle(t *testing.T) {
	tracker := NewStateTracker()

	tracker.Apply(New("wf-1", WorkflowStarted))
	tracker.Apply(NewNodeEvent("wf-1", NodeStarted, "n1", "debug"))

	state, ok := tracker.Snapshot("wf-1")
	require.True(t, ok)
	assert.Equal(t, StatusRunning, state.Status)
	assert.False(t, state.StartedAt.IsZero())
	require.Len(t, state.Executing, 1)
	assert.Equal(t, "n1", state.Executing[0].NodeID)
	assert.Equal(t, "debug", state.Executing[0].NodeType)
	assert.False(t, state.Executing[0].StartedAt.IsZero())

	completed := NewNodeEvent("wf-1", NodeCompleted, "n1", "debug")
	completed.Route = "default"
	tracker.Apply(completed)
	tracker.Apply(New("wf-1", WorkflowCompleted))

	state, _ = tracker.Snapshot("wf-1")
	assert.Equal(t, StatusCompleted, state.Status)
	assert.False(t, state.CompletedAt.IsZero())
	assert.Empty(t, state.Executing)
	require.Len(t, state.Completed, 1)
	assert.Equal(t, "n1", state.Completed[0].NodeID)
	assert.Equal(t, "default", state.Completed[0].Route)
}

func TestTrackerComputesNodeDuration(t *testing.T) {
	tracker := NewStateTracker()
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	started := NewNodeEvent("wf-1", NodeStarted, "n1", "http-request")
	started.Timestamp = base
	tracker.Apply(started)

	completed := NewNodeEvent("wf-1", NodeCompleted, "n1", "http-request")
	completed.Timestamp = base.Add(250 * time.Millisecond)
	tracker.Apply(completed)

	state, _ := tracker.Snapshot("wf-1")
	require.Len(t, state.Completed, 1)
	assert.Equal(t, base, state.Completed[0].StartedAt)
	assert.Equal(t, base.Add(250*time.Millisecond), state.Completed[0].FinishedAt)
	assert.Equal(t, 250*time.Millisecond, state.Completed[0].Duration)
	assert.Empty(t, state.Executing)
}

func TestTrackerRecordsFailures(t *testing.T) {
	tracker := NewStateTracker()

	tracker.Apply(NewNodeEvent("wf-1", NodeStarted, "n1", "http-request"))
	failed := NewNodeEvent("wf-1", NodeFailed, "n1", "http-request")
	failed.Err = "connection refused"
	tracker.Apply(failed)

	wfFailed := New("wf-1", WorkflowFailed)
	wfFailed.Err = "loop aborted"
	tracker.Apply(wfFailed)

	state, ok := tracker.Snapshot("wf-1")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "loop aborted", state.LastError)
	assert.False(t, state.CompletedAt.IsZero())
	require.Len(t, state.Completed, 1)
	assert.Equal(t, "connection refused", state.Completed[0].Err)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	tracker := NewStateTracker()
	tracker.Apply(NewNodeEvent("wf-1", NodeStarted, "n1", "debug"))

	state, _ := tracker.Snapshot("wf-1")
	state.Executing[0].NodeID = "mutated"
	state.Completed = append(state.Completed, NodeRecord{NodeID: "ghost"})

	fresh, _ := tracker.Snapshot("wf-1")
	require.Len(t, fresh.Executing, 1)
	assert.Equal(t, "n1", fresh.Executing[0].NodeID)
	assert.Empty(t, fresh.Completed)
}

func TestSnapshotUnknownWorkflow(t *testing.T) {
	tracker := NewStateTracker()
	_, ok := tracker.Snapshot("missing")
	assert.False(t, ok)
}

func TestForget(t *testing.T) {
	tracker := NewStateTracker()
	tracker.Apply(New("wf-1", WorkflowStarted))
	tracker.Forget("wf-1")

	_, ok := tracker.Snapshot("wf-1")
	assert.False(t, ok)
}
