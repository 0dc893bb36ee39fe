package node

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	Base
	setupCalls   int
	cleanupCalls int
	executeCalls int
	executeErr   error
	ready        *Readiness
}

func newFakeNode(id string) *fakeNode {
	return &fakeNode{Base: NewBase(&Config{ID: id, Type: "fake"})}
}

func (f *fakeNode) Identifier() string { return "fake" }

func (f *fakeNode) IsReady() *Readiness {
	if f.ready != nil {
		return f.ready
	}
	return Ready()
}

func (f *fakeNode) Setup(ctx context.Context) error {
	f.setupCalls++
	return nil
}

func (f *fakeNode) Cleanup(ctx context.Context, in *Output) error {
	f.cleanupCalls++
	return nil
}

func (f *fakeNode) Execute(ctx context.Context, in *Output) (*Output, error) {
	f.executeCalls++
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	out := NewOutput(f.ID())
	out.Data["fake"] = map[string]interface{}{"call": f.executeCalls}
	return out, nil
}

func TestInitializeRunsSetupOnce(t *testing.T) {
	n := newFakeNode("n1")
	ctx := context.Background()

	require.NoError(t, Initialize(ctx, n))
	require.NoError(t, Initialize(ctx, n))
	require.NoError(t, Initialize(ctx, n))

	assert.Equal(t, 1, n.setupCalls)
}

func TestInitializeRejectsUnreadyNode(t *testing.T) {
	n := newFakeNode("n1")
	n.ready = NotReady(map[string][]string{"url": {"failed \"required\" validation"}})

	err := Initialize(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n1")
	assert.Equal(t, 0, n.setupCalls)
}

func TestInvokeExecutesAndCounts(t *testing.T) {
	n := newFakeNode("n1")
	in := NewOutput("upstream")

	out, err := Invoke(context.Background(), n, in)
	require.NoError(t, err)
	assert.Equal(t, 1, n.executeCalls)
	assert.EqualValues(t, 1, n.ExecutionCount())
	assert.Equal(t, "n1", out.ID)
}

func TestInvokeSentinelTriggersCleanupOnly(t *testing.T) {
	n := newFakeNode("n1")
	sentinel := NewSentinel("producer")

	out, err := Invoke(context.Background(), n, sentinel)
	require.NoError(t, err)

	assert.Equal(t, 1, n.cleanupCalls)
	assert.Equal(t, 0, n.executeCalls)
	assert.EqualValues(t, 0, n.ExecutionCount())
	assert.True(t, out.IsSentinel())
	assert.Same(t, sentinel, out)
}

func TestInvokeExecutionErrorNamesNode(t *testing.T) {
	n := newFakeNode("n1")
	n.executeErr = errors.New("boom")

	_, err := Invoke(context.Background(), n, NewOutput("upstream"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n1")
	assert.EqualValues(t, 0, n.ExecutionCount())
}
