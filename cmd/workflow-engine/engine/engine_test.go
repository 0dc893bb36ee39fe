package engine

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/mode"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/nodes"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/redis"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
)

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
func (testLogger) Debug(msg string, keysAndValues ...interface{}) {}

type testStores struct {
	queues *store.QueueStore
	pubsub *store.PubSubStore
	cache  *store.CacheStore
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { raw.Close() })
	client := redis.NewClient(raw, testLogger{})
	return testStores{
		queues: store.NewQueueStore(client, testLogger{}),
		pubsub: store.NewPubSubStore(client, testLogger{}),
		cache:  store.NewCacheStore(client, testLogger{}),
	}
}

func newTestEngine(t *testing.T) (*Engine, testStores) {
	t.Helper()
	stores := newTestStores(t)

	registry := node.NewRegistry()
	require.NoError(t, nodes.RegisterBuiltins(registry, nodes.Deps{
		Logger:     testLogger{},
		Queues:     stores.queues,
		PubSub:     stores.pubsub,
		PopTimeout: 200 * time.Millisecond,
	}))

	eng, err := New(Opts{
		Logger:   testLogger{},
		Registry: registry,
		Cache:    stores.cache,
		Backoff:  10 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Shutdown(context.Background(), true) })
	return eng, stores
}

const apiDescription = `{
	"nodes": [
		{"id": "entry", "type": "debug", "data": {}},
		{"id": "reply", "type": "respond", "data": {}}
	],
	"edges": [
		{"source": "entry", "target": "reply", "sourceHandle": null}
	]
}`

func TestLoadAndRunAPIWorkflow(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Load(ctx, "wf-api", []byte(apiDescription)))

	status, err := eng.Status("wf-api")
	require.NoError(t, err)
	assert.Equal(t, mode.API, status.Mode)
	assert.Equal(t, 2, status.Nodes)
	assert.False(t, status.Running)

	trigger := node.NewOutput("request")
	trigger.Data["request"] = map[string]interface{}{"q": "hello"}

	out, err := eng.Run(ctx, "wf-api", trigger)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.IsResponse())

	// the tracker saw the walk
	status, err = eng.Status("wf-api")
	require.NoError(t, err)
	require.NotNil(t, status.State)
	assert.Len(t, status.State.Completed, 2)
}

func completedRuns(state *events.WorkflowState, nodeID string) int {
	count := 0
	for _, record := range state.Completed {
		if record.NodeID == nodeID && record.Err == "" {
			count++
		}
	}
	return count
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Load(ctx, "wf-dup", []byte(apiDescription)))
	err := eng.Load(ctx, "wf-dup", []byte(apiDescription))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already loaded")
}

func TestLoadRejectsUnknownNodeType(t *testing.T) {
	eng, _ := newTestEngine(t)

	desc := `{"nodes": [{"id": "x", "type": "no-such-type", "data": {}}], "edges": []}`
	err := eng.Load(context.Background(), "wf-bad", []byte(desc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-type")
}

func TestLoadRejectsUnreadyNodes(t *testing.T) {
	eng, _ := newTestEngine(t)

	// conditional without an expression fails readiness
	desc := `{"nodes": [{"id": "cond", "type": "conditional", "data": {}}], "edges": []}`
	err := eng.Load(context.Background(), "wf-unready", []byte(desc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
	assert.Contains(t, err.Error(), "expression")
}

func TestProductionWorkflowDrainsQueue(t *testing.T) {
	eng, stores := newTestEngine(t)
	ctx := context.Background()

	desc := `{
		"nodes": [
			{"id": "reader", "type": "queue-reader", "data": {"form": {"queue_name": "inbox"}}},
			{"id": "sink", "type": "debug", "data": {}}
		],
		"edges": [
			{"source": "reader", "target": "sink", "sourceHandle": null}
		]
	}`

	for _, id := range []string{"job-1", "job-2"} {
		msg := node.NewOutput(id)
		encoded, err := msg.Encode()
		require.NoError(t, err)
		require.NoError(t, stores.queues.Push(ctx, "inbox", encoded))
	}
	sentinel, err := node.NewSentinel("upstream").Encode()
	require.NoError(t, err)
	require.NoError(t, stores.queues.Push(ctx, "inbox", sentinel))

	require.NoError(t, eng.Load(ctx, "wf-prod", []byte(desc)))
	status, err := eng.Status("wf-prod")
	require.NoError(t, err)
	assert.Equal(t, mode.Production, status.Mode)

	require.NoError(t, eng.Start(ctx, "wf-prod"))

	deadline := time.After(5 * time.Second)
	for {
		status, err = eng.Status("wf-prod")
		require.NoError(t, err)
		if !status.Running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("workflow did not drain in time")
		case <-time.After(20 * time.Millisecond):
		}
	}

	require.NotNil(t, status.State)
	assert.Equal(t, events.StatusCompleted, status.State.Status)
	// two payload runs plus the drain delivery
	assert.Equal(t, 3, completedRuns(status.State, "sink"))
}

func TestStopDrainsQueueBridgedLoops(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	// two loops bridged by a queue the namer wires: the interval loop
	// writes, the reader loop consumes. Neither side names the queue.
	desc := `{
		"nodes": [
			{"id": "tick", "type": "interval-producer", "data": {"form": {"interval": "20ms"}}},
			{"id": "out", "type": "queue-writer", "data": {}},
			{"id": "in", "type": "queue-reader", "data": {}},
			{"id": "sink", "type": "debug", "data": {}}
		],
		"edges": [
			{"source": "tick", "target": "out", "sourceHandle": null},
			{"source": "out", "target": "in", "sourceHandle": null},
			{"source": "in", "target": "sink", "sourceHandle": null}
		]
	}`
	require.NoError(t, eng.Load(ctx, "wf-bridge", []byte(desc)))
	require.NoError(t, eng.Start(ctx, "wf-bridge"))

	// wait for at least one payload to cross the queue
	deadline := time.After(5 * time.Second)
	for {
		status, err := eng.Status("wf-bridge")
		require.NoError(t, err)
		if status.State != nil && completedRuns(status.State, "sink") > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no payload crossed the queue in time")
		case <-time.After(20 * time.Millisecond):
		}
	}

	// a soft stop drains the writing loop, which forwards completion
	// through the queue; the reading loop drains too and the workflow
	// finishes cleanly
	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, eng.Stop(stopCtx, "wf-bridge"))

	status, err := eng.Status("wf-bridge")
	require.NoError(t, err)
	assert.False(t, status.Running)
	require.NotNil(t, status.State)
	assert.Equal(t, events.StatusCompleted, status.State.Status)
	assert.Empty(t, status.State.Executing)
}

func TestStartRejectsRunningWorkflow(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	// an empty queue keeps the reader blocked on its pop timeout
	desc := `{
		"nodes": [
			{"id": "reader", "type": "queue-reader", "data": {"form": {"queue_name": "idle"}}},
			{"id": "sink", "type": "debug", "data": {}}
		],
		"edges": [
			{"source": "reader", "target": "sink", "sourceHandle": null}
		]
	}`
	require.NoError(t, eng.Load(ctx, "wf-busy", []byte(desc)))
	require.NoError(t, eng.Start(ctx, "wf-busy"))

	err := eng.Start(ctx, "wf-busy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, eng.ForceStop(ctx, "wf-busy"))
}

func TestExecuteNodeCachesOutputs(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	producerCfg := &node.Config{ID: "tick", Type: "interval-producer"}
	producerCfg.Data.Form = map[string]interface{}{"interval": "1ms"}

	out, err := eng.ExecuteNode(ctx, "wf-dev", producerCfg, nil)
	require.NoError(t, err)
	require.Contains(t, out.Data, "interval")

	// downstream run sees the cached upstream output
	sinkCfg := &node.Config{ID: "sink", Type: "debug"}
	out, err = eng.ExecuteNode(ctx, "wf-dev", sinkCfg, []string{"tick"})
	require.NoError(t, err)
	assert.Contains(t, out.Data, "interval")
}

func TestExecuteNodeResolvesUpstreamFromLoadedGraph(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	desc := `{
		"nodes": [
			{"id": "tick", "type": "interval-producer", "data": {"form": {"interval": "1ms"}}},
			{"id": "sink", "type": "debug", "data": {}}
		],
		"edges": [
			{"source": "tick", "target": "sink", "sourceHandle": null}
		]
	}`
	require.NoError(t, eng.Load(ctx, "wf-graph", []byte(desc)))

	producerCfg := &node.Config{ID: "tick", Type: "interval-producer"}
	producerCfg.Data.Form = map[string]interface{}{"interval": "1ms"}
	_, err := eng.ExecuteNode(ctx, "wf-graph", producerCfg, nil)
	require.NoError(t, err)

	// no upstream ids given: the loaded graph names the predecessor
	sinkCfg := &node.Config{ID: "sink", Type: "debug"}
	out, err := eng.ExecuteNode(ctx, "wf-graph", sinkCfg, nil)
	require.NoError(t, err)
	assert.Contains(t, out.Data, "interval")
}

func TestExecuteNodeRequiresCachedUpstream(t *testing.T) {
	eng, _ := newTestEngine(t)

	sinkCfg := &node.Config{ID: "sink", Type: "debug"}
	_, err := eng.ExecuteNode(context.Background(), "wf-dev", sinkCfg, []string{"never-ran"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute it first")
}

func TestPatchDescriptionRebuilds(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Load(ctx, "wf-patch", []byte(apiDescription)))

	patch := `[{"op": "add", "path": "/nodes/1/data/form", "value": {"body": {"ok": true}}}]`
	require.NoError(t, eng.PatchDescription(ctx, "wf-patch", []byte(patch)))

	raw, err := eng.Description("wf-patch")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ok":true`)

	out, err := eng.Run(ctx, "wf-patch", node.NewOutput("request"))
	require.NoError(t, err)
	body := out.Data["response"].(map[string]interface{})
	assert.Equal(t, true, body["ok"])
}

func TestPatchDescriptionRejectsBrokenResult(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Load(ctx, "wf-patch", []byte(apiDescription)))

	// patching the node type to something unknown must not replace the build
	patch := `[{"op": "replace", "path": "/nodes/0/type", "value": "no-such-type"}]`
	require.Error(t, eng.PatchDescription(ctx, "wf-patch", []byte(patch)))

	// the previous build still runs
	out, err := eng.Run(ctx, "wf-patch", node.NewOutput("request"))
	require.NoError(t, err)
	assert.True(t, out.IsResponse())
}

func TestUnloadRemovesWorkflow(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Load(ctx, "wf-a", []byte(apiDescription)))
	require.NoError(t, eng.Load(ctx, "wf-b", []byte(apiDescription)))
	assert.Equal(t, []string{"wf-a", "wf-b"}, eng.List())

	require.NoError(t, eng.Unload(ctx, "wf-a"))
	assert.Equal(t, []string{"wf-b"}, eng.List())

	_, err := eng.Status("wf-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not loaded")
}
