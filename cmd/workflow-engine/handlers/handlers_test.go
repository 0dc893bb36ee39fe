package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/engine"
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

type fixture struct {
	engine *engine.Engine
	pubsub *store.PubSubStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { raw.Close() })
	client := redis.NewClient(raw, testLogger{})

	queues := store.NewQueueStore(client, testLogger{})
	pubsub := store.NewPubSubStore(client, testLogger{})
	cache := store.NewCacheStore(client, testLogger{})

	registry := node.NewRegistry()
	require.NoError(t, nodes.RegisterBuiltins(registry, nodes.Deps{
		Logger:     testLogger{},
		Queues:     queues,
		PubSub:     pubsub,
		PopTimeout: 200 * time.Millisecond,
	}))

	eng, err := engine.New(engine.Opts{
		Logger:   testLogger{},
		Registry: registry,
		Cache:    cache,
	})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Shutdown(context.Background(), true) })

	return fixture{engine: eng, pubsub: pubsub}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
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

func loadWorkflow(t *testing.T, f fixture, id string) {
	t.Helper()
	require.NoError(t, f.engine.Load(context.Background(), id, []byte(apiDescription)))
}

func TestLoadWorkflowEndpoint(t *testing.T) {
	f := newFixture(t)
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	payload := `{"workflow_id": "wf-1", "description": ` + apiDescription + `}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/workflows", payload), rec)

	require.NoError(t, h.LoadWorkflow(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "wf-1", body["workflow_id"])
	assert.Equal(t, "api", body["mode"])
}

func TestLoadWorkflowRequiresFields(t *testing.T) {
	f := newFixture(t)
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/workflows", `{"workflow_id": ""}`), rec)

	require.NoError(t, h.LoadWorkflow(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadWorkflowRejectsInvalidDescription(t *testing.T) {
	f := newFixture(t)
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	payload := `{"workflow_id": "wf-bad", "description": {"nodes": [{"id": "x", "type": "no-such-type", "data": {}}], "edges": []}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/workflows", payload), rec)

	require.NoError(t, h.LoadWorkflow(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "no-such-type")
}

func TestRunWorkflowEndpoint(t *testing.T) {
	f := newFixture(t)
	loadWorkflow(t, f, "wf-run")
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/workflows/wf-run/run", `{"q": "hello"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("wf-run")

	require.NoError(t, h.RunWorkflow(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "wf-run", body["workflow_id"])
	data := body["data"].(map[string]interface{})
	assert.Contains(t, data, "response")
}

func TestGetWorkflowNotFound(t *testing.T) {
	f := newFixture(t)
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/workflows/ghost", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	require.NoError(t, h.GetWorkflow(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteWorkflowEndpoint(t *testing.T) {
	f := newFixture(t)
	loadWorkflow(t, f, "wf-del")
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/v1/workflows/wf-del", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("wf-del")

	require.NoError(t, h.DeleteWorkflow(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.engine.List())
}

func TestPatchWorkflowEndpoint(t *testing.T) {
	f := newFixture(t)
	loadWorkflow(t, f, "wf-patch")
	h := NewWorkflowHandler(f.engine, testLogger{})
	e := echo.New()

	patch := `[{"op": "add", "path": "/nodes/1/data/form", "value": {"body": {"ok": true}}}]`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/api/v1/workflows/wf-patch/description", patch), rec)
	c.SetParamNames("id")
	c.SetParamValues("wf-patch")

	require.NoError(t, h.PatchWorkflow(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookDeliverWithoutListeners(t *testing.T) {
	f := newFixture(t)
	h := NewWebhookHandler(f.pubsub, testLogger{})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/webhooks/wh-1", `{"orderId": "42"}`), rec)
	c.SetParamNames("webhook_id")
	c.SetParamValues("wh-1")

	require.NoError(t, h.Deliver(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "wh-1", body["webhook_id"])
	assert.EqualValues(t, 0, body["receivers"])
}

func TestWebhookDeliverReachesSubscriber(t *testing.T) {
	f := newFixture(t)
	h := NewWebhookHandler(f.pubsub, testLogger{})
	e := echo.New()

	sub, err := f.pubsub.Subscribe(context.Background(), nodes.WebhookChannel("wh-2"))
	require.NoError(t, err)
	defer sub.Close()

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/v1/webhooks/wh-2?source=test", `{"orderId": "42"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("webhook_id")
	c.SetParamValues("wh-2")

	require.NoError(t, h.Deliver(c))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["receivers"])

	select {
	case raw := <-sub.Messages():
		var delivery map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &delivery))
		assert.Equal(t, "POST", delivery["method"])
		body := delivery["body"].(map[string]interface{})
		assert.Equal(t, "42", body["orderId"])
		params := delivery["query_params"].(map[string]interface{})
		assert.Equal(t, "test", params["source"])
	case <-time.After(2 * time.Second):
		t.Fatal("delivery not received")
	}
}

func TestExecuteNodeEndpoint(t *testing.T) {
	f := newFixture(t)
	h := NewNodeHandler(f.engine, testLogger{})
	e := echo.New()

	payload := `{
		"workflow_id": "wf-dev",
		"node": {"id": "tick", "type": "interval-producer", "data": {"form": {"interval": "1ms"}}},
		"upstream": []
	}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/nodes/execute", payload), rec)

	require.NoError(t, h.ExecuteNode(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "tick", body["node_id"])
	data := body["data"].(map[string]interface{})
	assert.Contains(t, data, "interval")
}

func TestExecuteNodeRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	h := NewNodeHandler(f.engine, testLogger{})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/nodes/execute", `{"workflow_id": "wf-dev"}`), rec)

	require.NoError(t, h.ExecuteNode(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
