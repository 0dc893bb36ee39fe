package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/engine"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// Logger interface for handler logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// WorkflowHandler handles workflow lifecycle requests
type WorkflowHandler struct {
	engine *engine.Engine
	log    Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(eng *engine.Engine, log Logger) *WorkflowHandler {
	return &WorkflowHandler{
		engine: eng,
		log:    log,
	}
}

type loadWorkflowRequest struct {
	WorkflowID  string          `json:"workflow_id"`
	Description json.RawMessage `json:"description"`
}

// LoadWorkflow loads and prepares a workflow from its description
// POST /api/v1/workflows
func (h *WorkflowHandler) LoadWorkflow(c echo.Context) error {
	var req loadWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}
	if req.WorkflowID == "" || len(req.Description) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("workflow_id and description are required"))
	}

	if err := h.engine.Load(c.Request().Context(), req.WorkflowID, req.Description); err != nil {
		h.log.Warn("workflow load rejected", "workflow_id", req.WorkflowID, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
	}

	status, _ := h.engine.Status(req.WorkflowID)
	return c.JSON(http.StatusCreated, status)
}

// ListWorkflows lists the loaded workflow ids
// GET /api/v1/workflows
func (h *WorkflowHandler) ListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workflows": h.engine.List(),
	})
}

// GetWorkflow reports one workflow's status
// GET /api/v1/workflows/:id
func (h *WorkflowHandler) GetWorkflow(c echo.Context) error {
	status, err := h.engine.Status(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, status)
}

// GetDescription returns the raw description a workflow was loaded from
// GET /api/v1/workflows/:id/description
func (h *WorkflowHandler) GetDescription(c echo.Context) error {
	raw, err := h.engine.Description(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// StartWorkflow starts a loaded workflow in the background
// POST /api/v1/workflows/:id/start
func (h *WorkflowHandler) StartWorkflow(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.Start(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusConflict, errorBody(err.Error()))
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"workflow_id": id,
		"status":      "started",
	})
}

// StopWorkflow stops a running workflow; ?force=true interrupts it
// POST /api/v1/workflows/:id/stop
func (h *WorkflowHandler) StopWorkflow(c echo.Context) error {
	id := c.Param("id")
	force := c.QueryParam("force") == "true"

	var err error
	if force {
		err = h.engine.ForceStop(c.Request().Context(), id)
	} else {
		err = h.engine.Stop(c.Request().Context(), id)
	}
	if err != nil {
		return c.JSON(http.StatusConflict, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workflow_id": id,
		"status":      "stopped",
		"forced":      force,
	})
}

// RunWorkflow executes a workflow synchronously and returns its
// response output. Meant for api and single node workflows.
// POST /api/v1/workflows/:id/run
func (h *WorkflowHandler) RunWorkflow(c echo.Context) error {
	id := c.Param("id")

	trigger := node.NewOutput("request")
	raw, err := io.ReadAll(c.Request().Body)
	if err == nil && len(raw) > 0 {
		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
		}
		trigger.Data["request"] = body
	}

	out, err := h.engine.Run(c.Request().Context(), id, trigger)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
	}
	if out == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"workflow_id": id})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workflow_id": id,
		"data":        out.Data,
		"metadata":    out.Metadata,
	})
}

// PatchWorkflow applies a JSON Patch to a stopped workflow's description
// PATCH /api/v1/workflows/:id/description
func (h *WorkflowHandler) PatchWorkflow(c echo.Context) error {
	id := c.Param("id")
	patch, err := io.ReadAll(c.Request().Body)
	if err != nil || len(patch) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("patch body is required"))
	}

	if err := h.engine.PatchDescription(c.Request().Context(), id, patch); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
	}
	status, _ := h.engine.Status(id)
	return c.JSON(http.StatusOK, status)
}

// DeleteWorkflow stops and unloads a workflow
// DELETE /api/v1/workflows/:id
func (h *WorkflowHandler) DeleteWorkflow(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.Unload(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return c.NoContent(http.StatusNoContent)
}

func errorBody(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}
