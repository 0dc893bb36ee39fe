package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/engine"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// NodeHandler runs single nodes in isolation for development
type NodeHandler struct {
	engine *engine.Engine
	log    Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(eng *engine.Engine, log Logger) *NodeHandler {
	return &NodeHandler{
		engine: eng,
		log:    log,
	}
}

type executeNodeRequest struct {
	WorkflowID string      `json:"workflow_id"`
	Node       node.Config `json:"node"`
	Upstream   []string    `json:"upstream"`
}

// ExecuteNode runs one node with its upstream outputs resolved from the
// cache, and caches the result for downstream runs
// POST /api/v1/nodes/execute
func (h *NodeHandler) ExecuteNode(c echo.Context) error {
	var req executeNodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}
	if req.WorkflowID == "" || req.Node.ID == "" || req.Node.Type == "" {
		return c.JSON(http.StatusBadRequest, errorBody("workflow_id, node.id and node.type are required"))
	}

	out, err := h.engine.ExecuteNode(c.Request().Context(), req.WorkflowID, &req.Node, req.Upstream)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workflow_id": req.WorkflowID,
		"node_id":     req.Node.ID,
		"data":        out.Data,
		"metadata":    out.Metadata,
	})
}
