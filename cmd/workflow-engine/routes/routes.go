package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/handlers"
)

// Handlers bundles the handler set the route table wires up
type Handlers struct {
	Workflow *handlers.WorkflowHandler
	Webhook  *handlers.WebhookHandler
	Node     *handlers.NodeHandler
	State    *handlers.StateHandler
}

// Register registers all engine routes
func Register(e *echo.Echo, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "healthy"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	workflows := e.Group("/api/v1/workflows")
	{
		workflows.POST("", h.Workflow.LoadWorkflow)                    // POST   /api/v1/workflows
		workflows.GET("", h.Workflow.ListWorkflows)                    // GET    /api/v1/workflows
		workflows.GET("/:id", h.Workflow.GetWorkflow)                  // GET    /api/v1/workflows/{id}
		workflows.DELETE("/:id", h.Workflow.DeleteWorkflow)            // DELETE /api/v1/workflows/{id}
		workflows.GET("/:id/description", h.Workflow.GetDescription)   // GET    /api/v1/workflows/{id}/description
		workflows.PATCH("/:id/description", h.Workflow.PatchWorkflow)  // PATCH  /api/v1/workflows/{id}/description
		workflows.POST("/:id/start", h.Workflow.StartWorkflow)         // POST   /api/v1/workflows/{id}/start
		workflows.POST("/:id/stop", h.Workflow.StopWorkflow)           // POST   /api/v1/workflows/{id}/stop
		workflows.POST("/:id/run", h.Workflow.RunWorkflow)             // POST   /api/v1/workflows/{id}/run
		workflows.GET("/:id/state", h.State.GetState)                  // GET    /api/v1/workflows/{id}/state
		workflows.GET("/:id/state/stream", h.State.StreamState)        // GET    /api/v1/workflows/{id}/state/stream
	}

	e.POST("/api/v1/webhooks/:webhook_id", h.Webhook.Deliver)
	e.POST("/api/v1/nodes/execute", h.Node.ExecuteNode)
}
