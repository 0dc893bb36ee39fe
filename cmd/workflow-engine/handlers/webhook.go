package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/nodes"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
)

// WebhookHandler accepts external deliveries and fans them out to
// webhook producers over pub/sub
type WebhookHandler struct {
	pubsub *store.PubSubStore
	log    Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(pubsub *store.PubSubStore, log Logger) *WebhookHandler {
	return &WebhookHandler{
		pubsub: pubsub,
		log:    log,
	}
}

// Deliver publishes a webhook delivery. The caller always gets 202:
// delivery is fire-and-forget and a missing subscriber is not the
// caller's problem.
// POST /api/v1/webhooks/:webhook_id
func (h *WebhookHandler) Deliver(c echo.Context) error {
	webhookID := c.Param("webhook_id")
	req := c.Request()

	var body interface{}
	raw, err := io.ReadAll(req.Body)
	if err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = string(raw)
		}
	}

	headers := make(map[string]string, len(req.Header))
	for name := range req.Header {
		headers[name] = req.Header.Get(name)
	}
	queryParams := make(map[string]string)
	for name, values := range c.QueryParams() {
		if len(values) > 0 {
			queryParams[name] = values[0]
		}
	}

	delivery, err := json.Marshal(map[string]interface{}{
		"body":         body,
		"headers":      headers,
		"method":       req.Method,
		"query_params": queryParams,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("failed to encode delivery"))
	}

	receivers, err := h.pubsub.Publish(req.Context(), nodes.WebhookChannel(webhookID), delivery)
	if err != nil {
		h.log.Error("webhook publish failed", "webhook_id", webhookID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("delivery failed"))
	}
	if receivers == 0 {
		h.log.Warn("webhook delivered with no listeners", "webhook_id", webhookID)
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"webhook_id": webhookID,
		"receivers":  receivers,
	})
}
