package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// httpRequest performs an outbound HTTP call. It prefers the worker
// pool so a slow endpoint does not stall cooperative iterations.
type httpRequest struct {
	node.Base
	deps Deps
}

type httpRequestForm struct {
	URL     string                 `json:"url" validate:"required"`
	Method  string                 `json:"method"`
	Headers map[string]string      `json:"headers"`
	Body    map[string]interface{} `json:"body"`
}

func newHTTPRequest(cfg *node.Config, deps Deps) (node.Node, error) {
	return &httpRequest{Base: node.NewBase(cfg), deps: deps}, nil
}

func (h *httpRequest) Identifier() string           { return "http-request" }
func (h *httpRequest) PreferredPool() node.PoolKind { return node.PoolWorker }

func (h *httpRequest) IsReady() *node.Readiness {
	var form httpRequestForm
	return node.CheckForm(h.Config().Form(), &form)
}

func (h *httpRequest) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	var form httpRequestForm
	if err := node.DecodeForm(h.Form(), &form); err != nil {
		return nil, err
	}
	method := strings.ToUpper(form.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if form.Body != nil {
		encoded, err := json.Marshal(form.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, form.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if form.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range form.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.deps.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", form.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", form.URL, err)
	}

	// keep JSON responses structured, fall back to the raw text
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		decoded = string(raw)
	}

	out := in.Clone()
	out.ID = h.ID()
	out.Data[node.UniqueOutputKey(out, "http_request")] = map[string]interface{}{
		"status_code": resp.StatusCode,
		"body":        decoded,
	}
	h.deps.Logger.Debug("http request completed",
		"node_id", h.ID(),
		"url", form.URL,
		"status", resp.StatusCode)
	return out, nil
}
