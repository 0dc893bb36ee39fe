// Package nodes holds the built-in node types. Each type is registered
// under a kebab-case identifier; external dependencies (stores, the
// condition evaluator, HTTP) are injected through Deps so instances stay
// testable.
package nodes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/condition"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
)

// Logger interface for node logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Deps carries the shared collaborators built-in nodes need
type Deps struct {
	Logger     Logger
	Queues     *store.QueueStore
	PubSub     *store.PubSubStore
	Evaluator  *condition.Evaluator
	HTTPClient *http.Client
	PopTimeout time.Duration
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (d *Deps) defaults() {
	if d.Logger == nil {
		d.Logger = noopLogger{}
	}
	if d.Evaluator == nil {
		d.Evaluator = condition.NewEvaluator()
	}
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if d.PopTimeout <= 0 {
		d.PopTimeout = 5 * time.Second
	}
}

// RegisterBuiltins registers every built-in node type
func RegisterBuiltins(r *node.Registry, deps Deps) error {
	deps.defaults()

	builtins := map[string]node.Factory{
		"interval-producer": func(cfg *node.Config) (node.Node, error) { return newIntervalProducer(cfg, deps) },
		"cron-producer":     func(cfg *node.Config) (node.Node, error) { return newCronProducer(cfg, deps) },
		"webhook-producer":  func(cfg *node.Config) (node.Node, error) { return newWebhookProducer(cfg, deps) },
		"queue-reader":      func(cfg *node.Config) (node.Node, error) { return newQueueReader(cfg, deps) },
		"queue-writer":      func(cfg *node.Config) (node.Node, error) { return newQueueWriter(cfg, deps) },
		"conditional":       func(cfg *node.Config) (node.Node, error) { return newConditional(cfg, deps) },
		"http-request":      func(cfg *node.Config) (node.Node, error) { return newHTTPRequest(cfg, deps) },
		"respond":           func(cfg *node.Config) (node.Node, error) { return newRespond(cfg, deps) },
		"transform":         func(cfg *node.Config) (node.Node, error) { return newTransform(cfg, deps) },
		"debug":             func(cfg *node.Config) (node.Node, error) { return newDebug(cfg, deps) },
	}

	for identifier, factory := range builtins {
		if err := r.Register(identifier, factory); err != nil {
			return fmt.Errorf("failed to register builtins: %w", err)
		}
	}
	return nil
}
