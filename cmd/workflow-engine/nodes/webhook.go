package nodes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/common/store"
)

// WebhookChannel is the pub/sub channel deliveries for a webhook id are
// published on
func WebhookChannel(webhookID string) string {
	return "webhook:" + webhookID
}

// webhookProducer holds an open pub/sub subscription and emits one
// output per delivery. Deliveries published while no producer is
// subscribed are lost.
type webhookProducer struct {
	node.Base
	deps Deps

	webhookID string
	sub       *store.Subscription
}

type webhookForm struct {
	WebhookID string `json:"webhook_id" validate:"required"`
}

func newWebhookProducer(cfg *node.Config, deps Deps) (node.Node, error) {
	if deps.PubSub == nil {
		return nil, fmt.Errorf("webhook-producer requires a pub/sub store")
	}
	return &webhookProducer{Base: node.NewBase(cfg), deps: deps}, nil
}

func (p *webhookProducer) Identifier() string    { return "webhook-producer" }
func (p *webhookProducer) Variant() node.Variant { return node.VariantProducer }

func (p *webhookProducer) IsReady() *node.Readiness {
	var form webhookForm
	return node.CheckForm(p.Config().Form(), &form)
}

func (p *webhookProducer) Setup(ctx context.Context) error {
	var form webhookForm
	if err := node.DecodeForm(p.Config().Form(), &form); err != nil {
		return err
	}
	p.webhookID = form.WebhookID

	sub, err := p.deps.PubSub.Subscribe(ctx, WebhookChannel(p.webhookID))
	if err != nil {
		return fmt.Errorf("failed to subscribe to webhook %s: %w", p.webhookID, err)
	}
	p.sub = sub
	p.deps.Logger.Info("webhook producer listening", "node_id", p.ID(), "webhook_id", p.webhookID)
	return nil
}

func (p *webhookProducer) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	select {
	case payload, ok := <-p.sub.Messages():
		if !ok {
			return node.NewSentinel(p.ID()), nil
		}

		var delivery map[string]interface{}
		if err := json.Unmarshal(payload, &delivery); err != nil {
			return nil, fmt.Errorf("malformed webhook delivery: %w", err)
		}

		out := node.NewOutput(p.ID())
		out.Data[node.UniqueOutputKey(out, "webhook")] = map[string]interface{}{
			"webhook_id": p.webhookID,
			"data":       delivery,
		}
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *webhookProducer) Cleanup(ctx context.Context, in *node.Output) error {
	if p.sub == nil {
		return nil
	}
	if err := p.sub.Close(); err != nil {
		return fmt.Errorf("failed to close webhook subscription: %w", err)
	}
	p.sub = nil
	return nil
}
