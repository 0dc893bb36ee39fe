package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// intervalProducer emits one output per fixed interval
type intervalProducer struct {
	node.Base
	deps Deps

	interval time.Duration
	tick     int64
}

type intervalForm struct {
	Interval string `json:"interval" validate:"required"`
}

func newIntervalProducer(cfg *node.Config, deps Deps) (node.Node, error) {
	return &intervalProducer{Base: node.NewBase(cfg), deps: deps}, nil
}

func (p *intervalProducer) Identifier() string    { return "interval-producer" }
func (p *intervalProducer) Variant() node.Variant { return node.VariantProducer }

func (p *intervalProducer) IsReady() *node.Readiness {
	var form intervalForm
	if r := node.CheckForm(p.Config().Form(), &form); !r.OK {
		return r
	}
	if _, err := time.ParseDuration(form.Interval); err != nil {
		return node.NotReady(map[string][]string{"interval": {err.Error()}})
	}
	return node.Ready()
}

func (p *intervalProducer) Setup(ctx context.Context) error {
	var form intervalForm
	if err := node.DecodeForm(p.Config().Form(), &form); err != nil {
		return err
	}
	interval, err := time.ParseDuration(form.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", form.Interval, err)
	}
	p.interval = interval
	return nil
}

func (p *intervalProducer) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	select {
	case <-time.After(p.interval):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.tick++
	out := node.NewOutput(p.ID())
	out.Data[node.UniqueOutputKey(out, "interval")] = map[string]interface{}{
		"tick":      p.tick,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	return out, nil
}

// cronProducer emits one output per cron schedule fire
type cronProducer struct {
	node.Base
	deps Deps

	schedule cron.Schedule
}

type cronForm struct {
	Schedule string `json:"schedule" validate:"required"`
}

func newCronProducer(cfg *node.Config, deps Deps) (node.Node, error) {
	return &cronProducer{Base: node.NewBase(cfg), deps: deps}, nil
}

func (p *cronProducer) Identifier() string    { return "cron-producer" }
func (p *cronProducer) Variant() node.Variant { return node.VariantProducer }

func (p *cronProducer) IsReady() *node.Readiness {
	var form cronForm
	if r := node.CheckForm(p.Config().Form(), &form); !r.OK {
		return r
	}
	if _, err := cron.ParseStandard(form.Schedule); err != nil {
		return node.NotReady(map[string][]string{"schedule": {err.Error()}})
	}
	return node.Ready()
}

func (p *cronProducer) Setup(ctx context.Context) error {
	var form cronForm
	if err := node.DecodeForm(p.Config().Form(), &form); err != nil {
		return err
	}
	schedule, err := cron.ParseStandard(form.Schedule)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", form.Schedule, err)
	}
	p.schedule = schedule
	return nil
}

func (p *cronProducer) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	now := time.Now()
	next := p.schedule.Next(now)

	select {
	case <-time.After(next.Sub(now)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	out := node.NewOutput(p.ID())
	out.Data[node.UniqueOutputKey(out, "cron")] = map[string]interface{}{
		"scheduled_for": next.UTC().Format(time.RFC3339),
		"fired_at":      time.Now().UTC().Format(time.RFC3339Nano),
	}
	return out, nil
}
