package nodes

import (
	"context"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// debug logs its input and passes it through unchanged
type debug struct {
	node.Base
	deps Deps
}

func newDebug(cfg *node.Config, deps Deps) (node.Node, error) {
	return &debug{Base: node.NewBase(cfg), deps: deps}, nil
}

func (d *debug) Identifier() string { return "debug" }

func (d *debug) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	d.deps.Logger.Info("debug node",
		"node_id", d.ID(),
		"source", in.ID,
		"data", in.Data,
		"metadata", in.Metadata)
	return in.Clone(), nil
}
