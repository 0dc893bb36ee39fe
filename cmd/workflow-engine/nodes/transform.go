package nodes

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// transform evaluates a map of named expressions over the incoming data
// and merges the results under its output key
type transform struct {
	node.Base
	deps Deps
}

type transformForm struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

func newTransform(cfg *node.Config, deps Deps) (node.Node, error) {
	return &transform{Base: node.NewBase(cfg), deps: deps}, nil
}

func (t *transform) Identifier() string { return "transform" }

func (t *transform) IsReady() *node.Readiness {
	var form transformForm
	return node.CheckForm(t.Config().Form(), &form)
}

func (t *transform) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	var form transformForm
	if err := node.DecodeForm(t.Form(), &form); err != nil {
		return nil, err
	}

	env := map[string]interface{}{"data": in.Data}
	fields := make(map[string]interface{}, len(form.Fields))
	for name, expression := range form.Fields {
		value, err := expr.Eval(expression, env)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = value
	}

	out := in.Clone()
	out.ID = t.ID()
	out.Data[node.UniqueOutputKey(out, "transform")] = fields
	return out, nil
}
