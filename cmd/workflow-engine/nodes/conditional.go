package nodes

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// conditional evaluates a CEL expression over the incoming data and
// routes to the yes or no branch. The input passes through with the
// decision merged in.
type conditional struct {
	node.ConditionalBase
	deps Deps
}

type conditionalForm struct {
	Expression string `json:"expression" validate:"required"`
}

func newConditional(cfg *node.Config, deps Deps) (node.Node, error) {
	return &conditional{ConditionalBase: node.NewConditionalBase(cfg), deps: deps}, nil
}

func (c *conditional) Identifier() string { return "conditional" }

func (c *conditional) IsReady() *node.Readiness {
	var form conditionalForm
	return node.CheckForm(c.Config().Form(), &form)
}

func (c *conditional) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	var form conditionalForm
	if err := node.DecodeForm(c.Form(), &form); err != nil {
		return nil, err
	}

	result, err := c.deps.Evaluator.Evaluate(form.Expression, in.Data)
	if err != nil {
		return nil, fmt.Errorf("condition evaluation failed: %w", err)
	}
	c.SetDecision(result)

	out := in.Clone()
	out.ID = c.ID()
	out.Data[node.UniqueOutputKey(out, "condition")] = map[string]interface{}{
		"expression": form.Expression,
		"result":     result,
	}
	c.deps.Logger.Debug("condition evaluated",
		"node_id", c.ID(),
		"result", result,
		"branch", string(c.SelectedBranch()))
	return out, nil
}
