package nodes

import (
	"context"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// respond terminates a request/response walk: it marks its output as
// the final response and the walk does not descend past it
type respond struct {
	node.Base
	deps Deps
}

type respondForm struct {
	Body map[string]interface{} `json:"body"`
}

func newRespond(cfg *node.Config, deps Deps) (node.Node, error) {
	return &respond{Base: node.NewBase(cfg), deps: deps}, nil
}

func (r *respond) Identifier() string           { return "respond" }
func (r *respond) Variant() node.Variant        { return node.VariantNonBlocking }
func (r *respond) Responds() bool               { return true }
func (r *respond) ContinueAfterExecution() bool { return false }

func (r *respond) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	var form respondForm
	if err := node.DecodeForm(r.Form(), &form); err != nil {
		return nil, err
	}

	out := in.Clone()
	out.ID = r.ID()
	out.Metadata[node.ResponseReadyMetadataKey] = true

	// an explicit body wins; otherwise the accumulated data is the response
	if form.Body != nil {
		out.Data[node.UniqueOutputKey(out, "response")] = form.Body
	} else {
		out.Data[node.UniqueOutputKey(out, "response")] = in.Data
	}
	return out, nil
}
