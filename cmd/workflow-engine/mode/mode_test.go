package mode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

type stubNode struct {
	node.Base
	variant node.Variant
}

func (s *stubNode) Identifier() string { return "stub" }

func (s *stubNode) Variant() node.Variant {
	if s.variant != "" {
		return s.variant
	}
	return node.VariantBlocking
}

func (s *stubNode) Execute(ctx context.Context, in *node.Output) (*node.Output, error) {
	return node.NewOutput(s.ID()), nil
}

func buildGraph(t *testing.T, variants map[string]node.Variant) *graph.Graph {
	t.Helper()
	g := graph.New()
	for id, variant := range variants {
		_, err := g.Add(id, &stubNode{Base: node.NewBase(&node.Config{ID: id}), variant: variant})
		require.NoError(t, err)
	}
	return g
}

func TestDetectExplicitTypeWins(t *testing.T) {
	g := buildGraph(t, map[string]node.Variant{"p": node.VariantProducer})
	desc := &graph.Description{WorkflowType: "api"}

	assert.Equal(t, API, Detect(desc, g))
}

func TestDetectIgnoresUnknownExplicitType(t *testing.T) {
	g := buildGraph(t, map[string]node.Variant{"p": node.VariantProducer})
	desc := &graph.Description{WorkflowType: "warp-speed"}

	assert.Equal(t, Production, Detect(desc, g))
}

func TestDetectProducerMeansProduction(t *testing.T) {
	g := buildGraph(t, map[string]node.Variant{
		"p": node.VariantProducer,
		"w": node.VariantBlocking,
	})

	assert.Equal(t, Production, Detect(&graph.Description{}, g))
}

func TestDetectSingleNode(t *testing.T) {
	g := buildGraph(t, map[string]node.Variant{"only": node.VariantBlocking})

	assert.Equal(t, SingleNode, Detect(nil, g))
}

func TestDetectFallsBackToAPI(t *testing.T) {
	g := buildGraph(t, map[string]node.Variant{
		"a": node.VariantBlocking,
		"b": node.VariantBlocking,
	})

	assert.Equal(t, API, Detect(nil, g))
}

func TestDetectSingleProducerIsProduction(t *testing.T) {
	// a producer outranks the node-count rule
	g := buildGraph(t, map[string]node.Variant{"p": node.VariantProducer})

	assert.Equal(t, Production, Detect(nil, g))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Production))
	assert.True(t, Valid(API))
	assert.True(t, Valid(SingleNode))
	assert.False(t, Valid(Mode("batch")))
}
