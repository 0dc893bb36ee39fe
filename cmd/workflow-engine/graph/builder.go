package graph

import (
	"encoding/json"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// Description is the declarative form of a workflow: nodes plus edges,
// with an optional explicit workflow type
type Description struct {
	WorkflowType string        `json:"workflow_type,omitempty"`
	Nodes        []node.Config `json:"nodes"`
	Edges        []Edge        `json:"edges"`
}

// Edge connects two nodes; SourceHandle carries the raw branch label
// (nil means the default branch)
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle"`
}

// ParseDescription decodes a JSON workflow description
func ParseDescription(raw []byte) (*Description, error) {
	var desc Description
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("malformed workflow description: %w", err)
	}
	return &desc, nil
}

// Build materializes a graph from a description: every node is
// instantiated through the registry, every edge is normalized and
// connected. Fails fast naming the offending node id.
func Build(desc *Description, registry *node.Registry) (*Graph, error) {
	g := New()

	for i := range desc.Nodes {
		cfg := &desc.Nodes[i]
		instance, err := registry.Create(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph: %w", err)
		}
		if _, err := g.Add(cfg.ID, instance); err != nil {
			return nil, fmt.Errorf("failed to build graph: %w", err)
		}
	}

	for _, edge := range desc.Edges {
		key := NormalizeBranch(edge.SourceHandle)
		if err := g.Connect(edge.Source, edge.Target, key); err != nil {
			return nil, fmt.Errorf("failed to build graph: %w", err)
		}
	}

	return g, nil
}
