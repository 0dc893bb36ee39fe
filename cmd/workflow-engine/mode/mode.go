package mode

import (
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
)

// Mode classifies how a workflow executes
type Mode string

const (
	// Production runs long-lived loops, one per producer
	Production Mode = "production"
	// API runs a one-shot request/response walk from the entry node
	API Mode = "api"
	// SingleNode invokes exactly one node
	SingleNode Mode = "single_node"
)

// Valid reports whether a mode string names a known mode
func Valid(m Mode) bool {
	switch m {
	case Production, API, SingleNode:
		return true
	}
	return false
}

// Detect classifies a workflow. Detection order: explicit field in the
// description, presence of a producer, node count, fallback to API.
func Detect(desc *graph.Description, g *graph.Graph) Mode {
	if desc != nil && desc.WorkflowType != "" {
		if m := Mode(desc.WorkflowType); Valid(m) {
			return m
		}
	}

	if len(graph.NewAnalyzer(g).Producers()) > 0 {
		return Production
	}

	if g.Len() == 1 {
		return SingleNode
	}

	return API
}
