package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/mode"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// NodeReadiness runs every node's structural config check and aggregates
// all failures into one error, one line per failing field
type NodeReadiness struct{}

func (NodeReadiness) Name() string       { return "node_readiness" }
func (NodeReadiness) Modes() []mode.Mode { return nil }
func (NodeReadiness) Priority() int      { return 10 }

func (NodeReadiness) Validate(ctx context.Context, t *Target) error {
	var lines []string
	for _, n := range t.Graph.Nodes() {
		r := n.Instance.IsReady()
		if r.OK {
			continue
		}
		fields := make([]string, 0, len(r.Errors))
		for field := range r.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			for _, msg := range r.Errors[field] {
				lines = append(lines, fmt.Sprintf("%s: %s: %s", n.ID, field, msg))
			}
		}
	}
	if len(lines) > 0 {
		return fmt.Errorf("nodes are not ready:\n%s", strings.Join(lines, "\n"))
	}
	return nil
}

// ProductionRules requires at least one producer to drive the loops and
// rejects responder nodes, which only make sense in request/response mode
type ProductionRules struct{}

func (ProductionRules) Name() string       { return "production_rules" }
func (ProductionRules) Modes() []mode.Mode { return []mode.Mode{mode.Production} }
func (ProductionRules) Priority() int      { return 20 }

func (ProductionRules) Validate(ctx context.Context, t *Target) error {
	analyzer := graph.NewAnalyzer(t.Graph)
	if len(analyzer.Producers()) == 0 {
		return fmt.Errorf("production workflow has no producer nodes")
	}
	for _, n := range t.Graph.Nodes() {
		if r, ok := n.Instance.(node.Responder); ok && r.Responds() {
			return fmt.Errorf("node %s: responder nodes are not allowed in production workflows", n.ID)
		}
	}
	return nil
}

// APIRules requires a non-empty producer-free graph with exactly one
// entry node to walk from
type APIRules struct{}

func (APIRules) Name() string       { return "api_rules" }
func (APIRules) Modes() []mode.Mode { return []mode.Mode{mode.API} }
func (APIRules) Priority() int      { return 20 }

func (APIRules) Validate(ctx context.Context, t *Target) error {
	if t.Graph.Len() == 0 {
		return fmt.Errorf("workflow has no nodes")
	}
	analyzer := graph.NewAnalyzer(t.Graph)
	if producers := analyzer.Producers(); len(producers) > 0 {
		return fmt.Errorf("node %s: producer nodes are not allowed in api workflows", producers[0].ID)
	}
	entries := analyzer.EntryIDs()
	if len(entries) != 1 {
		return fmt.Errorf("api workflow needs exactly one entry node, found %d", len(entries))
	}
	return nil
}

// SingleNodeRules requires exactly one node
type SingleNodeRules struct{}

func (SingleNodeRules) Name() string       { return "single_node_rules" }
func (SingleNodeRules) Modes() []mode.Mode { return []mode.Mode{mode.SingleNode} }
func (SingleNodeRules) Priority() int      { return 20 }

func (SingleNodeRules) Validate(ctx context.Context, t *Target) error {
	if t.Graph.Len() != 1 {
		return fmt.Errorf("single node workflow needs exactly one node, found %d", t.Graph.Len())
	}
	return nil
}
