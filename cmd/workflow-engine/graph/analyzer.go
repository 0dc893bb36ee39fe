package graph

import "github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"

// Analyzer provides pure queries over a frozen graph. It never mutates.
type Analyzer struct {
	g *Graph
}

// NewAnalyzer wraps a graph for analysis
func NewAnalyzer(g *Graph) *Analyzer {
	return &Analyzer{g: g}
}

// Producers returns the producer-variant nodes in insertion order
func (a *Analyzer) Producers() []*Node {
	var producers []*Node
	for _, n := range a.g.Nodes() {
		if n.Instance.Variant() == node.VariantProducer {
			producers = append(producers, n)
		}
	}
	return producers
}

// EntryIDs returns the ids of nodes with no incoming edges
func (a *Analyzer) EntryIDs() []string {
	hasIncoming := make(map[string]bool)
	for _, n := range a.g.Nodes() {
		for _, targets := range n.Next() {
			for _, t := range targets {
				hasIncoming[t.ID] = true
			}
		}
	}

	var entries []string
	for _, id := range a.g.IDs() {
		if !hasIncoming[id] {
			entries = append(entries, id)
		}
	}
	return entries
}

// Terminators returns the non-blocking variant nodes in insertion order
func (a *Analyzer) Terminators() []*Node {
	var terminators []*Node
	for _, n := range a.g.Nodes() {
		if n.Instance.Variant() == node.VariantNonBlocking {
			terminators = append(terminators, n)
		}
	}
	return terminators
}

// Chain collects the subgraph reachable from a start node via any branch,
// breadth-first, including the start node itself
func (a *Analyzer) Chain(startID string) []*Node {
	start, ok := a.g.Lookup(startID)
	if !ok {
		return nil
	}

	visited := map[string]bool{start.ID: true}
	chain := []*Node{start}
	queue := []*Node{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, key := range current.Branches() {
			for _, next := range current.Next()[key] {
				if visited[next.ID] {
					continue
				}
				visited[next.ID] = true
				chain = append(chain, next)
				queue = append(queue, next)
			}
		}
	}
	return chain
}
