package graph

import (
	"fmt"
	"sort"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// Node pairs a stable id with a node instance and its outbound adjacency.
// The graph exclusively owns wrappers and instances; wrappers are created
// during build, mutated only by pre-processors, and frozen for a run.
type Node struct {
	ID       string
	Instance node.Node

	next map[node.BranchKey][]*Node
}

// Next returns the outbound adjacency keyed by branch. The returned map
// is the live adjacency; callers must not mutate it.
func (n *Node) Next() map[node.BranchKey][]*Node {
	return n.next
}

// Branches returns the available outbound branch keys in sorted order
func (n *Node) Branches() []node.BranchKey {
	keys := make([]node.BranchKey, 0, len(n.next))
	for k := range n.next {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Graph is a keyed mapping from node id to wrapper with adjacency helpers
type Graph struct {
	nodes map[string]*Node
	order []string // insertion order, stable enumeration
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// Add inserts a wrapper around the given instance
func (g *Graph) Add(id string, instance node.Node) (*Node, error) {
	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("duplicate node id: %s", id)
	}
	wrapper := &Node{
		ID:       id,
		Instance: instance,
		next:     make(map[node.BranchKey][]*Node),
	}
	g.nodes[id] = wrapper
	g.order = append(g.order, id)
	return wrapper, nil
}

// Connect adds an edge under a branch key. Both endpoints must already
// exist. Connecting twice under the same key appends, preserving
// insertion order, which becomes evaluation order.
func (g *Graph) Connect(fromID, toID string, key node.BranchKey) error {
	from, exists := g.nodes[fromID]
	if !exists {
		return fmt.Errorf("edge source not found: %s", fromID)
	}
	to, exists := g.nodes[toID]
	if !exists {
		return fmt.Errorf("edge target not found: %s", toID)
	}
	from.next[key] = append(from.next[key], to)
	return nil
}

// Lookup returns the wrapper for an id
func (g *Graph) Lookup(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns node ids in insertion order
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Nodes returns wrappers in insertion order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// UpstreamOf returns the wrappers with an edge into the given id,
// computed by reverse scan, in insertion order
func (g *Graph) UpstreamOf(id string) []*Node {
	var upstream []*Node
	for _, fromID := range g.order {
		from := g.nodes[fromID]
		for _, targets := range from.next {
			for _, target := range targets {
				if target.ID == id {
					upstream = append(upstream, from)
				}
			}
		}
	}
	return dedupe(upstream)
}

// Adjacency returns a serializable copy of the edge structure:
// node id -> branch key -> target ids in insertion order
func (g *Graph) Adjacency() map[string]map[string][]string {
	adj := make(map[string]map[string][]string, len(g.nodes))
	for _, id := range g.order {
		branches := make(map[string][]string)
		for key, targets := range g.nodes[id].next {
			ids := make([]string, 0, len(targets))
			for _, t := range targets {
				ids = append(ids, t.ID)
			}
			branches[string(key)] = ids
		}
		adj[id] = branches
	}
	return adj
}

func dedupe(nodes []*Node) []*Node {
	seen := make(map[string]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if !seen[n.ID] {
			seen[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}
