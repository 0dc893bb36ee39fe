package node

import (
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownType is returned when a config names a type with no
// registered factory
var ErrUnknownType = fmt.Errorf("unknown node type")

// Factory builds a node instance from its descriptor
type Factory func(cfg *Config) (Node, error)

// Registry maps node type identifiers to factories. Built-in types are
// registered at startup; the set is open for extension.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under a type identifier
func (r *Registry) Register(identifier string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[identifier]; exists {
		return fmt.Errorf("node type %q already registered", identifier)
	}
	r.factories[identifier] = factory
	return nil
}

// Create instantiates a node from its descriptor
func (r *Registry) Create(cfg *Config) (Node, error) {
	r.mu.RLock()
	factory, exists := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("node %s: %w: %s", cfg.ID, ErrUnknownType, cfg.Type)
	}
	n, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to instantiate %s: %w", cfg.ID, cfg.Type, err)
	}
	return n, nil
}

// Identifiers returns the registered type tags in sorted order
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
