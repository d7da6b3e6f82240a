package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the in-memory workflow catalog. Workflows are registered at
// startup and looked up per request; the registry is safe for concurrent
// use.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{workflows: make(map[string]*Definition)}
}

// Register validates def and adds it to the catalog. Invalid definitions
// are rejected so every registered workflow is guaranteed executable.
// Re-registering an ID replaces the previous definition.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return &DefinitionError{Message: "definition is nil"}
	}
	if _, err := Plan(def); err != nil {
		return fmt.Errorf("workflow %q failed validation: %w", def.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[def.ID] = def
	return nil
}

// Get returns the workflow with the given ID. The error wraps
// ErrWorkflowNotFound for unknown IDs.
func (r *Registry) Get(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return def, nil
}

// List returns the metadata of every registered workflow, sorted by ID.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.workflows))
	for _, def := range r.workflows {
		out = append(out, def.Metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Has reports whether a workflow with the given ID is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.workflows[id]
	return ok
}

// Len returns the number of registered workflows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}
