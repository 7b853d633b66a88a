package cycle

import (
	"fmt"
	"sync"
)

// Registry holds controllers in the order they were registered.
// That order is the sweep order.
type Registry struct {
	controllers map[string]Controller
	order       []string
	mu          sync.RWMutex
}

// NewRegistry creates a new empty controller registry.
func NewRegistry() *Registry {
	return &Registry{
		controllers: make(map[string]Controller),
	}
}

// Register appends a controller.
// Returns an error if a controller with the same ID already exists.
func (r *Registry) Register(c Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.controllers[c.ID()]; exists {
		return fmt.Errorf("controller %s already registered", c.ID())
	}

	r.controllers[c.ID()] = c
	r.order = append(r.order, c.ID())
	return nil
}

// Get returns a controller by ID, or nil.
func (r *Registry) Get(id string) Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.controllers[id]
}

// All returns the controllers in sweep order.
func (r *Registry) All() []Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Controller, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.controllers[id])
	}

	return out
}

// IDs returns the controller IDs in sweep order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Count returns the number of registered controllers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
