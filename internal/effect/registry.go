package effect

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownEffect   = errors.New("unknown effect")
	ErrDuplicateEffect = errors.New("effect already registered")
)

// Factory creates a fresh effect instance.
type Factory func() (Effect, error)

type entry struct {
	info    Info
	factory Factory
}

// Registry maps effect IDs to factories. It is safe for concurrent use:
// uploads register effects from the HTTP goroutines while the window
// lists them.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a factory under info.ID.
func (r *Registry) Register(info Info, f Factory) error {
	if info.ID == "" || f == nil {
		return fmt.Errorf("%w: empty id or factory", ErrUnknownEffect)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[info.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEffect, info.ID)
	}
	r.entries[info.ID] = entry{info: info, factory: f}
	r.order = append(r.order, info.ID)
	return nil
}

// Unregister removes id. Removing an unknown id is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// New creates an instance of effect id.
func (r *Registry) New(id string) (Effect, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, id)
	}
	return e.factory()
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// List returns registered effects in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].info)
	}
	return out
}
