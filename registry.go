package beanpod

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Constructor builds a component instance from its resolved dependencies.
// Any error it returns is handed to the caller of GetBean unchanged.
//
// A constructor must not resolve beans from the container it is registered
// in. A singleton constructor runs while its type's construction gate is
// held, so resolving its own type, or a singleton that resolves it back,
// deadlocks. Declare such dependencies as Params, or capture a Lazy and call
// Get after construction has returned.
type Constructor func(args Args) (any, error)

// Component describes a constructible type: its identifier, its declared
// dependencies in declaration order, and its constructor.
type Component struct {
	Type      reflect.Type
	Params    []Param
	Construct Constructor
}

func (c Component) validate() error {
	if c.Type == nil {
		return newComponentError(nil, "type cannot be nil")
	}

	if c.Construct == nil {
		return newComponentError(c.Type, "constructor cannot be nil")
	}

	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if p.Name == "" {
			return newComponentError(c.Type, "parameter name cannot be empty")
		}
		if p.Field && p.Type == nil {
			return newComponentError(c.Type, "field "+p.Name+" needs a type")
		}
		if seen[p.Name] {
			return newComponentError(c.Type, "duplicate parameter "+p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}

// published boxes a singleton instance so that a nil interface value can
// still be told apart from "not yet constructed".
type published struct {
	value any
}

// descriptor is the registry record of one component.
type descriptor struct {
	component  Component
	deps       DependencyMap // derived from component.Params at registration
	scope      Scope
	primary    bool
	stereotype Stereotype
	metadata   map[string]string

	instance atomic.Pointer[published]
	gate     sync.Mutex // held while constructing a singleton
}

func newDescriptor(comp Component, deps DependencyMap, cfg registerConfig) *descriptor {
	return &descriptor{
		component:  comp,
		deps:       deps,
		scope:      cfg.scope,
		primary:    cfg.primary,
		stereotype: cfg.stereotype,
		metadata:   cfg.metadata,
	}
}

// load returns the published singleton instance, if any.
func (d *descriptor) load() (any, bool) {
	p := d.instance.Load()
	if p == nil {
		return nil, false
	}

	return p.value, true
}

// publish stores the singleton instance. Callers hold d.gate and have checked
// that nothing is published yet.
func (d *descriptor) publish(v any) {
	d.instance.Store(&published{value: v})
}

// reset drops the published instance.
func (d *descriptor) reset() {
	d.instance.Store(nil)
}

// registry is the table of known components. Registration order is kept so
// iteration is stable.
type registry struct {
	descriptors map[reflect.Type]*descriptor
	order       []reflect.Type
	mu          sync.RWMutex
}

func newRegistry() *registry {
	return &registry{
		descriptors: make(map[reflect.Type]*descriptor),
	}
}

// put inserts or replaces the descriptor for d's type. A replaced type keeps
// its original position in the iteration order.
func (r *registry) put(d *descriptor) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := d.component.Type
	if _, replaced = r.descriptors[t]; !replaced {
		r.order = append(r.order, t)
	}
	r.descriptors[t] = d

	return replaced
}

// lookup retrieves the descriptor of t.
func (r *registry) lookup(t reflect.Type) (*descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[t]
	return d, ok
}

// has checks if t is registered.
func (r *registry) has(t reflect.Type) bool {
	_, ok := r.lookup(t)
	return ok
}

// params returns the declared parameters of t.
func (r *registry) params(t reflect.Type) ([]Param, bool) {
	d, ok := r.lookup(t)
	if !ok {
		return nil, false
	}
	return d.component.Params, true
}

// snapshot returns every descriptor in registration order.
func (r *registry) snapshot() []*descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.descriptors[t])
	}

	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// clear forgets every descriptor.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.descriptors = make(map[reflect.Type]*descriptor)
	r.order = nil
}
