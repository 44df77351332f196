package beanpod

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Dependency is one entry of a DependencyMap.
type Dependency struct {
	Name  string
	Type  reflect.Type
	Field bool
}

// DependencyMap is the ordered list of typed dependencies of a component.
// It is shared between callers and must not be modified.
type DependencyMap []Dependency

// Types returns the dependency types in declaration order.
func (m DependencyMap) Types() []reflect.Type {
	types := make([]reflect.Type, len(m))
	for i, d := range m {
		types[i] = d.Type
	}
	return types
}

// DependencyAnalyzer derives DependencyMaps from component parameter lists and
// memoizes them per type.
type DependencyAnalyzer struct {
	source   func(reflect.Type) ([]Param, bool)
	cache    map[reflect.Type]DependencyMap
	analyses atomic.Uint64
	mu       sync.RWMutex
}

// NewDependencyAnalyzer creates an analyzer reading parameter lists from source.
func NewDependencyAnalyzer(source func(reflect.Type) ([]Param, bool)) *DependencyAnalyzer {
	return &DependencyAnalyzer{
		source: source,
		cache:  make(map[reflect.Type]DependencyMap),
	}
}

// Analyze returns the DependencyMap of t. The parameter list is inspected on
// the first call only; untyped parameters are left out. Unknown types yield nil
// and are not cached.
func (a *DependencyAnalyzer) Analyze(t reflect.Type) DependencyMap {
	a.mu.RLock()
	deps, ok := a.cache[t]
	a.mu.RUnlock()

	if ok {
		return deps
	}

	params, ok := a.source(t)
	if !ok {
		return nil
	}

	deps = deriveDependencies(params)

	a.mu.Lock()
	defer a.mu.Unlock()

	// Another caller may have finished first; keep the entry it stored.
	if existing, ok := a.cache[t]; ok {
		return existing
	}

	a.cache[t] = deps
	a.analyses.Add(1)

	return deps
}

// store derives the DependencyMap of params and makes it the entry of t,
// replacing any previous entry.
func (a *DependencyAnalyzer) store(t reflect.Type, params []Param) DependencyMap {
	deps := deriveDependencies(params)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cache[t] = deps
	a.analyses.Add(1)

	return deps
}

// deriveDependencies lists the typed parameters in declaration order.
func deriveDependencies(params []Param) DependencyMap {
	deps := make(DependencyMap, 0, len(params))
	for _, p := range params {
		if p.Type == nil {
			continue
		}
		deps = append(deps, Dependency{Name: p.Name, Type: p.Type, Field: p.Field})
	}
	return deps
}

// Cached reports whether t has a memoized DependencyMap.
func (a *DependencyAnalyzer) Cached(t reflect.Type) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.cache[t]
	return ok
}

// Analyses returns how many DependencyMaps have been computed since creation.
func (a *DependencyAnalyzer) Analyses() uint64 {
	return a.analyses.Load()
}

// Invalidate drops the cached entry of t.
func (a *DependencyAnalyzer) Invalidate(t reflect.Type) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.cache, t)
}

// InvalidateAll drops every cached entry.
func (a *DependencyAnalyzer) InvalidateAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[reflect.Type]DependencyMap)
}
