package beanpod

import "reflect"

// DependencyGraph is a static view of the registry: each registered type with
// the types its dependencies resolve to. Building it never constructs anything.
type DependencyGraph struct {
	nodes map[reflect.Type][]reflect.Type
	order []reflect.Type // Preserve registration order
}

// NewDependencyGraph creates an empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[reflect.Type][]reflect.Type),
	}
}

// AddNode adds a node with the types it depends on.
func (g *DependencyGraph) AddNode(t reflect.Type, dependencies []reflect.Type) {
	if _, exists := g.nodes[t]; !exists {
		g.order = append(g.order, t)
	}
	g.nodes[t] = dependencies
}

// Types returns the nodes in registration order.
func (g *DependencyGraph) Types() []reflect.Type {
	return append([]reflect.Type(nil), g.order...)
}

// Dependencies returns the dependency types of t.
func (g *DependencyGraph) Dependencies(t reflect.Type) []reflect.Type {
	return g.nodes[t]
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(t reflect.Type) bool {
	_, ok := g.nodes[t]
	return ok
}

// TopologicalSort returns nodes in creation order: every type after the types
// it depends on. Nodes without dependencies keep their registration order.
// Returns an error if a circular dependency is found.
func (g *DependencyGraph) TopologicalSort() ([]reflect.Type, error) {
	visited := make(map[reflect.Type]bool)
	result := make([]reflect.Type, 0, len(g.nodes))

	for _, t := range g.order {
		if err := g.visit(t, visited, nil, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal. path is the current walk.
func (g *DependencyGraph) visit(t reflect.Type, visited map[reflect.Type]bool, path []reflect.Type, result *[]reflect.Type) error {
	if visited[t] {
		return nil
	}

	for i, p := range path {
		if p == t {
			return ErrCircularDependency(append(append([]reflect.Type(nil), path[i:]...), t))
		}
	}

	deps, ok := g.nodes[t]
	if !ok {
		// Not registered; reported by validation, not by sorting
		return nil
	}

	path = append(path, t)
	for _, dep := range deps {
		if err := g.visit(dep, visited, path, result); err != nil {
			return err
		}
	}

	visited[t] = true
	*result = append(*result, t)

	return nil
}

// Cycles returns every cycle reachable in the graph, each reported once, in
// registration order of the node where the walk found it. A cycle is listed
// from its first revisited node back to itself.
func (g *DependencyGraph) Cycles() [][]reflect.Type {
	const (
		white = iota
		grey
		black
	)

	state := make(map[reflect.Type]int, len(g.nodes))
	var (
		cycles [][]reflect.Type
		path   []reflect.Type
		walk   func(t reflect.Type)
	)

	walk = func(t reflect.Type) {
		state[t] = grey
		path = append(path, t)

		for _, dep := range g.nodes[t] {
			if !g.HasNode(dep) {
				continue
			}

			switch state[dep] {
			case grey:
				for i, p := range path {
					if p == dep {
						cycle := append(append([]reflect.Type(nil), path[i:]...), dep)
						cycles = append(cycles, cycle)
						break
					}
				}
			case white:
				walk(dep)
			}
		}

		path = path[:len(path)-1]
		state[t] = black
	}

	for _, t := range g.order {
		if state[t] == white {
			walk(t)
		}
	}

	return cycles
}
