package beanpod

import "reflect"

// BeanInfo contains diagnostic information about a registered component.
type BeanInfo struct {
	Type         reflect.Type
	Scope        Scope
	Primary      bool
	Stereotype   Stereotype
	Dependencies DependencyMap
	Metadata     map[string]string

	// Instantiated reports whether a singleton instance is published.
	// Always false for prototypes.
	Instantiated bool
}

// Inspect returns diagnostic information about t.
func (c *Container) Inspect(t reflect.Type) (BeanInfo, bool) {
	d, ok := c.registry.lookup(t)
	if !ok {
		return BeanInfo{Type: t}, false
	}

	return c.info(d), true
}

func (c *Container) info(d *descriptor) BeanInfo {
	_, instantiated := d.load()

	metadata := make(map[string]string, len(d.metadata))
	for k, v := range d.metadata {
		metadata[k] = v
	}

	return BeanInfo{
		Type:         d.component.Type,
		Scope:        d.scope,
		Primary:      d.primary,
		Stereotype:   d.stereotype,
		Dependencies: d.deps,
		Metadata:     metadata,
		Instantiated: d.scope == Singleton && instantiated,
	}
}

// Beans returns diagnostic information about every registered component, in
// registration order.
func (c *Container) Beans() []BeanInfo {
	descs := c.registry.snapshot()
	infos := make([]BeanInfo, len(descs))
	for i, d := range descs {
		infos[i] = c.info(d)
	}
	return infos
}

// BeanQuery defines criteria for querying components.
type BeanQuery struct {
	// Scope filters by scope. nil matches all scopes.
	Scope *Scope

	// Stereotype filters by stereotype.
	// Empty string matches all stereotypes.
	Stereotype Stereotype

	// Primary filters by the primary flag. nil matches both.
	Primary *bool

	// Metadata filters by metadata key-value pairs.
	// All specified metadata must match for a component to be included.
	Metadata map[string]string

	// Instantiated filters by whether a singleton instance is published.
	// nil matches all components.
	Instantiated *bool
}

// Query returns detailed information about components matching the query
// criteria, in registration order.
//
// Example:
//
//	// Find all singleton repositories
//	scope := beanpod.Singleton
//	results := beanpod.Query(c, beanpod.BeanQuery{
//	    Scope:      &scope,
//	    Stereotype: beanpod.StereotypeRepository,
//	})
func Query(c *Container, query BeanQuery) []BeanInfo {
	var results []BeanInfo

	for _, info := range c.Beans() {
		if query.Scope != nil && info.Scope != *query.Scope {
			continue
		}

		if query.Stereotype != "" && info.Stereotype != query.Stereotype {
			continue
		}

		if query.Primary != nil && info.Primary != *query.Primary {
			continue
		}

		if len(query.Metadata) > 0 {
			allMatch := true
			for key, value := range query.Metadata {
				if info.Metadata[key] != value {
					allMatch = false
					break
				}
			}
			if !allMatch {
				continue
			}
		}

		if query.Instantiated != nil && info.Instantiated != *query.Instantiated {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryTypes returns the types of components matching the query criteria.
func QueryTypes(c *Container, query BeanQuery) []reflect.Type {
	results := Query(c, query)
	types := make([]reflect.Type, len(results))
	for i, info := range results {
		types[i] = info.Type
	}
	return types
}

// FindByStereotype returns all components with a specific stereotype.
func FindByStereotype(c *Container, stereotype Stereotype) []BeanInfo {
	return Query(c, BeanQuery{Stereotype: stereotype})
}

// FindByScope returns all components with a specific scope.
func FindByScope(c *Container, scope Scope) []BeanInfo {
	return Query(c, BeanQuery{Scope: &scope})
}
