package beanpod

import "reflect"

// Scope is the lifecycle policy of a component.
type Scope int

const (
	// Singleton components are constructed once and shared.
	Singleton Scope = iota
	// Prototype components are constructed on every request and owned by the caller.
	Prototype
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Prototype:
		return "prototype"
	default:
		return "unknown"
	}
}

// Stereotype labels the architectural role of a component. It has no effect on
// resolution and exists for inspection.
type Stereotype string

const (
	StereotypeComponent  Stereotype = "component"
	StereotypeService    Stereotype = "service"
	StereotypeRepository Stereotype = "repository"
	StereotypeController Stereotype = "controller"
)

// registerConfig is the merged result of all RegisterOptions.
type registerConfig struct {
	scope        Scope
	primary      bool
	capabilities []reflect.Type
	stereotype   Stereotype
	metadata     map[string]string
}

// RegisterOption is a configuration option for component registration.
type RegisterOption func(*registerConfig)

// AsSingleton makes the component a singleton (default).
func AsSingleton() RegisterOption {
	return func(c *registerConfig) {
		c.scope = Singleton
	}
}

// AsPrototype makes the component constructed on each resolve.
func AsPrototype() RegisterOption {
	return func(c *registerConfig) {
		c.scope = Prototype
	}
}

// WithScope sets the scope explicitly.
func WithScope(scope Scope) RegisterOption {
	return func(c *registerConfig) {
		c.scope = scope
	}
}

// Primary marks the component as the default implementation of its capabilities.
func Primary() RegisterOption {
	return func(c *registerConfig) {
		c.primary = true
	}
}

// As declares capabilities the component satisfies. Pass nil pointers to the
// interfaces:
//
//	c.Register(comp, beanpod.As((*Notifier)(nil), (*io.Closer)(nil)))
func As(capabilities ...any) RegisterOption {
	return func(c *registerConfig) {
		for _, capability := range capabilities {
			t := reflect.TypeOf(capability)
			if t == nil {
				continue
			}
			if t.Kind() == reflect.Ptr {
				t = t.Elem()
			}
			c.capabilities = append(c.capabilities, t)
		}
	}
}

// AsType declares capabilities by type identifier.
func AsType(capabilities ...reflect.Type) RegisterOption {
	return func(c *registerConfig) {
		c.capabilities = append(c.capabilities, capabilities...)
	}
}

// WithStereotype labels the component.
func WithStereotype(s Stereotype) RegisterOption {
	return func(c *registerConfig) {
		c.stereotype = s
	}
}

// WithMetadata adds diagnostic metadata to the registration.
func WithMetadata(key, value string) RegisterOption {
	return func(c *registerConfig) {
		if c.metadata == nil {
			c.metadata = make(map[string]string)
		}
		c.metadata[key] = value
	}
}

// mergeOptions combines multiple options.
func mergeOptions(opts []RegisterOption) registerConfig {
	merged := registerConfig{
		scope:      Singleton,
		stereotype: StereotypeComponent,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&merged)
		}
	}

	return merged
}
