package beanpod

import (
	"fmt"

	"go.uber.org/multierr"
)

// Registration holds a component and its options for batch registration.
type Registration struct {
	Component Component
	Options   []RegisterOption

	err error
}

// Bean creates a Registration for batch registration.
//
// Example:
//
//	beanpod.RegisterAll(c,
//	    beanpod.Bean(dbComponent, beanpod.Primary()),
//	    beanpod.Bean(cacheComponent, beanpod.AsPrototype()),
//	)
func Bean(comp Component, opts ...RegisterOption) Registration {
	return Registration{
		Component: comp,
		Options:   opts,
	}
}

// Func creates a Registration from an ordinary constructor function.
// An invalid function is reported by RegisterAll.
func Func(fn any, opts ...RegisterOption) Registration {
	comp, err := FromFunc(fn)
	return Registration{Component: comp, Options: opts, err: err}
}

// RegisterAll registers every component. Unlike a plain loop it does not stop
// at the first failure: every failing registration is reported in the
// returned error.
func RegisterAll(c *Container, registrations ...Registration) error {
	var err error

	for i, reg := range registrations {
		if reg.err != nil {
			err = multierr.Append(err, fmt.Errorf("registration %d: %w", i, reg.err))
			continue
		}
		if regErr := c.Register(reg.Component, reg.Options...); regErr != nil {
			err = multierr.Append(err, fmt.Errorf("registration %d: %w", i, regErr))
		}
	}

	return err
}
