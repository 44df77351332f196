package beanpod

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// codeConstructionFailure labels failure metrics for errors raised by
// constructors rather than by the container.
const codeConstructionFailure = "CONSTRUCTION_FAILURE"

// resolution carries the per-call state of one top-level GetBean.
type resolution struct {
	id string
}

// fieldValue is a resolved dependency waiting for the injection pass.
type fieldValue struct {
	name  string
	value any
}

// GetBean returns a fully constructed instance of t.
//
// Singletons are constructed once and shared; prototypes are constructed on
// every call and never retained. When t has no exact registration, the
// capability index is searched. Errors raised by constructors are returned
// unchanged.
func (c *Container) GetBean(t reflect.Type) (any, error) {
	if err := c.hooks.beforeResolve(t); err != nil {
		return nil, newHookError(t, err)
	}

	var res resolution
	if c.logger.Core().Enabled(zap.DebugLevel) {
		res.id = uuid.NewString()
	}

	instance, err := c.resolve(t, nil, &res)
	if err != nil {
		c.recordFailure(t, err, &res)
	}

	if hookErr := c.hooks.afterResolve(t, instance, err); hookErr != nil {
		return nil, newHookError(t, hookErr)
	}

	return instance, err
}

// resolve is the recursive step. path holds the types under construction for
// the current top-level call; it is copied, never shared.
func (c *Container) resolve(t reflect.Type, path []reflect.Type, res *resolution) (any, error) {
	d, err := c.describe(t)
	if err != nil {
		return nil, err
	}

	if d.scope == Singleton {
		if instance, ok := d.load(); ok {
			return instance, nil
		}
	}

	target := d.component.Type
	for _, seen := range path {
		if seen == target {
			cycle := append(append(make([]reflect.Type, 0, len(path)+1), path...), target)
			c.logger.Warn("circular dependency detected",
				zap.String("cycle", formatPath(cycle)),
				zap.String("resolution_id", res.id),
			)

			return nil, ErrCircularDependency(cycle)
		}
	}

	next := append(append(make([]reflect.Type, 0, len(path)+1), path...), target)

	args := make(Args, len(d.deps))
	var fields []fieldValue

	for _, dep := range d.deps {
		value, err := c.resolve(dep.Type, next, res)
		if err != nil {
			return nil, err
		}

		if dep.Field {
			fields = append(fields, fieldValue{name: dep.Name, value: value})
		} else {
			args[dep.Name] = value
		}
	}

	var (
		instance    any
		elapsed     time.Duration
		constructed bool
	)

	if d.scope == Singleton {
		instance, elapsed, constructed, err = c.constructSingleton(d, args, fields)
	} else {
		instance, elapsed, err = c.construct(d, args, fields)
		constructed = err == nil
	}

	if err != nil {
		return nil, err
	}

	if constructed {
		c.observeConstruction(target, d, instance, elapsed, res)
	}

	return instance, nil
}

// describe finds the descriptor serving t: the exact registration, or the
// implementation chosen from the capability index.
func (c *Container) describe(t reflect.Type) (*descriptor, error) {
	if d, ok := c.registry.lookup(t); ok {
		return d, nil
	}

	var cands []candidate
	for _, impl := range c.capabilities.FindImplementations(t) {
		if d, ok := c.registry.lookup(impl); ok {
			cands = append(cands, candidate{typ: impl, desc: d})
		}
	}

	if len(cands) == 0 {
		return nil, ErrBeanNotFound(t)
	}

	chosen, err := selectCandidate(t, cands)
	if err != nil {
		return nil, err
	}

	return chosen.desc, nil
}

// constructSingleton runs the exactly-once gate of d. A caller that loses the
// race discards its resolved dependencies and returns the published instance.
func (c *Container) constructSingleton(d *descriptor, args Args, fields []fieldValue) (any, time.Duration, bool, error) {
	d.gate.Lock()
	defer d.gate.Unlock()

	if instance, ok := d.load(); ok {
		return instance, 0, false, nil
	}

	instance, elapsed, err := c.construct(d, args, fields)
	if err != nil {
		return nil, 0, false, err
	}

	d.publish(instance)

	return instance, elapsed, true, nil
}

// construct invokes the constructor and runs the field injection pass.
func (c *Container) construct(d *descriptor, args Args, fields []fieldValue) (any, time.Duration, error) {
	start := time.Now()

	instance, err := d.component.Construct(args)
	if err != nil {
		return nil, 0, err
	}

	if len(fields) > 0 {
		if err := injectFields(d.component.Type, instance, fields); err != nil {
			return nil, 0, err
		}
	}

	return instance, time.Since(start), nil
}

// injectFields assigns resolved dependencies to exported struct fields of
// instance, which must be a non-nil pointer to a struct.
func injectFields(t reflect.Type, instance any, fields []fieldValue) error {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return newComponentError(t, fmt.Sprintf("field injection needs a struct pointer, got %T", instance))
	}

	elem := rv.Elem()
	for _, f := range fields {
		field := elem.FieldByName(f.name)
		if !field.IsValid() || !field.CanSet() {
			return newComponentError(t, "field "+f.name+" is missing or unexported")
		}

		if f.value == nil {
			field.Set(reflect.Zero(field.Type()))
			continue
		}

		value := reflect.ValueOf(f.value)
		if !value.Type().AssignableTo(field.Type()) {
			return newComponentError(t, fmt.Sprintf("field %s: cannot assign %s to %s",
				f.name, value.Type(), field.Type()))
		}
		field.Set(value)
	}

	return nil
}

func (c *Container) observeConstruction(t reflect.Type, d *descriptor, instance any, elapsed time.Duration, res *resolution) {
	c.metrics.recordCreation(t, elapsed)

	if c.slowThreshold > 0 && elapsed > c.slowThreshold {
		c.logger.Warn("slow bean construction",
			zap.Stringer("type", t),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", c.slowThreshold),
		)
	}

	c.logger.Debug("bean constructed",
		zap.Stringer("type", t),
		zap.Stringer("scope", d.scope),
		zap.Duration("elapsed", elapsed),
		zap.String("resolution_id", res.id),
	)

	c.hooks.afterConstruct(t, instance, elapsed)
}

func (c *Container) recordFailure(t reflect.Type, err error, res *resolution) {
	code := ErrorCode(err)
	if code == "" {
		code = codeConstructionFailure
	}

	c.metrics.recordFailure(code)

	c.logger.Debug("bean resolution failed",
		zap.Stringer("type", t),
		zap.String("code", code),
		zap.Error(err),
		zap.String("resolution_id", res.id),
	)
}
