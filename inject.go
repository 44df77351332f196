package beanpod

import (
	"fmt"
	"reflect"
)

// Param declares one dependency of a component.
//
// Constructor parameters are bound by name into the Args handed to the
// constructor. Field parameters are assigned to the exported struct field of
// the same name right after construction, before the instance is returned or
// published.
type Param struct {
	Name  string
	Type  reflect.Type
	Field bool
}

// Inject declares a constructor parameter of type T.
//
// Usage:
//
//	beanpod.Provide[*UserService](c,
//	    beanpod.Inject[*Database]("db"),
//	    beanpod.Inject[Logger]("logger"),
//	    func(args beanpod.Args) (*UserService, error) { ... },
//	)
func Inject[T any](name string) Param {
	return Param{Name: name, Type: TypeOf[T]()}
}

// Untyped declares a constructor parameter without a dependency type.
// The container never supplies it; a constructor that needs it must cope with
// its absence from Args.
func Untyped(name string) Param {
	return Param{Name: name}
}

// Autowire declares an exported struct field of type T that is filled right
// after construction.
//
// Usage:
//
//	beanpod.Provide[*Handler](c,
//	    beanpod.Autowire[*Cache]("Cache"),
//	    func(beanpod.Args) (*Handler, error) { return &Handler{}, nil },
//	)
func Autowire[T any](field string) Param {
	return Param{Name: field, Type: TypeOf[T](), Field: true}
}

// Args holds the resolved constructor dependencies, keyed by parameter name.
type Args map[string]any

// Get returns the dependency bound to name.
func (a Args) Get(name string) (any, bool) {
	v, ok := a[name]

	return v, ok
}

// Arg returns the dependency bound to name as a T. A missing or mistyped
// argument is an error of the constructor, not of the container.
func Arg[T any](args Args, name string) (T, error) {
	var zero T

	v, ok := args[name]
	if !ok {
		return zero, fmt.Errorf("missing argument %q", name)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("argument %q: expected %T, got %T", name, zero, v)
	}

	return typed, nil
}

// MustArg is like Arg but panics on error. Use it only inside constructors
// whose parameters are all declared with Inject.
func MustArg[T any](args Args, name string) T {
	v, err := Arg[T](args, name)
	if err != nil {
		panic(err)
	}

	return v
}

// TypeOf returns the type identifier of T. Interface types are returned as
// themselves rather than as a pointer.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
