package beanpod

import (
	"errors"
	"fmt"
	"reflect"
)

// In is a marker type that should be embedded in structs to indicate they
// are parameter objects. Each exported field becomes a dependency named after
// the field, or after its `name` tag.
//
// Example:
//
//	type ServiceParams struct {
//	    beanpod.In
//
//	    DB    *Database
//	    Cache Cache `name:"cache"`
//	}
type In struct{}

var (
	inType    = reflect.TypeOf(In{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// funcInfo holds analyzed constructor metadata
type funcInfo struct {
	fn       reflect.Value
	fnType   reflect.Type
	result   reflect.Type
	hasError bool
	params   []funcParam
}

// funcParam describes one parameter of the constructor
type funcParam struct {
	typ    reflect.Type
	name   string    // Dependency name for plain parameters
	isIn   bool      // Whether this is an In struct (expanded into multiple deps)
	fields []inField // Expanded fields if isIn is true
}

type inField struct {
	index int
	name  string
	typ   reflect.Type
}

// FromFunc builds a Component from an ordinary constructor function of the form
// func(A, B, ...) T or func(A, B, ...) (T, error). The signature is read once,
// here; resolution only uses the resulting static metadata.
//
// Plain parameters are named arg0, arg1, ... unless names are given.
func FromFunc(fn any, names ...string) (Component, error) {
	info, err := analyzeFunc(fn, names)
	if err != nil {
		return Component{}, fmt.Errorf("invalid constructor: %w", err)
	}

	var params []Param
	for _, p := range info.params {
		if !p.isIn {
			params = append(params, Param{Name: p.name, Type: p.typ})
			continue
		}
		for _, f := range p.fields {
			params = append(params, Param{Name: f.name, Type: f.typ})
		}
	}

	return Component{
		Type:      info.result,
		Params:    params,
		Construct: info.call,
	}, nil
}

// ProvideFunc registers an ordinary constructor function.
//
// Example:
//
//	func NewUserService(db *Database, logger *zap.Logger) *UserService {
//	    return &UserService{db: db, logger: logger}
//	}
//	beanpod.ProvideFunc(c, NewUserService, beanpod.WithStereotype(beanpod.StereotypeService))
func ProvideFunc(c *Container, fn any, opts ...RegisterOption) error {
	comp, err := FromFunc(fn)
	if err != nil {
		return err
	}

	return c.Register(comp, opts...)
}

// analyzeFunc inspects a constructor function and extracts its dependency
// and result information.
func analyzeFunc(fn any, names []string) (*funcInfo, error) {
	if fn == nil {
		return nil, errors.New("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}

	if len(names) > fnType.NumIn() {
		return nil, fmt.Errorf("%d names given for %d parameters", len(names), fnType.NumIn())
	}

	info := &funcInfo{
		fn:     fnValue,
		fnType: fnType,
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errors.New("second return value must be error")
		}
		info.hasError = true
	default:
		return nil, errors.New("constructor must return (T) or (T, error)")
	}

	info.result = fnType.Out(0)
	if info.result == errorType {
		return nil, errors.New("constructor must return a non-error value")
	}

	for i := 0; i < fnType.NumIn(); i++ {
		paramType := fnType.In(i)

		if isInStruct(paramType) {
			info.params = append(info.params, funcParam{
				typ:    paramType,
				isIn:   true,
				fields: expandInStruct(paramType),
			})
			continue
		}

		name := fmt.Sprintf("arg%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		info.params = append(info.params, funcParam{typ: paramType, name: name})
	}

	return info, nil
}

// isInStruct checks if a type is a struct embedding beanpod.In
func isInStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == inType {
			return true
		}
	}
	return false
}

// expandInStruct lists the exported fields of an In struct
func expandInStruct(t reflect.Type) []inField {
	var fields []inField

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous && field.Type == inType {
			continue
		}
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("name"); tag != "" {
			name = tag
		}

		fields = append(fields, inField{index: i, name: name, typ: field.Type})
	}

	return fields
}

// call invokes the constructor with the arguments bound by name. Arguments
// absent from args are passed as zero values.
func (info *funcInfo) call(args Args) (any, error) {
	in := make([]reflect.Value, len(info.params))

	for i, p := range info.params {
		if !p.isIn {
			v, err := argValue(args, p.name, p.typ)
			if err != nil {
				return nil, err
			}
			in[i] = v
			continue
		}

		structValue := reflect.New(p.typ).Elem()
		for _, f := range p.fields {
			v, err := argValue(args, f.name, f.typ)
			if err != nil {
				return nil, err
			}
			structValue.Field(f.index).Set(v)
		}
		in[i] = structValue
	}

	results := info.fn.Call(in)

	if info.hasError {
		if errResult := results[1]; !errResult.IsNil() {
			return nil, errResult.Interface().(error)
		}
	}

	return results[0].Interface(), nil
}

func argValue(args Args, name string, t reflect.Type) (reflect.Value, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return reflect.Zero(t), nil
	}

	value := reflect.ValueOf(v)
	if !value.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("argument %q: cannot use %s as %s", name, value.Type(), t)
	}

	return value, nil
}
