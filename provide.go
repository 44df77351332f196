package beanpod

import (
	"fmt"
)

// Provide registers T with a typed constructor.
// It accepts Param and RegisterOption arguments plus exactly one constructor
// of the form func(Args) (T, error).
//
// Usage:
//
//	beanpod.Provide[*UserService](c,
//	    beanpod.Inject[*Database]("db"),
//	    beanpod.Inject[Logger]("logger"),
//	    beanpod.AsPrototype(),
//	    func(args beanpod.Args) (*UserService, error) {
//	        return &UserService{
//	            db:     beanpod.MustArg[*Database](args, "db"),
//	            logger: beanpod.MustArg[Logger](args, "logger"),
//	        }, nil
//	    },
//	)
func Provide[T any](c *Container, args ...any) error {
	var (
		params    []Param
		opts      []RegisterOption
		construct func(Args) (T, error)
	)

	t := TypeOf[T]()

	for _, arg := range args {
		switch v := arg.(type) {
		case Param:
			params = append(params, v)
		case RegisterOption:
			opts = append(opts, v)
		case func(Args) (T, error):
			if construct != nil {
				return newComponentError(t, "multiple constructors provided")
			}
			construct = v
		default:
			return newComponentError(t, fmt.Sprintf("unexpected argument of type %T", arg))
		}
	}

	if construct == nil {
		return newComponentError(t, "no constructor provided")
	}

	return c.Register(Component{
		Type:   t,
		Params: params,
		Construct: func(a Args) (any, error) {
			return construct(a)
		},
	}, opts...)
}

// Value registers an existing instance as a singleton of type T.
func Value[T any](c *Container, instance T, opts ...RegisterOption) error {
	return c.Register(Component{
		Type: TypeOf[T](),
		Construct: func(Args) (any, error) {
			return instance, nil
		},
	}, append(opts[:len(opts):len(opts)], AsSingleton())...)
}

// Implements declares that concrete type C satisfies capability I.
func Implements[C, I any](c *Container) error {
	return c.RegisterCapability(TypeOf[C](), TypeOf[I]())
}
