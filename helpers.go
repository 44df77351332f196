package beanpod

// Get resolves T with type safety.
func Get[T any](c *Container) (T, error) {
	var zero T

	t := TypeOf[T]()

	instance, err := c.GetBean(t)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(t, instance)
	}

	return typed, nil
}

// MustGet resolves T or panics - use only during startup.
func MustGet[T any](c *Container) T {
	instance, err := Get[T](c)
	if err != nil {
		panic(err)
	}

	return instance
}

// RegisterSingleton registers T as a singleton built by construct.
func RegisterSingleton[T any](c *Container, construct func(Args) (T, error), params ...Param) error {
	return register(c, construct, params, AsSingleton())
}

// RegisterPrototype registers T as a prototype built by construct.
func RegisterPrototype[T any](c *Container, construct func(Args) (T, error), params ...Param) error {
	return register(c, construct, params, AsPrototype())
}

// RegisterService registers T as a singleton with the service stereotype.
func RegisterService[T any](c *Container, construct func(Args) (T, error), params ...Param) error {
	return register(c, construct, params, WithStereotype(StereotypeService))
}

// RegisterRepository registers T as a singleton with the repository stereotype.
func RegisterRepository[T any](c *Container, construct func(Args) (T, error), params ...Param) error {
	return register(c, construct, params, WithStereotype(StereotypeRepository))
}

// RegisterController registers T as a singleton with the controller stereotype.
func RegisterController[T any](c *Container, construct func(Args) (T, error), params ...Param) error {
	return register(c, construct, params, WithStereotype(StereotypeController))
}

func register[T any](c *Container, construct func(Args) (T, error), params []Param, opts ...RegisterOption) error {
	args := make([]any, 0, len(params)+len(opts)+1)
	for _, p := range params {
		args = append(args, p)
	}
	for _, opt := range opts {
		args = append(args, opt)
	}
	args = append(args, construct)

	return Provide[T](c, args...)
}
