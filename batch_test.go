package beanpod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestRegisterAll(t *testing.T) {
	c := newTestContainer(t)

	err := RegisterAll(c,
		Func(newTestDatabase),
		Func(newTestLogger, AsPrototype()),
		Func(newTestUserService),
		Bean(Component{
			Type: TypeOf[*testCache](),
			Construct: func(Args) (any, error) {
				return newTestCache(), nil
			},
		}, Primary()),
	)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Len())

	svc, err := Get[*testUserService](c)
	require.NoError(t, err)
	assert.NotNil(t, svc.db)

	info, _ := c.Inspect(TypeOf[*testLogger]())
	assert.Equal(t, Prototype, info.Scope)
}

func TestRegisterAll_CollectsEveryError(t *testing.T) {
	c := newTestContainer(t)

	err := RegisterAll(c,
		Func("not a function"),
		Func(newTestDatabase),
		Bean(Component{Type: TypeOf[*testCache]()}),
		Bean(Component{
			Type:      TypeOf[*testService](),
			Construct: func(Args) (any, error) { return &testService{}, nil },
		}, As((*Notifier)(nil))),
	)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "registration 0: invalid constructor")
	assert.Contains(t, errs[1].Error(), "registration 2:")
	assert.ErrorIs(t, errs[1], ErrInvalidComponent)
	assert.ErrorIs(t, errs[2], ErrInvalidCapability)

	// Valid registrations still go through
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has(TypeOf[*testDatabase]()))
}

func TestRegisterAll_Empty(t *testing.T) {
	c := newTestContainer(t)

	assert.NoError(t, RegisterAll(c))
	assert.Equal(t, 0, c.Len())
}
