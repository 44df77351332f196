package beanpod

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrent_SingletonConstructedOnce(t *testing.T) {
	c := newTestContainer(t)

	var calls atomic.Int32
	require.NoError(t, Provide[*testService](c, func(Args) (*testService, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &testService{value: "shared"}, nil
	}))

	const goroutines = 50

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*testService, goroutines)
		errs    = make([]error, goroutines)
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = Get[*testService](c)
		}(i)
	}

	close(start)
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(1), c.GetMetrics()[TypeOf[*testService]()].CreationCount)
}

func TestConcurrent_ChainConstructedOnce(t *testing.T) {
	c := newTestContainer(t)
	registerChain(t, c)

	const goroutines = 20

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		roots = make([]*chainA, goroutines)
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			a, err := Get[*chainA](c)
			assert.NoError(t, err)
			roots[i] = a
		}(i)
	}

	close(start)
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, roots[0], roots[i])
	}

	metrics := c.GetMetrics()
	for _, typ := range []reflect.Type{
		TypeOf[*chainA](), TypeOf[*chainB](), TypeOf[*chainC](), TypeOf[*chainD](), TypeOf[*chainE](),
	} {
		assert.Equal(t, uint64(1), metrics[typ].CreationCount, typ.String())
	}
}

// Two singletons whose constructors wait for each other can only both finish
// when distinct types are constructed in parallel.
func TestConcurrent_UnrelatedTypesDoNotSerialize(t *testing.T) {
	c := newTestContainer(t)

	var ready sync.WaitGroup
	ready.Add(2)

	rendezvous := func() error {
		ready.Done()
		done := make(chan struct{})
		go func() {
			ready.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("constructions were serialized")
		}
	}

	require.NoError(t, Provide[*testService](c, func(Args) (*testService, error) {
		if err := rendezvous(); err != nil {
			return nil, err
		}
		return &testService{}, nil
	}))
	require.NoError(t, Provide[*counterService](c, func(Args) (*counterService, error) {
		if err := rendezvous(); err != nil {
			return nil, err
		}
		return &counterService{}, nil
	}))

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = Get[*testService](c)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = Get[*counterService](c)
	}()
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestConcurrent_NoFalseCycles(t *testing.T) {
	c := newTestContainer(t)

	// leaf has a field so distinct instances never share an address.
	type leaf struct{ id int }
	type branch struct {
		left, right *leaf
	}

	var ids atomic.Int64
	require.NoError(t, Provide[*leaf](c, AsPrototype(), func(Args) (*leaf, error) {
		return &leaf{id: int(ids.Add(1))}, nil
	}))
	require.NoError(t, Provide[*branch](c, AsPrototype(),
		Inject[*leaf]("left"),
		Inject[*leaf]("right"),
		func(a Args) (*branch, error) {
			return &branch{left: MustArg[*leaf](a, "left"), right: MustArg[*leaf](a, "right")}, nil
		},
	))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				b, err := Get[*branch](c)
				if !assert.NoError(t, err) {
					return
				}
				assert.NotSame(t, b.left, b.right)
				assert.NotEqual(t, b.left.id, b.right.id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(500), c.GetMetrics()[TypeOf[*branch]()].CreationCount)
	assert.Equal(t, uint64(1000), c.GetMetrics()[TypeOf[*leaf]()].CreationCount)
}

func TestConcurrent_RegisterWhileResolving(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, Provide[*chainE](c, func(Args) (*chainE, error) {
		return &chainE{}, nil
	}))

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, err := Get[*chainE](c)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			assert.NoError(t, Provide[*testService](c, AsPrototype(), func(Args) (*testService, error) {
				return &testService{}, nil
			}))
		}
	}()
	wg.Wait()

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.GetMetrics()[TypeOf[*chainE]()].CreationCount)
}

func TestConstructSingleton_DoubleCheckPath(t *testing.T) {
	c := newTestContainer(t)

	calls := 0
	require.NoError(t, Provide[*testService](c, func(Args) (*testService, error) {
		calls++
		return &testService{}, nil
	}))

	d, ok := c.registry.lookup(TypeOf[*testService]())
	require.True(t, ok)

	first, _, constructed, err := c.constructSingleton(d, Args{}, nil)
	require.NoError(t, err)
	assert.True(t, constructed)

	// A caller that resolved its dependencies before the first one published
	// finds the instance once it holds the gate.
	second, elapsed, constructed, err := c.constructSingleton(d, Args{}, nil)
	require.NoError(t, err)
	assert.False(t, constructed)
	assert.Zero(t, elapsed)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetBean_Singleton_RaceCondition(t *testing.T) {
	for range 10 {
		c := New()

		require.NoError(t, Provide[*testService](c, func(Args) (*testService, error) {
			return &testService{}, nil
		}))

		const goroutines = 100

		done := make(chan any, goroutines)

		for range goroutines {
			go func() {
				val, err := c.GetBean(TypeOf[*testService]())
				if err == nil {
					done <- val
				} else {
					done <- err
				}
			}()
		}

		first := <-done
		for i := 1; i < goroutines; i++ {
			val := <-done
			if err, ok := val.(error); ok {
				t.Fatalf("unexpected error: %v", err)
			}

			assert.Same(t, first, val)
		}

		assert.Equal(t, uint64(1), c.GetMetrics()[TypeOf[*testService]()].CreationCount)
	}
}

// Each registration's constructor insists on receiving exactly the argument it
// declared. A resolution that paired one registration with another's
// dependency map would fail.
func TestConcurrent_ReplaceKeepsDependenciesWithConstructor(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, Value[*chainE](c, &chainE{}))
	require.NoError(t, Value[*chainD](c, &chainD{}))

	provide := func(param Param, other string) error {
		return Provide[*testService](c, AsPrototype(), param, func(a Args) (*testService, error) {
			if _, ok := a[param.Name]; !ok {
				return nil, errors.New("missing declared argument " + param.Name)
			}
			if _, ok := a[other]; ok {
				return nil, errors.New("received undeclared argument " + other)
			}
			return &testService{value: param.Name}, nil
		})
	}
	byE := func() error { return provide(Inject[*chainE]("e"), "d") }
	byD := func() error { return provide(Inject[*chainD]("d"), "e") }

	require.NoError(t, byE())

	var (
		wg   sync.WaitGroup
		stop atomic.Bool
	)

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				_, err := c.GetBean(TypeOf[*testService]())
				if !assert.NoError(t, err) {
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			require.NoError(t, byD())
		} else {
			require.NoError(t, byE())
		}
	}
	stop.Store(true)
	wg.Wait()

	// The last registration declared "e".
	deps := c.Analyzer().Analyze(TypeOf[*testService]())
	require.Len(t, deps, 1)
	assert.Equal(t, "e", deps[0].Name)

	info, ok := c.Inspect(TypeOf[*testService]())
	require.True(t, ok)
	assert.Equal(t, deps, info.Dependencies)

	svc, err := Get[*testService](c)
	require.NoError(t, err)
	assert.Equal(t, "e", svc.value)
}
