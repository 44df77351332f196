package beanpod

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy defers the resolution of T until first access. Hand it to code that
// may never need the bean.
type Lazy[T any] struct {
	container *Container
	once      sync.Once
	value     T
	err       error
	resolved  atomic.Bool
}

// NewLazy creates a new lazy handle for T.
func NewLazy[T any](container *Container) *Lazy[T] {
	return &Lazy[T]{container: container}
}

// Get resolves T and returns it.
// The resolution happens only once; subsequent calls return the cached value
// or the cached error.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = Get[T](l.container)
		l.resolved.Store(l.err == nil)
	})

	return l.value, l.err
}

// MustGet resolves T and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy bean %s failed: %v", TypeOf[T](), err))
	}

	return value
}

// IsResolved returns true if T has been resolved successfully.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved.Load()
}
