package beanpod

import (
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hook intercepts container operations. Hooks can be used for logging,
// metrics, security, testing, etc.
type Hook interface {
	// BeforeResolve is called before a top-level GetBean.
	// Return error to abort resolution.
	BeforeResolve(t reflect.Type) error

	// AfterResolve is called after a top-level GetBean.
	// Called even if resolution failed (instance and err may both be set).
	AfterResolve(t reflect.Type, instance any, err error) error

	// AfterConstruct is called once per constructed instance, including
	// dependencies built during a resolution.
	AfterConstruct(t reflect.Type, instance any, elapsed time.Duration)
}

// hookChain manages multiple hooks.
type hookChain struct {
	hooks []Hook
	mu    sync.RWMutex
}

func newHookChain() *hookChain {
	return &hookChain{}
}

func (h *hookChain) add(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

func (h *hookChain) list() []Hook {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hooks
}

func (h *hookChain) beforeResolve(t reflect.Type) error {
	for _, hook := range h.list() {
		if err := hook.BeforeResolve(t); err != nil {
			return err
		}
	}
	return nil
}

func (h *hookChain) afterResolve(t reflect.Type, instance any, err error) error {
	for _, hook := range h.list() {
		if hookErr := hook.AfterResolve(t, instance, err); hookErr != nil {
			return hookErr
		}
	}
	return nil
}

func (h *hookChain) afterConstruct(t reflect.Type, instance any, elapsed time.Duration) {
	for _, hook := range h.list() {
		hook.AfterConstruct(t, instance, elapsed)
	}
}

// FuncHook wraps functions as a Hook. Nil functions are skipped.
type FuncHook struct {
	BeforeResolveFunc  func(t reflect.Type) error
	AfterResolveFunc   func(t reflect.Type, instance any, err error) error
	AfterConstructFunc func(t reflect.Type, instance any, elapsed time.Duration)
}

// BeforeResolve implements Hook.
func (f *FuncHook) BeforeResolve(t reflect.Type) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(t)
	}
	return nil
}

// AfterResolve implements Hook.
func (f *FuncHook) AfterResolve(t reflect.Type, instance any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(t, instance, err)
	}
	return nil
}

// AfterConstruct implements Hook.
func (f *FuncHook) AfterConstruct(t reflect.Type, instance any, elapsed time.Duration) {
	if f.AfterConstructFunc != nil {
		f.AfterConstructFunc(t, instance, elapsed)
	}
}

// LoggingHook returns a Hook that logs every resolution at debug level and
// every failed resolution at warn level.
func LoggingHook(logger *zap.Logger) Hook {
	return &FuncHook{
		AfterResolveFunc: func(t reflect.Type, _ any, err error) error {
			if err != nil {
				logger.Warn("get bean failed", zap.Stringer("type", t), zap.Error(err))
				return nil
			}
			logger.Debug("get bean", zap.Stringer("type", t))
			return nil
		},
		AfterConstructFunc: func(t reflect.Type, _ any, elapsed time.Duration) {
			logger.Debug("constructed", zap.Stringer("type", t), zap.Duration("elapsed", elapsed))
		},
	}
}
