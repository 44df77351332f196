package beanpod

import (
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSlowConstructionThreshold is the construction time above which a
// warning is logged.
const DefaultSlowConstructionThreshold = 100 * time.Millisecond

// Container builds wired object graphs from registered components.
// It is safe for concurrent use.
type Container struct {
	registry     *registry
	analyzer     *DependencyAnalyzer
	capabilities *CapabilityIndex
	metrics      *metricsStore
	hooks        *hookChain

	logger        *zap.Logger
	slowThreshold time.Duration

	regMu sync.Mutex // serializes Register, RegisterCapability and ClearAll
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSlowConstructionThreshold sets the duration above which a construction
// is logged as slow. Zero or negative disables the warning.
func WithSlowConstructionThreshold(d time.Duration) Option {
	return func(c *Container) {
		c.slowThreshold = d
	}
}

// WithConfig applies cfg: the slow construction threshold and a logger built
// by NewLogger from cfg.Logging. An invalid Logging section leaves the logger
// unchanged. Options apply in order, so a later WithLogger wins.
func WithConfig(cfg *Config) Option {
	return func(c *Container) {
		if cfg == nil {
			return
		}
		c.slowThreshold = cfg.SlowConstructionThreshold

		if logger, err := NewLogger(cfg.Logging); err == nil {
			c.logger = logger
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		registry:      newRegistry(),
		capabilities:  NewCapabilityIndex(),
		metrics:       newMetricsStore(),
		hooks:         newHookChain(),
		logger:        zap.NewNop(),
		slowThreshold: DefaultSlowConstructionThreshold,
	}
	c.analyzer = NewDependencyAnalyzer(c.registry.params)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Register inserts or replaces the component for comp.Type and computes its
// DependencyMap. It does not check the component against other registrations;
// use ValidateConfiguration for that.
func (c *Container) Register(comp Component, opts ...RegisterOption) error {
	if err := comp.validate(); err != nil {
		return err
	}

	cfg := mergeOptions(opts)

	for _, capability := range cfg.capabilities {
		if capability == nil || (capability.Kind() == reflect.Interface && !comp.Type.Implements(capability)) {
			return newCapabilityError(comp.Type, capability)
		}
	}

	c.regMu.Lock()
	defer c.regMu.Unlock()

	// Resolution reads the map stored on the descriptor, never the analyzer
	// cache, so it always matches the descriptor's constructor.
	deps := c.analyzer.store(comp.Type, comp.Params)
	replaced := c.registry.put(newDescriptor(comp, deps, cfg))

	for _, capability := range cfg.capabilities {
		if err := c.capabilities.Satisfies(comp.Type, capability); err != nil {
			return err
		}
	}

	c.logger.Debug("bean registered",
		zap.Stringer("type", comp.Type),
		zap.Stringer("scope", cfg.scope),
		zap.Bool("primary", cfg.primary),
		zap.Int("dependencies", len(deps)),
		zap.Bool("replaced", replaced),
	)

	return nil
}

// RegisterCapability declares that concrete satisfies capability.
func (c *Container) RegisterCapability(concrete, capability reflect.Type) error {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	return c.capabilities.Satisfies(concrete, capability)
}

// Has checks if t has an exact registration.
func (c *Container) Has(t reflect.Type) bool {
	return c.registry.has(t)
}

// Len returns the number of registered components.
func (c *Container) Len() int {
	return c.registry.len()
}

// Analyzer returns the dependency analyzer of the container.
func (c *Container) Analyzer() *DependencyAnalyzer {
	return c.analyzer
}

// Capabilities returns the capability index of the container.
func (c *Container) Capabilities() *CapabilityIndex {
	return c.capabilities
}

// Use adds a hook. Hooks are called in the order they are added.
func (c *Container) Use(hook Hook) {
	c.hooks.add(hook)
}

// GetMetrics returns a snapshot of the creation statistics per type.
func (c *Container) GetMetrics() map[reflect.Type]MetricsRecord {
	return c.metrics.snapshot()
}

// ResolutionFailures returns how many top-level resolutions failed, by error
// code. Errors raised by constructors are counted as CONSTRUCTION_FAILURE.
func (c *Container) ResolutionFailures() map[string]uint64 {
	return c.metrics.failureSnapshot()
}

// ResetSingletons drops every published singleton instance. The next request
// for each singleton constructs it again.
func (c *Container) ResetSingletons() {
	for _, d := range c.registry.snapshot() {
		d.gate.Lock()
		d.reset()
		d.gate.Unlock()
	}
}

// ClearAll resets the registry, the dependency cache, the capability index and
// the metrics. Intended for test isolation.
func (c *Container) ClearAll() {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	c.registry.clear()
	c.analyzer.InvalidateAll()
	c.capabilities.clear()
	c.metrics.reset()

	c.logger.Debug("container cleared")
}
