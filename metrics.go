package beanpod

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsRecord holds the creation statistics of one type.
type MetricsRecord struct {
	CreationCount         uint64
	TotalConstructionTime time.Duration
}

// AverageConstructionTime returns the mean construction time, or zero when the
// type was never created.
func (r MetricsRecord) AverageConstructionTime() time.Duration {
	if r.CreationCount == 0 {
		return 0
	}
	return r.TotalConstructionTime / time.Duration(r.CreationCount)
}

type creationCounter struct {
	count atomic.Uint64
	nanos atomic.Int64
}

// metricsStore accumulates creation counts and construction times per type,
// and resolution failures per error code.
type metricsStore struct {
	creations map[reflect.Type]*creationCounter
	failures  map[string]*atomic.Uint64
	mu        sync.RWMutex
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		creations: make(map[reflect.Type]*creationCounter),
		failures:  make(map[string]*atomic.Uint64),
	}
}

func (m *metricsStore) counter(t reflect.Type) *creationCounter {
	m.mu.RLock()
	c, ok := m.creations[t]
	m.mu.RUnlock()

	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok = m.creations[t]; !ok {
		c = &creationCounter{}
		m.creations[t] = c
	}

	return c
}

// recordCreation counts one construction of t.
func (m *metricsStore) recordCreation(t reflect.Type, elapsed time.Duration) {
	c := m.counter(t)
	c.count.Add(1)
	c.nanos.Add(int64(elapsed))
}

// recordFailure counts one failed top-level resolution.
func (m *metricsStore) recordFailure(code string) {
	m.mu.RLock()
	c, ok := m.failures[code]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		if c, ok = m.failures[code]; !ok {
			c = &atomic.Uint64{}
			m.failures[code] = c
		}
		m.mu.Unlock()
	}

	c.Add(1)
}

// snapshot copies the creation records.
func (m *metricsStore) snapshot() map[reflect.Type]MetricsRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[reflect.Type]MetricsRecord, len(m.creations))
	for t, c := range m.creations {
		out[t] = MetricsRecord{
			CreationCount:         c.count.Load(),
			TotalConstructionTime: time.Duration(c.nanos.Load()),
		}
	}

	return out
}

// failureSnapshot copies the failure counts.
func (m *metricsStore) failureSnapshot() map[string]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]uint64, len(m.failures))
	for code, c := range m.failures {
		out[code] = c.Load()
	}

	return out
}

func (m *metricsStore) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creations = make(map[reflect.Type]*creationCounter)
	m.failures = make(map[string]*atomic.Uint64)
}
