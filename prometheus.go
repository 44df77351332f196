package beanpod

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports container metrics to Prometheus. Values are read from the
// container on every scrape, so the collector holds no state of its own.
type Collector struct {
	container *Container

	creations    *prometheus.Desc
	construction *prometheus.Desc
	registered   *prometheus.Desc
	failures     *prometheus.Desc
}

// NewCollector creates a collector for c. Register it with a
// prometheus.Registerer:
//
//	prometheus.MustRegister(beanpod.NewCollector(c, "myapp"))
func NewCollector(c *Container, namespace string) *Collector {
	return &Collector{
		container: c,
		creations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "bean", "creations_total"),
			"Total number of bean instances constructed",
			[]string{"type"}, nil,
		),
		construction: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "bean", "construction_seconds_total"),
			"Total time spent in bean constructors",
			[]string{"type"}, nil,
		),
		registered: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "beans_registered"),
			"Number of registered components",
			nil, nil,
		),
		failures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "resolution_errors_total"),
			"Total number of failed resolutions by error code",
			[]string{"code"}, nil,
		),
	}
}

// NewCollectorFromConfig creates a collector for c named after
// cfg.Metrics.Namespace, or "beanpod" when cfg leaves it empty.
func NewCollectorFromConfig(c *Container, cfg *Config) *Collector {
	namespace := "beanpod"
	if cfg != nil && cfg.Metrics.Namespace != "" {
		namespace = cfg.Metrics.Namespace
	}
	return NewCollector(c, namespace)
}

// Describe implements prometheus.Collector.
func (col *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- col.creations
	ch <- col.construction
	ch <- col.registered
	ch <- col.failures
}

// Collect implements prometheus.Collector.
func (col *Collector) Collect(ch chan<- prometheus.Metric) {
	for t, record := range col.container.GetMetrics() {
		name := typeName(t)
		ch <- prometheus.MustNewConstMetric(col.creations, prometheus.CounterValue,
			float64(record.CreationCount), name)
		ch <- prometheus.MustNewConstMetric(col.construction, prometheus.CounterValue,
			record.TotalConstructionTime.Seconds(), name)
	}

	ch <- prometheus.MustNewConstMetric(col.registered, prometheus.GaugeValue,
		float64(col.container.Len()))

	for code, count := range col.container.ResolutionFailures() {
		ch <- prometheus.MustNewConstMetric(col.failures, prometheus.CounterValue,
			float64(count), code)
	}
}
