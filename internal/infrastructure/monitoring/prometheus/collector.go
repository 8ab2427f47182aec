// Package prometheus wraps the Prometheus client behind a small registration
// interface so that application code never imports the client library
// directly and tests can substitute a no-op collector.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector registers metric vectors on a private registry and exposes
// them over an HTTP handler.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

// CounterVec wraps prometheus.CounterVec.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Counter wraps prometheus.Counter.
type Counter interface {
	Inc()
	Add(delta float64)
}

// GaugeVec wraps prometheus.GaugeVec.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// Gauge wraps prometheus.Gauge.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

// HistogramVec wraps prometheus.HistogramVec.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Histogram wraps prometheus.Histogram.
type Histogram interface {
	Observe(value float64)
}

// CollectorConfig holds construction parameters for the collector.
type CollectorConfig struct {
	Namespace            string
	Subsystem            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
	ConstLabels          map[string]string
}

type promCollector struct {
	registry *prometheus.Registry
	cfg      CollectorConfig

	mu         sync.Mutex
	registered map[string]prometheus.Collector
}

// NewMetricsCollector creates a MetricsCollector with its own registry.
func NewMetricsCollector(cfg CollectorConfig) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("prometheus: namespace is required")
	}

	registry := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	if cfg.EnableGoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}

	return &promCollector{
		registry:   registry,
		cfg:        cfg,
		registered: make(map[string]prometheus.Collector),
	}, nil
}

func (c *promCollector) register(name string, coll prometheus.Collector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.registered[name]; ok {
		return
	}
	c.registry.MustRegister(coll)
	c.registered[name] = coll
}

type counterVec struct{ v *prometheus.CounterVec }

func (cv counterVec) WithLabelValues(lvs ...string) Counter { return cv.v.WithLabelValues(lvs...) }

type gaugeVec struct{ v *prometheus.GaugeVec }

func (gv gaugeVec) WithLabelValues(lvs ...string) Gauge { return gv.v.WithLabelValues(lvs...) }

type histogramVec struct{ v *prometheus.HistogramVec }

func (hv histogramVec) WithLabelValues(lvs ...string) Histogram {
	return hv.v.WithLabelValues(lvs...)
}

func (c *promCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	v := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)
	c.register(name, v)
	return counterVec{v: v}
}

func (c *promCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)
	c.register(name, v)
	return gaugeVec{v: v}
}

func (c *promCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)
	c.register(name, v)
	return histogramVec{v: v}
}

func (c *promCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// nop implementations for tests and disabled monitoring

type nopCounter struct{}

func (nopCounter) Inc()          {}
func (nopCounter) Add(_ float64) {}

type nopGauge struct{}

func (nopGauge) Set(_ float64) {}
func (nopGauge) Inc()          {}
func (nopGauge) Dec()          {}

type nopHistogram struct{}

func (nopHistogram) Observe(_ float64) {}

type nopCounterVec struct{}

func (nopCounterVec) WithLabelValues(_ ...string) Counter { return nopCounter{} }

type nopGaugeVec struct{}

func (nopGaugeVec) WithLabelValues(_ ...string) Gauge { return nopGauge{} }

type nopHistogramVec struct{}

func (nopHistogramVec) WithLabelValues(_ ...string) Histogram { return nopHistogram{} }

type nopCollector struct{}

func (nopCollector) RegisterCounter(_, _ string, _ ...string) CounterVec { return nopCounterVec{} }
func (nopCollector) RegisterGauge(_, _ string, _ ...string) GaugeVec     { return nopGaugeVec{} }
func (nopCollector) RegisterHistogram(_, _ string, _ []float64, _ ...string) HistogramVec {
	return nopHistogramVec{}
}
func (nopCollector) Handler() http.Handler { return http.NotFoundHandler() }

// NewNopCollector returns a MetricsCollector that records nothing.
func NewNopCollector() MetricsCollector { return nopCollector{} }
