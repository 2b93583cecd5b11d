package observability

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const promNamespace = "meditrack"

// PrometheusMetrics implements Metrics with lazily registered vectors. A
// metric's label names are fixed by its first use; later tags outside that
// set are dropped and missing ones are recorded as "".
type PrometheusMetrics struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*promVec[*prometheus.CounterVec]
	gauges     map[string]*promVec[*prometheus.GaugeVec]
	histograms map[string]*promVec[*prometheus.HistogramVec]
}

type promVec[V any] struct {
	vec    V
	labels []string
}

// NewPrometheusMetrics registers on reg, or on the default registerer when
// reg is nil.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		reg:        reg,
		counters:   make(map[string]*promVec[*prometheus.CounterVec]),
		gauges:     make(map[string]*promVec[*prometheus.GaugeVec]),
		histograms: make(map[string]*promVec[*prometheus.HistogramVec]),
	}
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	m.mu.Lock()
	v, ok := m.counters[name]
	if !ok {
		labels := labelNames(tags)
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      promName(name, "total"),
			Help:      "Counter " + name,
		}, labels)
		v = &promVec[*prometheus.CounterVec]{vec: register(m.reg, vec), labels: labels}
		m.counters[name] = v
	}
	m.mu.Unlock()
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	v, ok := m.gauges[name]
	if !ok {
		labels := labelNames(tags)
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      promName(name, ""),
			Help:      "Gauge " + name,
		}, labels)
		v = &promVec[*prometheus.GaugeVec]{vec: register(m.reg, vec), labels: labels}
		m.gauges[name] = v
	}
	m.mu.Unlock()
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Set(value)
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.histogram(name, "", value, tags)
}

// Timing is recorded in seconds on a histogram suffixed _seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.histogram(name, "seconds", duration.Seconds(), tags)
}

func (m *PrometheusMetrics) histogram(name, unit string, value float64, tags []Tag) {
	key := name + "|" + unit
	m.mu.Lock()
	v, ok := m.histograms[key]
	if !ok {
		labels := labelNames(tags)
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      promName(name, unit),
			Help:      "Histogram " + name,
			Buckets:   prometheus.DefBuckets,
		}, labels)
		v = &promVec[*prometheus.HistogramVec]{vec: register(m.reg, vec), labels: labels}
		m.histograms[key] = v
	}
	m.mu.Unlock()
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Observe(value)
}

// register returns the already registered collector when an identical one
// exists, e.g. after the process built a second PrometheusMetrics.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// promName turns "scheduling.slots.searched" into "scheduling_slots_searched"
// with an optional unit suffix. The namespace supplies the meditrack_ prefix.
func promName(name, suffix string) string {
	n := strings.TrimPrefix(name, promNamespace+".")
	n = strings.NewReplacer(".", "_", "-", "_").Replace(n)
	if suffix != "" && !strings.HasSuffix(n, "_"+suffix) {
		n += "_" + suffix
	}
	return n
}

func labelNames(tags []Tag) []string {
	seen := make(map[string]bool, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if !seen[t.Key] {
			seen[t.Key] = true
			names = append(names, t.Key)
		}
	}
	sort.Strings(names)
	return names
}

func labelValues(names []string, tags []Tag) []string {
	values := make([]string, len(names))
	for i, n := range names {
		for _, t := range tags {
			if t.Key == n {
				values[i] = t.Value
				break
			}
		}
	}
	return values
}
