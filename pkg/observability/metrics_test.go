package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("c", 1)
		m.Gauge("g", 1)
		m.Histogram("h", 1)
		m.Timing("t", time.Second)
	})
}

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricSlotsSearched, 1)
	m.Counter(MetricSlotsSearched, 2)
	m.Counter(MetricBookingRejected, 1, T("reason", "overlap"))
	m.Gauge("outbox.pending", 4)
	m.Histogram("h", 1.5)
	m.Timing("t", time.Second)

	assert.Equal(t, int64(3), m.GetCounter(MetricSlotsSearched))
	assert.Equal(t, int64(1), m.GetCounter(MetricBookingRejected, T("reason", "overlap")))
	assert.Zero(t, m.GetCounter(MetricBookingRejected))
	assert.Equal(t, 4.0, m.GetGauge("outbox.pending"))
	assert.Equal(t, []float64{1.5}, m.GetHistogram("h"))
	assert.Equal(t, []time.Duration{time.Second}, m.GetTimings("t"))

	m.Reset()
	assert.Zero(t, m.GetCounter(MetricSlotsSearched))
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.Counter(MetricSlotsSearched, 2, T("doctor", "d1"))
	m.Counter(MetricSlotsSearched, 1, T("doctor", "d1"))
	m.Counter(MetricSlotsSearched, 5, T("doctor", "d2"), T("ignored", "x"))
	m.Gauge("outbox.pending", 7)
	m.Timing(MetricOperationDuration, 250*time.Millisecond, T(OperationKey, "book"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.counters[MetricSlotsSearched].vec.WithLabelValues("d1")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.counters[MetricSlotsSearched].vec.WithLabelValues("d2")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.gauges["outbox.pending"].vec.WithLabelValues()))

	n, err := testutil.GatherAndCount(reg,
		"meditrack_scheduling_slots_searched_total",
		"meditrack_outbox_pending",
		"meditrack_operation_duration_seconds",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPrometheusMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	NewPrometheusMetrics(reg).Counter(MetricOutboxPublished, 1)
	NewPrometheusMetrics(reg).Counter(MetricOutboxPublished, 2)

	n, err := testutil.GatherAndCount(reg, "meditrack_outbox_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, 3.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestPromName(t *testing.T) {
	tests := []struct {
		name, suffix, want string
	}{
		{"scheduling.slots.searched", "total", "scheduling_slots_searched_total"},
		{"meditrack.operation.total", "total", "operation_total"},
		{"meditrack.operation.duration", "seconds", "operation_duration_seconds"},
		{"outbox.dead-lettered", "", "outbox_dead_lettered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, promName(tt.name, tt.suffix))
		})
	}
}

func TestTimer(t *testing.T) {
	m := NewInMemoryMetrics()

	err := TimeOperation(NopLogger(), m, "book", func() error { return errors.New("boom") })
	assert.Error(t, err)
	_, err = TimeOperationResult(nil, m, "book", func() (int, error) { return 1, nil })
	assert.NoError(t, err)

	tag := T(OperationKey, "book")
	assert.Equal(t, int64(2), m.GetCounter(MetricOperationTotal, tag))
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, tag))
	assert.Len(t, m.GetTimings(MetricOperationDuration, tag), 2)
}
