package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOrderMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.IncCreated()
	m.IncCreated()
	m.ObserveTransition("completed", "ok")
	m.ObserveTransition("Completed", "ok")
	m.ObserveTransition("accepted", "INVALID_TRANSITION")
	m.IncStockConflict()
	m.IncEventConsumed("")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.created))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("completed", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("accepted", "invalid_transition")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.stockClashes))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.events.WithLabelValues("unknown")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *OrderMetrics
	m.IncCreated()
	m.ObserveTransition("accepted", "ok")
	m.IncStockConflict()
	m.IncEventConsumed("order.created")

	noop := NewOrderMetrics(nil)
	noop.IncCreated()
	noop.ObserveTransition("accepted", "ok")
}
