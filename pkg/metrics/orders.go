package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order engine activity.
type OrderMetrics struct {
	created      prometheus.Counter
	transitions  *prometheus.CounterVec
	stockClashes prometheus.Counter
	events       *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on reg. A nil reg yields no-op metrics.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed by consumers.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status transition attempts by target status and outcome.",
	}, []string{"to", "outcome"})
	stockClashes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_stock_conflicts_total",
		Help: "Completions rejected because listing stock dropped below the order quantity.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_consumed_total",
		Help: "Order events drained from the broker by routing key.",
	}, []string{"routing_key"})
	reg.MustRegister(created, transitions, stockClashes, events)
	return &OrderMetrics{
		created:      created,
		transitions:  transitions,
		stockClashes: stockClashes,
		events:       events,
	}
}

func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// ObserveTransition counts a transition attempt; outcome is an error code or "ok".
func (m *OrderMetrics) ObserveTransition(to, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to), normalizeLabel(outcome)).Inc()
}

func (m *OrderMetrics) IncStockConflict() {
	if m == nil || m.stockClashes == nil {
		return
	}
	m.stockClashes.Inc()
}

func (m *OrderMetrics) IncEventConsumed(routingKey string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(routingKey)).Inc()
}

func normalizeLabel(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "unknown"
	}
	return v
}
