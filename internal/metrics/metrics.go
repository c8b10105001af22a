// Package metrics holds the Prometheus collector set for replyhookd.
//
// The collectors live on an injected Metrics value backed by its own
// registry and owned by the process for its lifetime; nothing here is
// package-level mutable state. Counter increments are atomic, which is
// the only cross-request ordering guarantee the service needs.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the fixed counter set exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	decisionsTotal     prometheus.Counter
	purchasesTotal     prometheus.Counter
	purchasesAmountUSD prometheus.Counter
	httpRequestsTotal  *prometheus.CounterVec
}

// New creates the collector set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		decisionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "replyhook_decisions_total",
			Help: "Total number of decisions stored.",
		}),
		purchasesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "replyhook_purchases_total",
			Help: "Total number of purchases stored.",
		}),
		purchasesAmountUSD: factory.NewCounter(prometheus.CounterOpts{
			Name: "replyhook_purchases_amount_usd",
			Help: "Sum of purchase amounts in USD.",
		}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "replyhook_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
	}
}

// Handler serves the registry in Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncDecision records one stored decision.
func (m *Metrics) IncDecision() {
	m.decisionsTotal.Inc()
}

// IncPurchase records one stored purchase and its amount.
func (m *Metrics) IncPurchase(amount float64) {
	m.purchasesTotal.Inc()
	if amount > 0 {
		m.purchasesAmountUSD.Add(amount)
	}
}

// ObserveRequest records one completed HTTP request. The path label is
// the matched route template, not the raw URI, to keep cardinality
// bounded.
func (m *Metrics) ObserveRequest(method, path string, status int) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
