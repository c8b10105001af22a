package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	t.Run("decision counter", func(t *testing.T) {
		m := New()
		m.IncDecision()
		m.IncDecision()
		assert.Equal(t, 2.0, testutil.ToFloat64(m.decisionsTotal))
	})

	t.Run("purchase counters track count and exact amount", func(t *testing.T) {
		m := New()
		m.IncPurchase(19.99)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.purchasesTotal))
		assert.Equal(t, 19.99, testutil.ToFloat64(m.purchasesAmountUSD))
	})

	t.Run("zero or negative amounts do not move the sum", func(t *testing.T) {
		m := New()
		m.IncPurchase(0)
		m.IncPurchase(-5)
		assert.Equal(t, 2.0, testutil.ToFloat64(m.purchasesTotal))
		assert.Equal(t, 0.0, testutil.ToFloat64(m.purchasesAmountUSD))
	})

	t.Run("http requests labeled by method path status", func(t *testing.T) {
		m := New()
		m.ObserveRequest(http.MethodPost, "/inbound", 200)
		m.ObserveRequest(http.MethodPost, "/inbound", 200)
		m.ObserveRequest(http.MethodGet, "/healthz", 200)

		c := m.httpRequestsTotal.WithLabelValues("POST", "/inbound", "200")
		assert.Equal(t, 2.0, testutil.ToFloat64(c))
	})
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.IncDecision()
	m.IncPurchase(19.99)
	m.ObserveRequest(http.MethodGet, "/", 200)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "replyhook_decisions_total 1")
	assert.Contains(t, body, "replyhook_purchases_total 1")
	assert.Contains(t, body, "replyhook_purchases_amount_usd 19.99")
	assert.Contains(t, body, `replyhook_http_requests_total{method="GET",path="/",status="200"} 1`)
}
