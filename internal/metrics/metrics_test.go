package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.OrderAccepted()
	m.OrderAccepted()
	m.OrderDuplicate()
	m.OrderSent("D", 5*time.Millisecond)
	m.TranslationFailed("symbol")
	m.SessionState(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersDuplicate))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersSent.WithLabelValues("D")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.translationFailures.WithLabelValues("symbol")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionUp))

	done := m.StreamOpened()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeStreams))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeStreams))
}

func TestMetrics_HandlerServesGauges(t *testing.T) {
	m := New()
	m.Gauge("queue_depth", "Pending forward requests.", func() float64 { return 3 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "fixgw_queue_depth 3"), body)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderAccepted()
		m.OrderSent("D", time.Second)
		m.SessionState(false)
		m.StreamOpened()()
		m.Gauge("x", "y", func() float64 { return 0 })
	})
}
