package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.OrderTransition("PENDIENTE", "PAGADO")
	m.OrderTransition("PENDIENTE", "PAGADO")
	m.ReservationConflict()
	m.TicketPurchase("ok")
	m.TicketPurchase("conflict")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.orderTransitions.WithLabelValues("PENDIENTE", "PAGADO")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reservationConflicts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ticketPurchases.WithLabelValues("conflict")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/eventos/{id}", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_request_duration_seconds_count{method="GET",route="/eventos/{id}",status="200"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderTransition("PAGADO", "REEMBOLSADO")
		m.ReservationConflict()
		m.TicketPurchase("ok")
		m.ObserveRequest(http.MethodPost, "/ordenes", http.StatusCreated, time.Second)
	})
}
