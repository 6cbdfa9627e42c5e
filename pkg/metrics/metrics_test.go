package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, metric prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metric.Write(&m))
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordStatusChange("em_reparo")
	m.RecordStatusChange("em_reparo")
	m.RecordOrderCreated()
	m.RecordWhatsApp("sent")
	m.RecordWebhook("CHARGE.PAID", "recorded")
	m.ObserveHTTP("GET", "/api/orders", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, value(t, m.statusChanges.WithLabelValues("em_reparo")))
	assert.Equal(t, 1.0, value(t, m.ordersCreated))
	assert.Equal(t, 1.0, value(t, m.whatsappMessages.WithLabelValues("sent")))
	assert.Equal(t, 1.0, value(t, m.webhookEvents.WithLabelValues("CHARGE.PAID", "recorded")))
	assert.Equal(t, 1.0, value(t, m.httpRequests.WithLabelValues("GET", "/api/orders", "200")))
}

func TestMetrics_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	second := New(reg)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	assert.Equal(t, 2.0, value(t, first.ordersCreated))
}

func TestMetrics_InFlight(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.InFlightInc()
	m.InFlightInc()
	m.InFlightDec()
	assert.Equal(t, 1.0, value(t, m.httpInFlight))
}
