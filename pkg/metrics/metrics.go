package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — HTTP-метрики и счётчики предметной области.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	statusChanges    *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	whatsappMessages *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "os_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "os_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"})),
		httpInFlight: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "os_http_requests_in_flight",
			Help: "Number of HTTP requests being served",
		})),
		statusChanges: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "os_order_status_changes_total",
			Help: "Order status transitions by target status",
		}, []string{"to"})),
		ordersCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "os_orders_created_total",
			Help: "Total number of work orders opened",
		})),
		whatsappMessages: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "os_whatsapp_messages_total",
			Help: "WhatsApp messages by result (sent, failed, skipped)",
		}, []string{"result"})),
		webhookEvents: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "os_payment_webhook_events_total",
			Help: "Payment webhook events by event type and outcome",
		}, []string{"event", "outcome"})),
	}
}

// register возвращает уже зарегистрированный коллектор того же имени вместо паники.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %T", are.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) InFlightInc() { m.httpInFlight.Inc() }
func (m *Metrics) InFlightDec() { m.httpInFlight.Dec() }

func (m *Metrics) RecordStatusChange(to string) { m.statusChanges.WithLabelValues(to).Inc() }
func (m *Metrics) RecordOrderCreated()          { m.ordersCreated.Inc() }

func (m *Metrics) RecordWhatsApp(result string) { m.whatsappMessages.WithLabelValues(result).Inc() }

func (m *Metrics) RecordWebhook(event, outcome string) {
	m.webhookEvents.WithLabelValues(event, outcome).Inc()
}
