package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersCreated     prometheus.Counter
	webhookEvents     *prometheus.CounterVec
	notificationsSent prometheus.Counter
	rateLimitDenied   prometheus.Counter
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// New configures the domain instruments on the given registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payflow_payment_orders_created_total",
			Help: "Payment orders opened with the gateway.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_webhook_events_total",
			Help: "Reconciled payment events by status.",
		}, []string{"status"}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payflow_notifications_sent_total",
			Help: "Payment notifications recorded.",
		}),
		rateLimitDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payflow_rate_limit_denied_total",
			Help: "Requests rejected by the order rate limiter.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.webhookEvents, m.notificationsSent, m.rateLimitDenied)
	return m
}

func (m *Metrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) RecordWebhookEvent(status string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordNotificationSent() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

func (m *Metrics) RecordRateLimitDenied() {
	if m == nil {
		return
	}
	m.rateLimitDenied.Inc()
}
