package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder holds the payment reconciliation counters. It registers against
// its own registry so tests never collide on the global default.
type Recorder struct {
	registry *prometheus.Registry

	webhookEvents     *prometheus.CounterVec
	signatureFailures prometheus.Counter
	reconcileOutcomes *prometheus.CounterVec
	stockShort        prometheus.Counter
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "familysite_webhook_events_total",
			Help: "Webhook deliveries by event type and handling outcome.",
		}, []string{"event_type", "outcome"}),
		signatureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "familysite_webhook_signature_failures_total",
			Help: "Webhook deliveries rejected for a bad signature.",
		}),
		reconcileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "familysite_reconcile_outcomes_total",
			Help: "Payment reconciliation attempts by reference kind and outcome.",
		}, []string{"kind", "outcome"}),
		stockShort: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "familysite_orders_stock_short_total",
			Help: "Paid orders parked for refund because stock ran out.",
		}),
	}

	registry.MustRegister(r.webhookEvents, r.signatureFailures, r.reconcileOutcomes, r.stockShort)
	return r
}

// Registry exposes the underlying registry for the /metrics handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) WebhookEvent(eventType, outcome string) {
	r.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (r *Recorder) SignatureFailure() {
	r.signatureFailures.Inc()
}

func (r *Recorder) ReconcileOutcome(kind, outcome string) {
	r.reconcileOutcomes.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) StockShort() {
	r.stockShort.Inc()
}
