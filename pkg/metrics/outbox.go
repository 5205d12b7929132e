package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publisher loop outcomes.
type OutboxMetrics struct {
	publishDuration prometheus.Histogram
	published       prometheus.Counter
	failed          prometheus.Counter
	terminal        prometheus.Counter
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	publishDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of single event publishes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Events successfully handed to the broker.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Publish attempts that failed and will be retried.",
	})
	terminal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_terminal_total",
		Help: "Events abandoned after exhausting retry attempts.",
	})
	reg.MustRegister(publishDuration, published, failed, terminal)
	return &OutboxMetrics{
		publishDuration: publishDuration,
		published:       published,
		failed:          failed,
		terminal:        terminal,
	}
}

// ObservePublish records the duration for one publish attempt.
func (m *OutboxMetrics) ObservePublish(elapsed time.Duration) {
	if m == nil || m.publishDuration == nil {
		return
	}
	m.publishDuration.Observe(elapsed.Seconds())
}

// IncPublished increments the published counter.
func (m *OutboxMetrics) IncPublished() {
	if m == nil || m.published == nil {
		return
	}
	m.published.Inc()
}

// IncFailed increments the retryable-failure counter.
func (m *OutboxMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

// IncTerminal increments the abandoned-event counter.
func (m *OutboxMetrics) IncTerminal() {
	if m == nil || m.terminal == nil {
		return
	}
	m.terminal.Inc()
}
