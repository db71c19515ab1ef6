package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventingMetrics records outbox publishing and consumer delivery outcomes.
type EventingMetrics struct {
	publishDuration *prometheus.HistogramVec
	published       *prometheus.CounterVec
	publishFailed   *prometheus.CounterVec
	consumed        *prometheus.CounterVec
	consumeFailed   *prometheus.CounterVec
	duplicates      *prometheus.CounterVec
}

// NewEventingMetrics registers the eventing metrics on the provided registerer.
func NewEventingMetrics(reg prometheus.Registerer) *EventingMetrics {
	if reg == nil {
		return &EventingMetrics{}
	}
	publishDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of outbox publish attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published to Pub/Sub.",
	}, []string{"event_type"})
	publishFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_events_consumed_total",
		Help: "Domain events processed by consumers.",
	}, []string{"consumer", "event_type"})
	consumeFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_events_consume_failures_total",
		Help: "Domain event handler failures.",
	}, []string{"consumer", "event_type"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_events_duplicates_total",
		Help: "Domain events skipped by the idempotency guard.",
	}, []string{"consumer"})
	reg.MustRegister(publishDuration, published, publishFailed, consumed, consumeFailed, duplicates)
	return &EventingMetrics{
		publishDuration: publishDuration,
		published:       published,
		publishFailed:   publishFailed,
		consumed:        consumed,
		consumeFailed:   consumeFailed,
		duplicates:      duplicates,
	}
}

// ObservePublish records a successful publish with its duration.
func (m *EventingMetrics) ObservePublish(eventType string, duration time.Duration) {
	if m == nil || m.published == nil {
		return
	}
	m.publishDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncPublishFailure increments the failure counter for the event type.
func (m *EventingMetrics) IncPublishFailure(eventType string) {
	if m == nil || m.publishFailed == nil {
		return
	}
	m.publishFailed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncConsumed increments the processed counter for a consumer.
func (m *EventingMetrics) IncConsumed(consumer, eventType string) {
	if m == nil || m.consumed == nil {
		return
	}
	m.consumed.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// IncConsumeFailure increments the handler failure counter for a consumer.
func (m *EventingMetrics) IncConsumeFailure(consumer, eventType string) {
	if m == nil || m.consumeFailed == nil {
		return
	}
	m.consumeFailed.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// IncDuplicate increments the duplicate-delivery counter for a consumer.
func (m *EventingMetrics) IncDuplicate(consumer string) {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.WithLabelValues(normalizeLabel(consumer)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
