// Package metrics holds the prometheus collectors for the chat pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "supportbot"

// Chat request outcomes
const (
	OutcomeOK              = "ok"
	OutcomeInvalid         = "invalid"
	OutcomeStorageError    = "storage_error"
	OutcomeGenerationError = "generation_error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ChatRequests           *prometheus.CounterVec
	GenerationDuration     prometheus.Histogram
	ReplyFallbacks         prometheus.Counter
	HistoryPersistFailures prometheus.Counter
	StoreOperations        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests handled, by outcome.",
		}, []string{"outcome"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of calls to the generation provider.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		ReplyFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_fallbacks_total",
			Help:      "Replies replaced by the fallback text because the provider result had no usable text.",
		}),
		HistoryPersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "Assistant turns that could not be stored after a reply was produced.",
		}),
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Session store operations, by operation and result.",
		}, []string{"op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ChatRequests,
			m.GenerationDuration,
			m.ReplyFallbacks,
			m.HistoryPersistFailures,
			m.StoreOperations,
		)
	}
	return m
}

func (m *Metrics) ObserveChat(outcome string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGeneration(seconds float64) {
	if m == nil {
		return
	}
	m.GenerationDuration.Observe(seconds)
}

func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.ReplyFallbacks.Inc()
}

func (m *Metrics) ObservePersistFailure() {
	if m == nil {
		return
	}
	m.HistoryPersistFailures.Inc()
}

// ObserveStore records one store operation; err == nil counts as "ok".
func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOperations.WithLabelValues(op, result).Inc()
}
