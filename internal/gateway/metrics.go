package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "codex"
	metricsSubsystem = "gateway"

	refreshSuccess = "success"
	refreshFailure = "failure"
	refreshSkipped = "skipped"
)

// Metrics counts gateway decisions. A nil Registerer leaves the collectors
// unregistered.
type Metrics struct {
	requests        prometheus.Counter
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	waiters         prometheus.Counter
	retries         prometheus.Counter
	sessionClears   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_total",
			Help:      "Requests executed through the gateway.",
		}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "refreshes_total",
			Help:      "Credential refresh windows by result.",
		}, []string{"result"}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "refresh_duration_seconds",
			Help:      "Time the refresh lock was held.",
			Buckets:   prometheus.DefBuckets,
		}),
		waiters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "refresh_waiters_total",
			Help:      "Callers that waited on a refresh started by another caller.",
		}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "retries_total",
			Help:      "Original requests re-issued after a refresh window.",
		}),
		sessionClears: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "session_clears_total",
			Help:      "Local sessions cleared after an unrecoverable authorization failure.",
		}),
	}
}
