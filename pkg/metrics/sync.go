package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records metadata for catalog/content sync cycles.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	backoff  *prometheus.GaugeVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_cycle_duration_seconds",
		Help:    "Duration of sync cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"target"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycle_success",
		Help: "Successful sync cycles.",
	}, []string{"target"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycle_failure",
		Help: "Failed sync cycles.",
	}, []string{"target"})
	backoff := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sync_poll_interval_seconds",
		Help: "Current poll interval after backoff adjustments.",
	}, []string{"target"})
	reg.MustRegister(duration, success, failure, backoff)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		backoff:  backoff,
	}
}

// ObserveDuration records the duration for the named sync target.
func (s *SyncMetrics) ObserveDuration(target string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(target)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named target.
func (s *SyncMetrics) IncSuccess(target string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(target)).Inc()
}

// IncFailure increments the failure counter for the named target.
func (s *SyncMetrics) IncFailure(target string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(target)).Inc()
}

// SetInterval publishes the poller's current interval.
func (s *SyncMetrics) SetInterval(target string, interval time.Duration) {
	if s == nil || s.backoff == nil {
		return
	}
	s.backoff.WithLabelValues(normalizeLabel(target)).Set(interval.Seconds())
}

func normalizeLabel(target string) string {
	if target == "" {
		return "unknown"
	}
	return target
}
