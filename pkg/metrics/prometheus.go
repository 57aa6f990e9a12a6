// Package metrics provides Prometheus metrics for the boxbox pipeline.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Manager manages all Prometheus metrics for a pipeline run.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Provider metrics - every external call is counted per provider/endpoint
	providerRequests *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec

	// Fetch cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Round processing metrics
	roundsProcessed prometheus.Counter
	roundsSkipped   *prometheus.CounterVec

	// Event extraction metrics
	pitEventsKept      prometheus.Counter
	pitEventsDiscarded prometheus.Counter
	pitFallbackRounds  prometheus.Counter
	passEventsDetected prometheus.Counter

	// Export metrics
	documentsWritten prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "boxbox",
		subsystem: "pipeline",
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.providerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_requests_total",
		Help:      "Total number of external provider requests",
	}, []string{"provider", "endpoint"})

	m.providerErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_errors_total",
		Help:      "Total number of failed external provider requests",
	}, []string{"provider", "endpoint"})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_cache_hits_total",
		Help:      "Total number of provider responses served from the fetch cache",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_cache_misses_total",
		Help:      "Total number of provider requests that bypassed the fetch cache",
	})

	m.roundsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_processed_total",
		Help:      "Total number of rounds that produced rows",
	})

	m.roundsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_skipped_total",
		Help:      "Total number of rounds skipped, by reason",
	}, []string{"reason"})

	m.pitEventsKept = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pit_events_kept_total",
		Help:      "Total number of pit events that passed the validity filter",
	})

	m.pitEventsDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pit_events_discarded_total",
		Help:      "Total number of pit events outside the validity bounds (data-quality noise)",
	})

	m.pitFallbackRounds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pit_fallback_rounds_total",
		Help:      "Total number of rounds whose pit events came from the lap-table fallback",
	})

	m.passEventsDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pass_events_detected_total",
		Help:      "Total number of pass events emitted after cooldown de-duplication",
	})

	m.documentsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "documents_written_total",
		Help:      "Total number of export documents written",
	})
}

// Package-level recording helpers on the global manager.

// RecordProviderRequest counts one provider call.
func RecordProviderRequest(provider, endpoint string) {
	globalManager.providerRequests.WithLabelValues(provider, endpoint).Inc()
}

// RecordProviderError counts one failed provider call.
func RecordProviderError(provider, endpoint string) {
	globalManager.providerErrors.WithLabelValues(provider, endpoint).Inc()
}

// RecordCacheHit counts one fetch-cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss counts one fetch-cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordRoundProcessed counts one round that produced rows.
func RecordRoundProcessed() {
	globalManager.roundsProcessed.Inc()
}

// RecordRoundSkipped counts one skipped round with its reason.
func RecordRoundSkipped(reason string) {
	globalManager.roundsSkipped.WithLabelValues(reason).Inc()
}

// RecordPitEventsKept counts pit events that passed the validity filter.
func RecordPitEventsKept(n int) {
	if n > 0 {
		globalManager.pitEventsKept.Add(float64(n))
	}
}

// RecordPitEventsDiscarded counts pit events dropped by the validity filter.
func RecordPitEventsDiscarded(n int) {
	if n > 0 {
		globalManager.pitEventsDiscarded.Add(float64(n))
	}
}

// RecordPitFallbackRound counts one round served by the lap-table fallback.
func RecordPitFallbackRound() {
	globalManager.pitFallbackRounds.Inc()
}

// RecordPassEvents counts emitted pass events.
func RecordPassEvents(n int) {
	if n > 0 {
		globalManager.passEventsDetected.Add(float64(n))
	}
}

// RecordDocumentWritten counts one written export document.
func RecordDocumentWritten() {
	globalManager.documentsWritten.Inc()
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTo writes the current state of the global registry in the Prometheus
// text exposition format.
func WriteTo(w io.Writer) error {
	families, err := customRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
