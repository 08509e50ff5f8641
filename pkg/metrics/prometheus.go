// Package metrics provides Prometheus metrics for the Crest badge engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the badge engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Catalog metrics - load and refresh behavior
	catalogCacheHits     prometheus.Counter
	catalogCacheMisses   prometheus.Counter
	catalogLoadErrors    prometheus.Counter
	catalogRefreshes     prometheus.Counter
	catalogRefreshErrors prometheus.Counter
	catalogSize          prometheus.Gauge

	// Enrichment metrics - the two-tier metadata pipeline
	metadataCacheHits      prometheus.Counter
	metadataCacheFailOpens prometheus.Counter
	metadataFetchErrors    prometheus.Counter
	metadataFetchCoalesced prometheus.Counter
	metadataFetchLatency   prometheus.Histogram
	enrichmentBatches      prometheus.Counter
	discoverySweeps        prometheus.Counter
	pendingBadges          prometheus.Gauge

	// HTTP metrics - the viewer-facing status surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "crest",
		subsystem:        "badges",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.catalogCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_cache_hits_total",
		Help:      "Total number of catalog loads served from cache",
	})

	m.catalogCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_cache_misses_total",
		Help:      "Total number of catalog loads that fell back to the remote",
	})

	m.catalogLoadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_load_errors_total",
		Help:      "Total number of catalog loads that failed after the remote fallback",
	})

	m.catalogRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_refreshes_total",
		Help:      "Total number of successful force refreshes",
	})

	m.catalogRefreshErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_refresh_errors_total",
		Help:      "Total number of failed force refreshes (last-good catalog retained)",
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_size",
		Help:      "Number of flattened badge versions in the held catalog",
	})

	m.metadataCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metadata_cache_hits_total",
		Help:      "Total number of badges enriched from the batch cache read",
	})

	m.metadataCacheFailOpens = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metadata_cache_fail_opens_total",
		Help:      "Total number of batch cache reads that failed open to remote fetches",
	})

	m.metadataFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metadata_fetch_errors_total",
		Help:      "Total number of isolated per-badge metadata fetch failures",
	})

	m.metadataFetchCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metadata_fetch_coalesced_total",
		Help:      "Total number of duplicate in-flight fetches collapsed into a shared flight",
	})

	m.metadataFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "metadata_fetch_latency_milliseconds",
		Help:      "Histogram of remote metadata fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.enrichmentBatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_batches_total",
		Help:      "Total number of fixed-width fetch batches joined",
	})

	m.discoverySweeps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "discovery_sweeps_total",
		Help:      "Total number of missing-metadata discovery sweeps",
	})

	m.pendingBadges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_badges",
		Help:      "Number of badges whose metadata is still absent",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Catalog helpers.

func RecordCatalogCacheHit() {
	if globalManager.enabled {
		globalManager.catalogCacheHits.Inc()
	}
}

func RecordCatalogCacheMiss() {
	if globalManager.enabled {
		globalManager.catalogCacheMisses.Inc()
	}
}

func RecordCatalogLoadError() {
	if globalManager.enabled {
		globalManager.catalogLoadErrors.Inc()
	}
}

func RecordCatalogRefresh() {
	if globalManager.enabled {
		globalManager.catalogRefreshes.Inc()
	}
}

func RecordCatalogRefreshError() {
	if globalManager.enabled {
		globalManager.catalogRefreshErrors.Inc()
	}
}

func UpdateCatalogSize(size int) {
	if globalManager.enabled {
		globalManager.catalogSize.Set(float64(size))
	}
}

// Enrichment helpers.

func RecordMetadataCacheHit() {
	if globalManager.enabled {
		globalManager.metadataCacheHits.Inc()
	}
}

func RecordMetadataCacheFailOpen() {
	if globalManager.enabled {
		globalManager.metadataCacheFailOpens.Inc()
	}
}

func RecordMetadataFetchError() {
	if globalManager.enabled {
		globalManager.metadataFetchErrors.Inc()
	}
}

func RecordMetadataFetchCoalesced() {
	if globalManager.enabled {
		globalManager.metadataFetchCoalesced.Inc()
	}
}

func RecordMetadataFetchLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.metadataFetchLatency.Observe(latencyMs)
	}
}

func RecordEnrichmentBatch() {
	if globalManager.enabled {
		globalManager.enrichmentBatches.Inc()
	}
}

func RecordDiscoverySweep() {
	if globalManager.enabled {
		globalManager.discoverySweeps.Inc()
	}
}

func UpdatePendingBadges(count int) {
	if globalManager.enabled {
		globalManager.pendingBadges.Set(float64(count))
	}
}

// HTTP helpers.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// GetRegistry returns the custom registry backing the global manager, for
// exposing via an HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
