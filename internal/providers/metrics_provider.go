package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dupescan/internal/structures"
)

type MetricsProviderInterface interface {
	IncFilesEnumerated()
	IncFingerprintsBuilt()
	IncExtractionErrors(kind string)
	AddPairsCompared(n int)
	SetDuplicateGroups(count int)
	ObserveScanDuration(phase string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
}

type MetricsProvider struct {
	filesEnumerated   prometheus.Counter
	fingerprintsBuilt prometheus.Counter
	extractionErrors  *prometheus.CounterVec
	pairsCompared     prometheus.Counter
	duplicateGroups   prometheus.Gauge
	scanDuration      *prometheus.HistogramVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

func (m *MetricsProvider) IncFilesEnumerated()   { m.filesEnumerated.Inc() }
func (m *MetricsProvider) IncFingerprintsBuilt() { m.fingerprintsBuilt.Inc() }

func (m *MetricsProvider) IncExtractionErrors(kind string) {
	m.extractionErrors.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) AddPairsCompared(n int) {
	m.pairsCompared.Add(float64(n))
}

func (m *MetricsProvider) SetDuplicateGroups(count int) {
	m.duplicateGroups.Set(float64(count))
}

func (m *MetricsProvider) ObserveScanDuration(phase string, duration time.Duration) {
	m.scanDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits()   { m.cacheHits.Inc() }
func (m *MetricsProvider) IncCacheMisses() { m.cacheMisses.Inc() }

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		filesEnumerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupescan_files_enumerated_total",
			Help: "Total number of files reconciled into the catalog",
		}),

		fingerprintsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupescan_fingerprints_built_total",
			Help: "Total number of files whose fingerprints were sampled",
		}),

		extractionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dupescan_extraction_errors_total",
			Help: "Total decoder failures by kind",
		}, []string{"kind"}),

		pairsCompared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupescan_pairs_compared_total",
			Help: "Total number of record pairs run through the comparator",
		}),

		duplicateGroups: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dupescan_duplicate_groups",
			Help: "Number of duplicate groups found by the last scan",
		}),

		scanDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dupescan_phase_duration_seconds",
			Help:    "Duration of scan phases in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"phase"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupescan_thumbnail_cache_hits_total",
			Help: "Total number of preview thumbnail cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupescan_thumbnail_cache_misses_total",
			Help: "Total number of preview thumbnail cache misses",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncFilesEnumerated()                           {}
func (n *noopMetrics) IncFingerprintsBuilt()                         {}
func (n *noopMetrics) IncExtractionErrors(_ string)                  {}
func (n *noopMetrics) AddPairsCompared(_ int)                        {}
func (n *noopMetrics) SetDuplicateGroups(_ int)                      {}
func (n *noopMetrics) ObserveScanDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                 {}
func (n *noopMetrics) IncCacheMisses()                               {}
