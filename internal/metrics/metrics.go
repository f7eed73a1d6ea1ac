package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every eadrag collector. A dedicated registry keeps the
// textfile free of Go runtime series.
var Registry = prometheus.NewRegistry()

// Pipeline Prometheus metrics.
var (
	DocumentsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eadrag",
			Name:      "documents_processed_total",
			Help:      "Finding aids processed by extraction",
		},
		[]string{"status"}, // "ok" / "failed"
	)

	ChunksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eadrag",
			Name:      "chunks_created_total",
			Help:      "Chunks created per EAD section",
		},
		[]string{"section"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eadrag",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eadrag",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eadrag",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "eadrag",
			Name:      "index_entries",
			Help:      "Vectors in the last built or loaded index",
		},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "eadrag",
			Name:      "search_duration_seconds",
			Help:      "Nearest-neighbor search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eadrag",
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"model", "status"},
	)
)

var registerOnce sync.Once

// Register registers all collectors on Registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			DocumentsProcessedTotal,
			ChunksCreatedTotal,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingCacheTotal,
			IndexEntries,
			SearchDuration,
			GenerationRequestsTotal,
		)
	})
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
