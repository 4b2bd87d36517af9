// Package metrics defines Prometheus collectors and the HTTP middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding and enrichment Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acervo",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "acervo",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acervo",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acervo",
			Name:      "embedding_cache_total",
			Help:      "Query-embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EnrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acervo",
			Name:      "enrichment_total",
			Help:      "Contextual enrichment outcomes",
		},
		[]string{"result"}, // "ok" / "skipped" / "failed"
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers embedding collectors. Must be called once from main.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(EnrichmentTotal)
	embMetricsRegistered = true
}
