package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion pipeline Prometheus metrics.
var (
	IngestJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acervo",
			Name:      "ingest_jobs_total",
			Help:      "Ingestion jobs by final outcome",
		},
		[]string{"outcome"}, // "concluded" / "error" / "cancelled"
	)

	IngestChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "acervo",
			Name:      "ingest_chunks_total",
			Help:      "Chunks processed by the ingestion worker",
		},
		[]string{"result"}, // "stored" / "embed_failed" / "store_failed"
	)

	IngestJobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "acervo",
			Name:      "ingest_job_duration_seconds",
			Help:      "Wall time spent processing one ingestion job",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "acervo",
			Name:      "ingest_queue_depth",
			Help:      "Pending ingestion jobs at last poll",
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion collectors. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestJobsTotal)
	prometheus.MustRegister(IngestChunksTotal)
	prometheus.MustRegister(IngestJobDuration)
	prometheus.MustRegister(QueueDepth)
	ingestMetricsRegistered = true
}
