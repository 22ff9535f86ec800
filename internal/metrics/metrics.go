package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph store
	GraphQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "companion_graph_query_duration_seconds",
			Help:    "Duration of graph store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	GraphQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companion_graph_query_errors_total",
			Help: "Total number of failed graph store queries",
		},
		[]string{"operation"},
	)

	// Recommendations
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companion_recommendations_total",
			Help: "Total number of recommendation requests by strategy",
		},
		[]string{"strategy"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "companion_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	BranchCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "companion_recommendation_candidates",
			Help:    "Number of candidates produced per matcher branch",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"branch"}, // "graph", "neural"
	)

	// Embeddings
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "companion_embedding_training_duration_seconds",
			Help:    "Duration of a full fetch/train/persist embedding run",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	EmbeddingNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "companion_embedding_nodes",
			Help: "Number of nodes in the last trained embedding space",
		},
	)

	SimilaritySpaceNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "companion_similarity_space_nodes",
			Help: "Number of vectors loaded in the similarity matcher",
		},
	)

	SimilarityUntrained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "companion_similarity_untrained",
			Help: "1 when the similarity matcher has no embeddings loaded",
		},
	)
)

// ObserveGraphQuery records the latency and outcome of one store call.
func ObserveGraphQuery(operation string, start time.Time, err error) {
	GraphQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		GraphQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetSimilaritySpace updates the matcher gauges after a (re)load.
func SetSimilaritySpace(nodes int) {
	SimilaritySpaceNodes.Set(float64(nodes))
	if nodes == 0 {
		SimilarityUntrained.Set(1)
		return
	}
	SimilarityUntrained.Set(0)
}
