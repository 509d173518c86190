package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initClusteringMetrics() {
	r.ClusteringRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "botgraph_clustering_runs_total",
			Help: "Total number of clustering runs",
		},
		[]string{"algorithm", "status"},
	)

	r.ClusteringDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "botgraph_clustering_duration_seconds",
			Help:    "Clustering run latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"algorithm"},
	)

	r.ClusteringClustersSize = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "botgraph_clustering_clusters_found",
			Help:    "Number of distinct bot clusters produced by a run",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 32},
		},
		[]string{"algorithm"},
	)
}
