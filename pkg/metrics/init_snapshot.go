package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSnapshotMetrics() {
	r.SnapshotLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "botgraph_snapshot_loads_total",
			Help: "Total number of snapshot loads",
		},
		[]string{"status"},
	)

	r.SnapshotLoadDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "botgraph_snapshot_load_duration_seconds",
			Help:    "Snapshot load latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.SnapshotNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "botgraph_snapshot_nodes_total",
			Help: "Number of nodes in the last loaded snapshot",
		},
	)

	r.SnapshotEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "botgraph_snapshot_edges_total",
			Help: "Number of edges in the last loaded snapshot",
		},
	)

	r.SnapshotBotsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "botgraph_snapshot_bots_total",
			Help: "Number of bot nodes in the last loaded snapshot",
		},
	)

	r.SnapshotFeaturesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "botgraph_snapshot_features_total",
			Help: "Number of feature nodes in the last loaded snapshot",
		},
	)
}
