package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Clustering Metrics
	ClusteringRunsTotal    *prometheus.CounterVec
	ClusteringDuration     *prometheus.HistogramVec
	ClusteringClustersSize *prometheus.HistogramVec

	// Snapshot Metrics
	SnapshotLoadsTotal    *prometheus.CounterVec
	SnapshotLoadDuration  prometheus.Histogram
	SnapshotNodesTotal    prometheus.Gauge
	SnapshotEdgesTotal    prometheus.Gauge
	SnapshotBotsTotal     prometheus.Gauge
	SnapshotFeaturesTotal prometheus.Gauge

	// Ingest Metrics
	IngestRowsTotal        *prometheus.CounterVec
	IngestRowsSkippedTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initClusteringMetrics()
	r.initSnapshotMetrics()
	r.initIngestMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
