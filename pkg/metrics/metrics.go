package metrics

import (
	"runtime"
	"time"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks the start of a request
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks the end of a request
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordClustering records one clustering run. clusters is ignored for
// failed runs.
func (r *Registry) RecordClustering(algorithm string, err error, duration time.Duration, clusters int) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.ClusteringRunsTotal.WithLabelValues(algorithm, status).Inc()
	r.ClusteringDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if err == nil {
		r.ClusteringClustersSize.WithLabelValues(algorithm).Observe(float64(clusters))
	}
}

// RecordSnapshotLoad records a snapshot load attempt
func (r *Registry) RecordSnapshotLoad(err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.SnapshotLoadsTotal.WithLabelValues(status).Inc()
	r.SnapshotLoadDuration.Observe(duration.Seconds())
}

// SetSnapshotSize updates the gauges describing the last loaded snapshot
func (r *Registry) SetSnapshotSize(nodes, edges, bots, features int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.SnapshotNodesTotal.Set(float64(nodes))
	r.SnapshotEdgesTotal.Set(float64(edges))
	r.SnapshotBotsTotal.Set(float64(bots))
	r.SnapshotFeaturesTotal.Set(float64(features))
}

// RecordIngest adds per-source row and skip counts of one build
func (r *Registry) RecordIngest(rows, skipped map[string]int) {
	for source, n := range rows {
		r.IngestRowsTotal.WithLabelValues(source).Add(float64(n))
	}
	for source, n := range skipped {
		r.IngestRowsSkippedTotal.WithLabelValues(source).Add(float64(n))
	}
}

// UpdateSystemMetrics refreshes uptime, goroutine and memory gauges
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
