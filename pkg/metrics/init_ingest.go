package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIngestMetrics() {
	r.IngestRowsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "botgraph_ingest_rows_total",
			Help: "Total number of CSV rows read by source",
		},
		[]string{"source"},
	)

	r.IngestRowsSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "botgraph_ingest_rows_skipped_total",
			Help: "CSV rows skipped for unknown references, by source",
		},
		[]string{"source"},
	)
}
