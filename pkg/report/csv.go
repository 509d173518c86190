// Package report writes analysis results as CSV, JSON and styled terminal
// text.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/cluso-botgraph/pkg/characterize"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
)

// Standard output file names.
const (
	FeatureMetricsFile    = "analysis_results.csv"
	ClusterProfileFile    = "cluster_feature_analysis.csv"
	BotDendrogramFile     = "rq1_dendrogram_bots.json"
	FeatureDendrogramFile = "rq2_dendrogram_features.json"
)

var (
	featureMetricsHeader = []string{"Feature", "Ubiquity", "Occurrences", "Entropy", "Top_Domain", "Domain_Concentration"}
	clusterProfileHeader = []string{"Cluster", "Feature", "Cluster_Presence", "Global_Presence", "Diff_From_Global"}
)

// round3 formats v with three decimals.
func round3(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if s == "-0.000" {
		return "0.000"
	}
	return s
}

// WriteFeatureMetrics writes one row per feature in the given order.
func WriteFeatureMetrics(w io.Writer, records []stats.FeatureStats) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Feature,
			round3(r.Ubiquity),
			strconv.Itoa(r.Occurrences),
			round3(r.Entropy),
			r.TopDomain,
			round3(r.Concentration),
		}
	}
	return writeCSV(w, featureMetricsHeader, rows)
}

// WriteClusterProfile writes one row per (cluster, feature) pair, clusters in
// label order and features in column order.
func WriteClusterProfile(w io.Writer, profile *characterize.ClusterProfile) error {
	presence := profile.Rows()
	rows := make([][]string, len(presence))
	for i, p := range presence {
		rows[i] = []string{
			strconv.Itoa(p.Cluster),
			p.Feature,
			round3(p.ClusterPresence),
			round3(p.GlobalPresence),
			round3(p.Diff),
		}
	}
	return writeCSV(w, clusterProfileHeader, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) (retErr error) {
	csvWriter := csv.NewWriter(w)
	defer func() {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
