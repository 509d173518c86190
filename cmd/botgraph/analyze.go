package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/report"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
)

func analyzeCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute feature metrics and the bot and feature dendrograms",
		Long: `Computes ubiquity, domain entropy and domain concentration for every
feature, writes them as CSV, and writes average-linkage Jaccard dendrograms
of bots and of features as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			inc := matrix.Build(g)
			nBots, nFeatures := inc.Dims()
			a.logger.Info("incidence matrix built", logging.Bots(nBots), logging.Features(nFeatures))

			records := stats.SortForReport(stats.Compute(inc))
			if err := writeFile(filepath.Join(outDir, report.FeatureMetricsFile), func(w io.Writer) error {
				return report.WriteFeatureMetrics(w, records)
			}); err != nil {
				return err
			}

			opts := a.cfg.ClusteringOptions(clustering.Hierarchical, 0)
			if err := a.writeDendrogram(outDir, report.BotDendrogramFile, inc.Bots, func() (*clustering.HierarchicalResult, error) {
				return clustering.Hierarchy(inc, opts)
			}); err != nil {
				return err
			}
			if err := a.writeDendrogram(outDir, report.FeatureDendrogramFile, inc.Features, func() (*clustering.HierarchicalResult, error) {
				return clustering.FeatureHierarchy(inc, opts)
			}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.FeatureSummary(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output-dir", "o", ".", "directory for the report files")
	return cmd
}

// writeDendrogram clusters with fit and writes the tree. Too few
// observations to cluster is logged and skipped.
func (a *app) writeDendrogram(dir, name string, names []string, fit func() (*clustering.HierarchicalResult, error)) error {
	res, err := fit()
	if errors.Is(err, algorithms.ErrInsufficientData) {
		a.logger.Warn("dendrogram skipped", logging.Path(name), logging.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, name), func(w io.Writer) error {
		return report.WriteDendrogram(w, res.Dendrogram, names)
	})
}

// writeFile creates path and hands it to write, creating parent
// directories as needed.
func writeFile(path string, write func(io.Writer) error) (retErr error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("close %s: %w", path, err)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logging.DefaultLogger().Info("report written", logging.Path(path))
	return nil
}
