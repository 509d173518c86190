package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/characterize"
	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/report"
)

func clustersCmd(a *app) *cobra.Command {
	var (
		outDir    string
		k         int
		treeDepth int
	)

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Cluster bots hierarchically and characterize the clusters",
		Long: `Clusters bots by average-linkage Jaccard distance, picking the cluster
count by silhouette unless --k is given. Writes the per-cluster feature
presence as CSV and prints the distinguishing features of every cluster
together with a decision tree that explains the assignment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkClusterFlags(cmd, "", k); err != nil {
				return err
			}
			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			inc := matrix.Build(g)

			res, err := clustering.Hierarchy(inc, a.cfg.ClusteringOptions(clustering.Hierarchical, k))
			if err != nil {
				return err
			}
			labels := make(map[string]int, len(inc.Bots))
			for i, bot := range inc.Bots {
				labels[bot] = res.Labels[i]
			}
			a.logger.Info("bots clustered",
				logging.Clusters(res.Selection.K),
				logging.Float64("silhouette", res.Selection.Score),
				logging.Bool("scored", res.Selection.Scored))

			profile, err := characterize.Profile(inc, labels)
			if err != nil {
				return err
			}
			if err := writeFile(filepath.Join(outDir, report.ClusterProfileFile), func(w io.Writer) error {
				return report.WriteClusterProfile(w, profile)
			}); err != nil {
				return err
			}

			if treeDepth <= 0 {
				treeDepth = a.cfg.Clustering.TreeDepth
			}
			explanation, err := characterize.Explain(inc, labels, treeDepth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSelection(out, res.Selection)
			fmt.Fprintln(out, report.ClusterSummary(profile))
			fmt.Fprintln(out)
			fmt.Fprintln(out, report.ExplanationSummary(explanation))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output-dir", "o", ".", "directory for the report files")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of clusters (default: chosen by silhouette)")
	cmd.Flags().IntVar(&treeDepth, "tree-depth", 0, "maximum decision tree depth (default: clustering.tree_depth)")
	return cmd
}

func printSelection(w io.Writer, sel clustering.Selection) {
	if !sel.Scored {
		fmt.Fprintf(w, "k = %d\n\n", sel.K)
		return
	}
	for _, s := range sel.Scores {
		fmt.Fprintf(w, "k = %-2d silhouette %.3f\n", s.K, s.Score)
	}
	fmt.Fprintf(w, "Selected k = %d (silhouette %.3f)\n\n", sel.K, sel.Score)
}
