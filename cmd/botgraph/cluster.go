package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/validation"
)

func clusterCmd(a *app) *cobra.Command {
	var (
		algorithm string
		k         int
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Run one clustering strategy and print the node assignment as JSON",
		Long: fmt.Sprintf(`Runs a clustering strategy over the snapshot and prints the mapping of
node id to cluster label. Labels are opaque: only equality between them
means anything.

Strategies: %v`, clustering.Names()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkClusterFlags(cmd, algorithm, k); err != nil {
				return err
			}
			alg, err := a.cfg.DefaultAlgorithm()
			if algorithm != "" {
				alg, err = clustering.ParseAlgorithm(algorithm)
			}
			if err != nil {
				return err
			}

			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := clustering.Run(g, alg, a.cfg.ClusteringOptions(alg, k))
			clusters := 0
			if res != nil {
				clusters = res.Clusters()
			}
			a.metrics.RecordClustering(alg.String(), err, time.Since(start), clusters)
			if err != nil {
				return err
			}
			a.logger.Info("clustering finished", logging.Algorithm(alg.String()), logging.Clusters(clusters))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Labels)
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "clustering strategy (default: clustering.default_algorithm)")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of clusters for spectral, agglomerative and hierarchical")
	return cmd
}

// checkClusterFlags applies the request rules of the HTTP API to the
// command line. An explicit --k 0 is rejected.
func checkClusterFlags(cmd *cobra.Command, algorithm string, k int) error {
	if cmd.Flags().Changed("k") && k == 0 {
		return fmt.Errorf("invalid --k: must be between %d and %d", validation.MinClusters, validation.MaxClusters)
	}
	if err := validation.ValidateClusterRequest(&validation.ClusterRequest{Algorithm: algorithm, K: k}); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
