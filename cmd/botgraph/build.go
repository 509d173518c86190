package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/ingest"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
)

func buildCmd(a *app) *cobra.Command {
	var (
		dataDir string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the graph snapshot from the annotation spreadsheets",
		Long: `Reads the bot description, feature, permission and screenshot
spreadsheets and writes the graph snapshot. Rows that cannot be used are
skipped and counted per source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := a.cfg.Sources()
			if dataDir != "" {
				src = ingest.DefaultSources(dataDir)
			}

			g, report, err := ingest.Build(ctx, src, a.logger)
			if err != nil {
				return err
			}
			a.metrics.RecordIngest(report.Rows, report.Skipped)

			store, err := a.openStore(ctx, output)
			if err != nil {
				return err
			}
			if err := store.Save(ctx, g); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			a.logger.Info("snapshot written",
				logging.Path(store.Location()),
				logging.Bots(report.Stats.ByType[graph.NodeBot]),
				logging.Features(report.Stats.ByType[graph.NodeFeature]))

			printBuildReport(cmd, store.Location(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding the spreadsheets under their standard names")
	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot location (defaults to snapshot.location)")
	return cmd
}

func printBuildReport(cmd *cobra.Command, location string, r *ingest.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s: %d nodes, %d edges\n", location, r.Stats.Nodes, r.Stats.Edges)

	types := make([]string, 0, len(r.Stats.ByType))
	for t := range r.Stats.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(out, "  %-12s %d\n", t, r.Stats.ByType[graph.NodeType(t)])
	}

	sources := make([]string, 0, len(r.Skipped))
	for s, n := range r.Skipped {
		if n > 0 {
			sources = append(sources, s)
		}
	}
	sort.Strings(sources)
	for _, s := range sources {
		fmt.Fprintf(out, "Skipped %d of %d %s rows\n", r.Skipped[s], r.Rows[s], s)
	}
}
