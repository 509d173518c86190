// Command botgraph builds the bot capability graph from the annotation
// spreadsheets, analyses it and serves it to the visualization frontend.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/config"
	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/metrics"
	"github.com/dd0wney/cluso-botgraph/pkg/snapshot"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// app carries the state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "botgraph",
		Short: "Bot capability graph builder, analyser and server",
		Long: `botgraph turns the bot annotation spreadsheets into a typed graph of
bots, features, domains and relations, computes feature metrics and bot
clusterings over it, and serves the snapshot to the visualization.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultConfigFile, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		buildCmd(a),
		analyzeCmd(a),
		clustersCmd(a),
		clusterCmd(a),
		serveCmd(a),
		browseCmd(a),
		versionCmd(),
	)
	return rootCmd
}

// setup loads the configuration and installs the logger. Logs go to stderr
// so command output on stdout stays machine readable.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(a.logLevel)
	}
	a.cfg = cfg

	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Logging.Level))
	logging.SetDefaultLogger(logger)
	a.logger = logger.With(logging.String("command", cmd.Name()))
	a.metrics = metrics.DefaultRegistry()
	return nil
}

// openStore opens the snapshot at location, or at the configured location
// when it is empty.
func (a *app) openStore(ctx context.Context, location string) (snapshot.Store, error) {
	if location == "" {
		location = a.cfg.Snapshot.Location
	}
	return snapshot.Open(ctx, location, a.cfg.SnapshotOptions())
}

// loadGraph reads the configured snapshot.
func (a *app) loadGraph(ctx context.Context) (*graph.Graph, error) {
	store, err := a.openStore(ctx, "")
	if err != nil {
		return nil, err
	}
	timer := logging.StartTimer(a.logger, "snapshot loaded", logging.Path(store.Location()))
	g, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", store.Location(), err)
	}
	st := g.Stats()
	timer.End(logging.Int("nodes", st.Nodes), logging.Int("edges", st.Edges))
	return g, nil
}
