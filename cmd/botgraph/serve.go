package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-botgraph/pkg/api"
	"github.com/dd0wney/cluso-botgraph/pkg/config"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		port      int
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot, clustering and characterization over HTTP",
		Long: `Starts the HTTP service. Every request reads the snapshot afresh, so a
rebuilt snapshot is picked up without a restart. SIGHUP reloads the config
file and applies its log level; SIGINT and SIGTERM drain connections and
exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("static-dir") {
				a.cfg.Server.StaticDir = staticDir
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			store, err := a.openStore(ctx, "")
			if err != nil {
				return err
			}
			srv, err := api.NewServer(a.cfg, store, api.Options{
				Logger:  a.logger,
				Metrics: a.metrics,
				Version: Version,
			})
			if err != nil {
				return err
			}

			gs := server.NewGracefulServer(a.cfg.Addr(), srv.Handler(), server.Options{
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				IdleTimeout:     a.cfg.Server.IdleTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			}, a.logger)
			gs.SetConfigReloadFunc(a.reload)

			a.logger.Info("starting server",
				logging.String("addr", a.cfg.Addr()),
				logging.Path(store.Location()),
				logging.String("version", Version))
			return gs.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "listen port")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "directory of the built frontend to serve at /")
	return cmd
}

// reload re-reads the configuration and applies the settings that can
// change while serving. A --log-level flag keeps precedence.
func (a *app) reload() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel == "" {
		a.logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
		a.logger.Info("log level applied", logging.String("level", strings.ToLower(cfg.Logging.Level)))
	}
	return nil
}
