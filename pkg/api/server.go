// Package api serves the graph snapshot, clustering and characterization
// over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-botgraph/pkg/api/middleware"
	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/config"
	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/graphql"
	"github.com/dd0wney/cluso-botgraph/pkg/health"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
	"github.com/dd0wney/cluso-botgraph/pkg/metrics"
	"github.com/dd0wney/cluso-botgraph/pkg/snapshot"
)

// Server represents the HTTP API server. It holds no graph state: every
// request reads the snapshot afresh.
type Server struct {
	cfg             *config.Config
	store           snapshot.Store
	logger          logging.Logger
	metricsRegistry *metrics.Registry
	healthChecker   *health.HealthChecker
	graphqlHandler  *graphql.GraphQLHandler
	defaultAlg      clustering.Algorithm
	startTime       time.Time
	version         string
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Version string
}

// NewServer creates a new API server over store.
func NewServer(cfg *config.Config, store snapshot.Store, opts Options) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	defaultAlg, err := cfg.DefaultAlgorithm()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:             cfg,
		store:           store,
		logger:          opts.Logger.With(logging.Component("api")),
		metricsRegistry: opts.Metrics,
		healthChecker:   health.NewHealthChecker(),
		defaultAlg:      defaultAlg,
		startTime:       time.Now(),
		version:         opts.Version,
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		DefaultAlgorithm: defaultAlg,
		Options:          cfg.ClusteringOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}
	s.graphqlHandler = graphql.NewGraphQLHandler(schema, s.loadGraph, s.logger)

	s.healthChecker.RegisterLivenessCheck("process", health.SimpleCheck("process"))
	s.healthChecker.RegisterReadinessCheck("snapshot", health.SnapshotCheck(store.Location(), s.loadGraph))
	s.healthChecker.RegisterCheck("snapshot", health.SnapshotCheck(store.Location(), s.loadGraph))
	s.healthChecker.RegisterCheck("memory", health.MemoryCheck())

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("POST /cluster", s.handleCluster)
	mux.HandleFunc("GET /features", s.handleFeatures)
	mux.HandleFunc("GET /profile", s.handleProfile)
	mux.Handle("/graphql", middleware.BodySizeLimit(middleware.DefaultMaxBodyBytes)(s.graphqlHandler))

	mux.HandleFunc("GET /health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.HandleFunc("GET /health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /version", s.handleVersion)

	if s.cfg.Server.StaticDir != "" {
		mux.Handle("GET /", newSPAHandler(s.cfg.Server.StaticDir))
	}

	return middleware.Chain(mux,
		middleware.PanicRecovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.SecurityHeaders(),
		middleware.CORS(middleware.NewCORSConfig(s.cfg.Server.CORSOrigins)),
		middleware.Metrics(s.metricsRegistry),
	)
}

// HealthChecker exposes the checker so callers can add checks.
func (s *Server) HealthChecker() *health.HealthChecker {
	return s.healthChecker
}

// loadGraph reads and decodes the snapshot, recording load metrics.
func (s *Server) loadGraph(ctx context.Context) (*graph.Graph, error) {
	start := time.Now()
	g, err := s.store.Load(ctx)
	s.metricsRegistry.RecordSnapshotLoad(err, time.Since(start))
	if err != nil {
		return nil, err
	}
	st := g.Stats()
	s.metricsRegistry.SetSnapshotSize(st.Nodes, st.Edges, st.ByType[graph.NodeBot], st.ByType[graph.NodeFeature])
	return g, nil
}

// cluster runs alg on g and records the run.
func (s *Server) cluster(g *graph.Graph, alg clustering.Algorithm, k int) (*clustering.Result, error) {
	start := time.Now()
	res, err := clustering.Run(g, alg, s.cfg.ClusteringOptions(alg, k))
	clusters := 0
	if res != nil {
		clusters = res.Clusters()
	}
	s.metricsRegistry.RecordClustering(alg.String(), err, time.Since(start), clusters)
	if err != nil {
		s.logger.Warn("clustering failed", logging.Algorithm(alg.String()), logging.Error(err))
	}
	return res, err
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metricsRegistry.UpdateSystemMetrics(s.startTime)
	promhttp.HandlerFor(s.metricsRegistry.GetPrometheusRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}
