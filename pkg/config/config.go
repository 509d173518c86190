// Package config loads service and CLI settings from a YAML file, a .env
// file and BOTGRAPH_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/ingest"
	"github.com/dd0wney/cluso-botgraph/pkg/snapshot"
	"github.com/dd0wney/cluso-botgraph/pkg/validation"
)

// Defaults.
const (
	DefaultConfigFile       = "botgraph.yaml"
	DefaultDataDir          = "data"
	DefaultSnapshotLocation = "static_graph.json"
	DefaultPort             = 8000
	DefaultTreeDepth        = 4
	DefaultLogLevel         = "info"
)

// Config is the full application configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Server     ServerConfig     `yaml:"server"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DataConfig locates the annotation spreadsheets. Dir fills in any source
// left empty with its standard file name.
type DataConfig struct {
	Dir     string         `yaml:"dir"`
	Sources ingest.Sources `yaml:"sources" validate:"-"`
}

// SnapshotConfig locates the graph document.
type SnapshotConfig struct {
	Location string             `yaml:"location" validate:"required"`
	S3       snapshot.S3Options `yaml:"s3"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	StaticDir       string        `yaml:"static_dir"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ClusteringConfig holds the clustering defaults.
type ClusteringConfig struct {
	DefaultAlgorithm      string `yaml:"default_algorithm"`
	SpectralClusters      int    `yaml:"spectral_clusters" validate:"min=2,max=32"`
	AgglomerativeClusters int    `yaml:"agglomerative_clusters" validate:"min=2,max=32"`
	MaxAutoK              int    `yaml:"max_auto_k" validate:"min=2,max=32"`
	TreeDepth             int    `yaml:"tree_depth" validate:"min=1,max=16"`
	Seed                  uint64 `yaml:"seed"`
	SpectralKMeans        bool   `yaml:"spectral_kmeans"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{Dir: DefaultDataDir},
		Snapshot: SnapshotConfig{
			Location: DefaultSnapshotLocation,
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Clustering: ClusteringConfig{
			DefaultAlgorithm:      clustering.Spectral.String(),
			SpectralClusters:      clustering.DefaultClusters,
			AgglomerativeClusters: clustering.DefaultClusters,
			MaxAutoK:              clustering.DefaultMaxAutoK,
			TreeDepth:             DefaultTreeDepth,
			Seed:                  clustering.DefaultSeed,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (a
// missing file is fine), then .env, then the environment. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// .env never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Sources returns the data sources, filling empty ones from the data
// directory.
func (c *Config) Sources() ingest.Sources {
	def := ingest.DefaultSources(validation.DefaultOr(c.Data.Dir, DefaultDataDir))
	s := c.Data.Sources
	s.Bots = validation.DefaultOr(s.Bots, def.Bots)
	s.Features = validation.DefaultOr(s.Features, def.Features)
	s.Permissions = validation.DefaultOr(s.Permissions, def.Permissions)
	s.Screenshots = validation.DefaultOr(s.Screenshots, def.Screenshots)
	return s
}

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := validation.Struct(c.Sources()); err != nil {
		return fmt.Errorf("invalid data sources: %w", err)
	}

	cv := validation.NewConfigValidator("config")
	cv.OneOf("clustering.default_algorithm", strings.ToLower(c.Clustering.DefaultAlgorithm), clustering.Names()).
		OneOf("logging.level", strings.ToLower(c.Logging.Level), []string{"debug", "info", "warn", "warning", "error"}).
		MinDuration("server.read_timeout", c.Server.ReadTimeout, time.Second).
		MinDuration("server.write_timeout", c.Server.WriteTimeout, time.Second).
		MinDuration("server.shutdown_timeout", c.Server.ShutdownTimeout, time.Second)
	cv.When(strings.HasPrefix(c.Snapshot.Location, "s3://"), func(cv *validation.ConfigValidator) {
		cv.Custom("snapshot.location", func() error {
			_, _, err := snapshot.ParseS3URL(c.Snapshot.Location)
			return err
		})
		cv.When(c.Snapshot.S3.AccessKey != "", func(cv *validation.ConfigValidator) {
			cv.Required("snapshot.s3.secret_key", c.Snapshot.S3.SecretKey)
		})
	})
	return cv.Validate()
}

// Addr is the listen address of the HTTP service.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// SnapshotOptions converts the snapshot section for snapshot.Open.
func (c *Config) SnapshotOptions() snapshot.Options {
	return snapshot.Options{S3: c.Snapshot.S3}
}

// ClusteringOptions returns the options for alg. An explicit k overrides the
// per-algorithm default.
func (c *Config) ClusteringOptions(alg clustering.Algorithm, k int) clustering.Options {
	opts := clustering.Options{
		Clusters:       k,
		MaxAutoK:       c.Clustering.MaxAutoK,
		Seed:           c.Clustering.Seed,
		SpectralKMeans: c.Clustering.SpectralKMeans,
	}
	switch alg {
	case clustering.Spectral:
		opts.DefaultClusters = c.Clustering.SpectralClusters
	case clustering.Agglomerative:
		opts.DefaultClusters = c.Clustering.AgglomerativeClusters
	}
	return opts
}

// DefaultAlgorithm parses the configured default strategy.
func (c *Config) DefaultAlgorithm() (clustering.Algorithm, error) {
	return clustering.ParseAlgorithm(c.Clustering.DefaultAlgorithm)
}
