package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOTGRAPH_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from BOTGRAPH_* variables. PORT and LOG_LEVEL
// are honoured as well when the prefixed forms are unset.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(name string, fallbacks ...string) (string, bool) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		for _, f := range fallbacks {
			if v, ok := lookup(f); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	if v, ok := get("DATA_DIR"); ok {
		c.Data.Dir = v
	}
	if v, ok := get("PRESENCE"); ok {
		c.Data.Sources.Presence = v
	}
	if v, ok := get("SNAPSHOT"); ok {
		c.Snapshot.Location = v
	}
	if v, ok := get("S3_REGION"); ok {
		c.Snapshot.S3.Region = v
	}
	if v, ok := get("S3_ENDPOINT"); ok {
		c.Snapshot.S3.Endpoint = v
	}
	if v, ok := get("S3_ACCESS_KEY"); ok {
		c.Snapshot.S3.AccessKey = v
	}
	if v, ok := get("S3_SECRET_KEY"); ok {
		c.Snapshot.S3.SecretKey = v
	}
	if v, ok := get("S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("S3_PATH_STYLE", err)
		}
		c.Snapshot.S3.UsePathStyle = b
	}

	if v, ok := get("PORT", "PORT"); ok {
		port, err := strconv.Atoi(strings.TrimPrefix(v, ":"))
		if err != nil {
			return envError("PORT", err)
		}
		c.Server.Port = port
	}
	if v, ok := get("STATIC_DIR"); ok {
		c.Server.StaticDir = v
	}
	if v, ok := get("CORS_ORIGINS", "CORS_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("SHUTDOWN_TIMEOUT", err)
		}
		c.Server.ShutdownTimeout = d
	}

	if v, ok := get("ALGORITHM"); ok {
		c.Clustering.DefaultAlgorithm = v
	}
	if v, ok := get("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return envError("SEED", err)
		}
		c.Clustering.Seed = seed
	}
	if v, ok := get("LOG_LEVEL", "LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("environment %s%s: %w", EnvPrefix, name, err)
}
