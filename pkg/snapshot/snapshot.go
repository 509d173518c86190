// Package snapshot stores the one graph document a deployment serves. The
// document lives in a local JSON file, a snappy-compressed file or an S3
// object, chosen by its location string.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

// ErrNotFound is returned when no snapshot exists at the location.
var ErrNotFound = errors.New("snapshot not found")

// CompressedSuffix marks snappy-compressed snapshot files and objects.
const CompressedSuffix = ".sz"

// Store reads and writes a graph snapshot.
type Store interface {
	// Load decodes and validates the snapshot.
	Load(ctx context.Context) (*graph.Graph, error)
	// Raw returns the JSON document as stored, decompressed when needed.
	Raw(ctx context.Context) ([]byte, error)
	// Save replaces the snapshot with g.
	Save(ctx context.Context, g *graph.Graph) error
	// Location describes where the snapshot lives.
	Location() string
}

// S3Options configures access to S3 or an S3-compatible service.
type S3Options struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// Options configures Open.
type Options struct {
	S3 S3Options `yaml:"s3"`
}

// Open returns the store for location: s3://bucket/key selects S3, a path
// ending in .sz a compressed file and anything else a plain JSON file.
func Open(ctx context.Context, location string, opts Options) (Store, error) {
	if location == "" {
		return nil, errors.New("snapshot: empty location")
	}
	if strings.HasPrefix(location, s3Scheme) {
		bucket, key, err := ParseS3URL(location)
		if err != nil {
			return nil, err
		}
		client, err := newS3Client(ctx, opts.S3)
		if err != nil {
			return nil, fmt.Errorf("snapshot: configure s3: %w", err)
		}
		return NewS3Store(client, bucket, key), nil
	}
	return NewFileStore(location), nil
}

func decode(location string, data []byte) (*graph.Graph, error) {
	g, err := graph.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", location, err)
	}
	return g, nil
}

func compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), CompressedSuffix)
}
