package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

const filePermissions = 0o644

// FileStore keeps the snapshot in a local file. Files ending in .sz hold a
// snappy block of the JSON document.
type FileStore struct {
	path       string
	compressed bool
}

// NewFileStore returns a store for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, compressed: compressed(path)}
}

// Location returns the file path.
func (s *FileStore) Location() string {
	return s.path
}

// Raw reads the JSON document.
func (s *FileStore) Raw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if s.compressed {
		if data, err = snappy.Decode(nil, data); err != nil {
			return nil, fmt.Errorf("decompress snapshot %s: %w", s.path, err)
		}
	}
	return data, nil
}

// Load reads and decodes the snapshot.
func (s *FileStore) Load(ctx context.Context) (*graph.Graph, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return decode(s.path, data)
}

// Save writes g next to the target and renames it into place.
func (s *FileStore) Save(ctx context.Context, g *graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := graph.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if s.compressed {
		data = snappy.Encode(nil, data)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}
