package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidGraph is returned when a decoded document violates the graph
// model.
var ErrInvalidGraph = errors.New("invalid graph document")

// Marshal encodes g as indented JSON.
func Marshal(g *Graph) ([]byte, error) {
	if g.Nodes == nil || g.Edges == nil {
		// Emit [] rather than null so the frontend can iterate unconditionally.
		cp := *g
		if cp.Nodes == nil {
			cp.Nodes = []Node{}
		}
		if cp.Edges == nil {
			cp.Edges = []Edge{}
		}
		g = &cp
	}
	return json.MarshalIndent(g, "", "  ")
}

// Unmarshal decodes and validates a graph document.
func Unmarshal(data []byte) (*Graph, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads and validates a graph document.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the structural rules: unique non-empty node ids, known node
// types, edges between existing nodes and at most one hasFeature edge per
// bot/feature pair.
func (g *Graph) Validate() error {
	seen := make(map[string]NodeType, len(g.Nodes))
	for i, n := range g.Nodes {
		d := n.Data
		if d.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrInvalidGraph, i)
		}
		if !d.NodeType.Valid() {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidGraph, d.ID, d.NodeType)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidGraph, d.ID)
		}
		seen[d.ID] = d.NodeType
	}

	pairs := make(map[pairKey]bool)
	for _, e := range g.Edges {
		d := e.Data
		if _, ok := seen[d.Source]; !ok {
			return fmt.Errorf("%w: edge %q references unknown source %q", ErrInvalidGraph, d.ID, d.Source)
		}
		if _, ok := seen[d.Target]; !ok {
			return fmt.Errorf("%w: edge %q references unknown target %q", ErrInvalidGraph, d.ID, d.Target)
		}
		if d.Relation != RelHasFeature {
			continue
		}
		key := pairKey{d.Source, d.Target}
		if seen[d.Source] == NodeFeature {
			key = pairKey{d.Target, d.Source}
		}
		if pairs[key] {
			return fmt.Errorf("%w: more than one hasFeature edge between %q and %q", ErrInvalidGraph, key.bot, key.feature)
		}
		pairs[key] = true
	}
	return nil
}
