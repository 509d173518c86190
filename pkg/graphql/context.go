package graphql

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

type graphKey struct{}

// ErrNoGraph is returned by resolvers run without a graph in the context.
var ErrNoGraph = errors.New("no graph loaded for this request")

// WithGraph attaches the request's graph snapshot to ctx.
func WithGraph(ctx context.Context, g *graph.Graph) context.Context {
	return context.WithValue(ctx, graphKey{}, g)
}

// GraphFrom returns the graph attached by WithGraph.
func GraphFrom(ctx context.Context) (*graph.Graph, error) {
	if ctx == nil {
		return nil, ErrNoGraph
	}
	g, ok := ctx.Value(graphKey{}).(*graph.Graph)
	if !ok || g == nil {
		return nil, ErrNoGraph
	}
	return g, nil
}
