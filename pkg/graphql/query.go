package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

// ExecuteQuery runs query against schema with g attached to the context.
// Queries deeper than maxDepth are rejected before execution; maxDepth <= 0
// disables the check.
func ExecuteQuery(ctx context.Context, schema graphql.Schema, g *graph.Graph, query string, variables map[string]any, operationName string, maxDepth int) *graphql.Result {
	if maxDepth > 0 {
		if err := ValidateQueryDepth(query, maxDepth); err != nil {
			return &graphql.Result{
				Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)},
			}
		}
	}

	params := graphql.Params{
		Schema:        schema,
		RequestString: query,
		OperationName: operationName,
		Context:       WithGraph(ctx, g),
	}
	if variables != nil {
		params.VariableValues = variables
	}
	return graphql.Do(params)
}
