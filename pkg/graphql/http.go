package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/logging"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// LoadFunc reads the current graph snapshot.
type LoadFunc func(ctx context.Context) (*graph.Graph, error)

// GraphQLHandler handles GraphQL HTTP requests. The snapshot is reloaded for
// every request.
type GraphQLHandler struct {
	schema   graphql.Schema
	load     LoadFunc
	maxDepth int
	logger   logging.Logger
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema, load LoadFunc, logger logging.Logger) *GraphQLHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GraphQLHandler{
		schema:   schema,
		load:     load,
		maxDepth: DefaultMaxDepth,
		logger:   logger.With(logging.Component("graphql")),
	}
}

// SetMaxDepth changes the query depth limit; n <= 0 disables it.
func (h *GraphQLHandler) SetMaxDepth(n int) {
	h.maxDepth = n
}

// ServeHTTP handles HTTP requests for GraphQL queries
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var response GraphQLResponse
	g, err := h.load(r.Context())
	if err != nil {
		h.logger.Warn("graph snapshot unavailable", logging.Error(err))
		response.Errors = []GraphQLError{{Message: err.Error()}}
	} else {
		result := ExecuteQuery(r.Context(), h.schema, g, req.Query, req.Variables, req.OperationName, h.maxDepth)
		response.Data = result.Data
		if result.HasErrors() {
			response.Errors = make([]GraphQLError, len(result.Errors))
			for i, e := range result.Errors {
				response.Errors[i] = GraphQLError{Message: e.Message}
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode graphql response", logging.Error(err))
	}
}
