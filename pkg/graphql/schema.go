package graphql

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/clustering"
	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/stats"
)

// SchemaConfig supplies the clustering defaults used by the clusters query.
type SchemaConfig struct {
	DefaultAlgorithm clustering.Algorithm
	// Options returns the clustering options for alg with an optional
	// explicit k (0 when unset).
	Options func(alg clustering.Algorithm, k int) clustering.Options
}

// Assignment is one node's cluster label.
type Assignment struct {
	Node    string `json:"node"`
	Cluster int    `json:"cluster"`
}

// ClusterRun is the GraphQL view of a clustering result.
type ClusterRun struct {
	Algorithm   string       `json:"algorithm"`
	K           int          `json:"k"`
	Clusters    int          `json:"clusters"`
	Modularity  float64      `json:"modularity"`
	Assignments []Assignment `json:"assignments"`
}

type screenshot struct {
	Bot   string
	Paths []string
}

// NewSchema builds the read-only schema over the per-request graph.
func NewSchema(cfg SchemaConfig) (graphql.Schema, error) {
	if cfg.Options == nil {
		cfg.Options = func(_ clustering.Algorithm, k int) clustering.Options {
			opts := clustering.DefaultOptions()
			opts.Clusters = k
			return opts
		}
	}

	screenshotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Screenshot",
		Fields: graphql.Fields{
			"bot":   &graphql.Field{Type: graphql.String},
			"paths": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	var nodeType *graphql.Object
	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Edge",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: edgeField(func(e graph.EdgeData) any { return e.ID })},
				"source":   &graphql.Field{Type: graphql.String, Resolve: edgeField(func(e graph.EdgeData) any { return e.Source })},
				"target":   &graphql.Field{Type: graphql.String, Resolve: edgeField(func(e graph.EdgeData) any { return e.Target })},
				"relation": &graphql.Field{Type: graphql.String, Resolve: edgeField(func(e graph.EdgeData) any { return e.Relation })},
				"label":    &graphql.Field{Type: graphql.String, Resolve: edgeField(func(e graph.EdgeData) any { return e.Label })},
				"botCanSend": &graphql.Field{Type: graphql.Boolean, Resolve: edgeField(func(e graph.EdgeData) any {
					if e.BotCanSend == nil {
						return nil
					}
					return *e.BotCanSend
				})},
				"userCanSend": &graphql.Field{Type: graphql.Boolean, Resolve: edgeField(func(e graph.EdgeData) any {
					if e.UserCanSend == nil {
						return nil
					}
					return *e.UserCanSend
				})},
				"sourceNode": &graphql.Field{Type: nodeType, Resolve: endpoint(func(e graph.EdgeData) string { return e.Source })},
				"targetNode": &graphql.Field{Type: nodeType, Resolve: endpoint(func(e graph.EdgeData) string { return e.Target })},
			}
		}),
	})

	nodeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: nodeField(func(n graph.NodeData) any { return n.ID })},
				"nodeType":    &graphql.Field{Type: graphql.String, Resolve: nodeField(func(n graph.NodeData) any { return string(n.NodeType) })},
				"label":       &graphql.Field{Type: graphql.String, Resolve: nodeField(func(n graph.NodeData) any { return n.Label })},
				"description": &graphql.Field{Type: graphql.String, Resolve: nodeField(func(n graph.NodeData) any { return n.Description })},
				"class":       &graphql.Field{Type: graphql.String, Resolve: nodeField(func(n graph.NodeData) any { return n.Class })},
				"groupId":     &graphql.Field{Type: graphql.String, Resolve: nodeField(func(n graph.NodeData) any { return n.GroupID })},
				"screenshots": &graphql.Field{
					Type: graphql.NewList(screenshotType),
					Resolve: nodeField(func(n graph.NodeData) any {
						bots := make([]string, 0, len(n.Screenshots))
						for b := range n.Screenshots {
							bots = append(bots, b)
						}
						sort.Strings(bots)
						out := make([]map[string]any, len(bots))
						for i, b := range bots {
							out[i] = map[string]any{"bot": b, "paths": n.Screenshots[b]}
						}
						return out
					}),
				},
				"edges": &graphql.Field{
					Type: graphql.NewList(edgeType),
					Args: graphql.FieldConfigArgument{
						"relation": &graphql.ArgumentConfig{Type: graphql.String},
					},
					Resolve: func(p graphql.ResolveParams) (any, error) {
						n, ok := p.Source.(graph.NodeData)
						if !ok {
							return nil, nil
						}
						g, err := GraphFrom(p.Context)
						if err != nil {
							return nil, err
						}
						rel, _ := p.Args["relation"].(string)
						var out []graph.EdgeData
						for _, e := range g.Edges {
							if (e.Data.Source == n.ID || e.Data.Target == n.ID) && (rel == "" || e.Data.Relation == rel) {
								out = append(out, e.Data)
							}
						}
						return out, nil
					},
				},
			}
		}),
	})

	featureStatsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeatureStats",
		Fields: graphql.Fields{
			"feature":             &graphql.Field{Type: graphql.String, Resolve: statsField(func(s stats.FeatureStats) any { return s.Feature })},
			"ubiquity":            &graphql.Field{Type: graphql.Float, Resolve: statsField(func(s stats.FeatureStats) any { return s.Ubiquity })},
			"occurrences":         &graphql.Field{Type: graphql.Int, Resolve: statsField(func(s stats.FeatureStats) any { return s.Occurrences })},
			"entropy":             &graphql.Field{Type: graphql.Float, Resolve: statsField(func(s stats.FeatureStats) any { return s.Entropy })},
			"topDomain":           &graphql.Field{Type: graphql.String, Resolve: statsField(func(s stats.FeatureStats) any { return s.TopDomain })},
			"domainConcentration": &graphql.Field{Type: graphql.Float, Resolve: statsField(func(s stats.FeatureStats) any { return s.Concentration })},
		},
	})

	assignmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Assignment",
		Fields: graphql.Fields{
			"node":    &graphql.Field{Type: graphql.String},
			"cluster": &graphql.Field{Type: graphql.Int},
		},
	})

	clusterRunType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ClusterRun",
		Fields: graphql.Fields{
			"algorithm":   &graphql.Field{Type: graphql.String},
			"k":           &graphql.Field{Type: graphql.Int},
			"clusters":    &graphql.Field{Type: graphql.Int},
			"modularity":  &graphql.Field{Type: graphql.Float},
			"assignments": &graphql.Field{Type: graphql.NewList(assignmentType)},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GraphStats",
		Fields: graphql.Fields{
			"nodes":       &graphql.Field{Type: graphql.Int},
			"edges":       &graphql.Field{Type: graphql.Int},
			"bots":        &graphql.Field{Type: graphql.Int},
			"features":    &graphql.Field{Type: graphql.Int},
			"domains":     &graphql.Field{Type: graphql.Int},
			"screenshots": &graphql.Field{Type: graphql.Int},
			"components":  &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"type": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: withGraph(func(g *graph.Graph, p graphql.ResolveParams) (any, error) {
					typ, _ := p.Args["type"].(string)
					if typ != "" && !graph.NodeType(typ).Valid() {
						return nil, fmt.Errorf("unknown node type %q", typ)
					}
					var out []graph.NodeData
					for _, n := range g.Nodes {
						if typ == "" || string(n.Data.NodeType) == typ {
							out = append(out, n.Data)
						}
					}
					return out, nil
				}),
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: withGraph(func(g *graph.Graph, p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					if n, ok := g.Find(id); ok {
						return n, nil
					}
					return nil, nil
				}),
			},
			"edges": &graphql.Field{
				Type: graphql.NewList(edgeType),
				Args: graphql.FieldConfigArgument{
					"relation": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: withGraph(func(g *graph.Graph, p graphql.ResolveParams) (any, error) {
					rel, _ := p.Args["relation"].(string)
					if rel != "" {
						return g.EdgesWith(rel), nil
					}
					out := make([]graph.EdgeData, len(g.Edges))
					for i, e := range g.Edges {
						out[i] = e.Data
					}
					return out, nil
				}),
			},
			"features": &graphql.Field{
				Type: graphql.NewList(featureStatsType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: withGraph(func(g *graph.Graph, p graphql.ResolveParams) (any, error) {
					records := stats.SortForReport(stats.Compute(matrix.Build(g)))
					if limit, ok := p.Args["limit"].(int); ok && limit >= 0 && limit < len(records) {
						records = records[:limit]
					}
					return records, nil
				}),
			},
			"clusters": &graphql.Field{
				Type: clusterRunType,
				Args: graphql.FieldConfigArgument{
					"algorithm": &graphql.ArgumentConfig{Type: graphql.String},
					"k":         &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: withGraph(func(g *graph.Graph, p graphql.ResolveParams) (any, error) {
					alg := cfg.DefaultAlgorithm
					if name, ok := p.Args["algorithm"].(string); ok && name != "" {
						parsed, err := clustering.ParseAlgorithm(name)
						if err != nil {
							return nil, err
						}
						alg = parsed
					}
					k, _ := p.Args["k"].(int)
					res, err := clustering.Run(g, alg, cfg.Options(alg, k))
					if err != nil {
						return nil, err
					}
					return clusterRun(res), nil
				}),
			},
			"stats": &graphql.Field{
				Type: statsType,
				Resolve: withGraph(func(g *graph.Graph, p graphql.ResolveParams) (any, error) {
					s := g.Stats()
					return map[string]any{
						"nodes":       s.Nodes,
						"edges":       s.Edges,
						"bots":        s.ByType[graph.NodeBot],
						"features":    s.ByType[graph.NodeFeature],
						"domains":     s.ByType[graph.NodeDomain],
						"screenshots": s.Screenshots,
						"components":  len(algorithms.ConnectedComponents(clustering.Undirected(g)).Communities),
					}, nil
				}),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func clusterRun(res *clustering.Result) ClusterRun {
	ids := make([]string, 0, len(res.Labels))
	for id := range res.Labels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	run := ClusterRun{
		Algorithm:   res.Algorithm.String(),
		K:           res.K,
		Clusters:    res.Clusters(),
		Modularity:  res.Modularity,
		Assignments: make([]Assignment, len(ids)),
	}
	for i, id := range ids {
		run.Assignments[i] = Assignment{Node: id, Cluster: res.Labels[id]}
	}
	return run
}

func withGraph(fn func(*graph.Graph, graphql.ResolveParams) (any, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		g, err := GraphFrom(p.Context)
		if err != nil {
			return nil, err
		}
		return fn(g, p)
	}
}

func nodeField(get func(graph.NodeData) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if n, ok := p.Source.(graph.NodeData); ok {
			return get(n), nil
		}
		return nil, nil
	}
}

func edgeField(get func(graph.EdgeData) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if e, ok := p.Source.(graph.EdgeData); ok {
			return get(e), nil
		}
		return nil, nil
	}
}

func statsField(get func(stats.FeatureStats) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if s, ok := p.Source.(stats.FeatureStats); ok {
			return get(s), nil
		}
		return nil, nil
	}
}

func endpoint(id func(graph.EdgeData) string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		e, ok := p.Source.(graph.EdgeData)
		if !ok {
			return nil, nil
		}
		g, err := GraphFrom(p.Context)
		if err != nil {
			return nil, err
		}
		if n, ok := g.Find(id(e)); ok {
			return n, nil
		}
		return nil, nil
	}
}
