package clustering

import (
	"fmt"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/graph"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
)

// Defaults for Options.
const (
	DefaultClusters = 4
	DefaultMaxAutoK = 8
	DefaultSeed     = 42
)

// Options tunes the strategies. Zero values select the defaults.
type Options struct {
	// Clusters overrides the cluster count of spectral, agglomerative and
	// hierarchical clustering. Hierarchical picks k by silhouette when unset.
	Clusters int `yaml:"clusters" validate:"omitempty,min=2,max=32"`
	// DefaultClusters is used by spectral (capped at the bot count) and
	// agglomerative clustering when Clusters is unset.
	DefaultClusters int    `yaml:"default_clusters" validate:"omitempty,min=2,max=32"`
	MaxAutoK        int    `yaml:"max_auto_k" validate:"omitempty,min=2,max=32"`
	Seed            uint64 `yaml:"seed"`
	// SpectralKMeans switches spectral label assignment from discretization
	// to k-means.
	SpectralKMeans bool `yaml:"spectral_kmeans"`
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		DefaultClusters: DefaultClusters,
		MaxAutoK:        DefaultMaxAutoK,
		Seed:            DefaultSeed,
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultClusters <= 0 {
		o.DefaultClusters = DefaultClusters
	}
	if o.MaxAutoK <= 0 {
		o.MaxAutoK = DefaultMaxAutoK
	}
	return o
}

// Assignment maps node ids to cluster labels. Labels are small opaque
// integers; only equality between them is meaningful.
type Assignment map[string]int

// Result is the outcome of one clustering run.
type Result struct {
	Algorithm Algorithm
	Labels    Assignment
	// Bots lists the clustered bots in sorted order.
	Bots []string
	// K is the cluster count requested from the strategy, when it takes one.
	K int
	// Selection records the silhouette search of hierarchical clustering.
	Selection  *Selection
	Dendrogram *algorithms.Dendrogram
	Modularity float64
}

// BotLabels returns the labels of bots only.
func (r *Result) BotLabels() Assignment {
	out := make(Assignment, len(r.Bots))
	for _, b := range r.Bots {
		out[b] = r.Labels[b]
	}
	return out
}

// Clusters returns the number of distinct bot labels.
func (r *Result) Clusters() int {
	seen := make(map[int]bool)
	for _, b := range r.Bots {
		seen[r.Labels[b]] = true
	}
	return len(seen)
}

// Run executes one strategy on g. The graph is only read. Failures come
// back as *Error; a panic in numeric code is recovered into one.
func Run(g *graph.Graph, alg Algorithm, opts Options) (res *Result, err error) {
	opts = opts.withDefaults()
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &Error{Algorithm: alg, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	switch alg {
	case Spectral:
		res, err = runSpectral(g, opts)
	case Agglomerative:
		res, err = runAgglomerative(g, opts)
	case Hierarchical:
		res, err = runHierarchical(g, opts)
	case GreedyModularity:
		res, err = runGreedyModularity(g)
	case DomainBaseline:
		res, err = runDomain(g)
	default:
		return nil, &UnknownAlgorithmError{Name: alg.String()}
	}
	if err != nil {
		return nil, &Error{Algorithm: alg, Err: err}
	}
	res.Algorithm = alg
	return res, nil
}

// RunNamed parses name and runs the strategy.
func RunNamed(g *graph.Graph, name string, opts Options) (*Result, error) {
	alg, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	return Run(g, alg, opts)
}

func botResult(inc *matrix.Incidence, labels []int) *Result {
	res := &Result{Labels: make(Assignment, len(inc.Bots)), Bots: inc.Bots}
	for i, b := range inc.Bots {
		res.Labels[b] = labels[i]
	}
	return res
}

func runSpectral(g *graph.Graph, opts Options) (*Result, error) {
	inc := matrix.Build(g)
	n := len(inc.Bots)
	if n < 2 {
		return nil, fmt.Errorf("%w: spectral clustering needs at least 2 bots, got %d", algorithms.ErrInsufficientData, n)
	}
	k := opts.Clusters
	if k <= 0 {
		k = opts.DefaultClusters
	}
	k = min(k, n)

	assign := algorithms.AssignDiscretize
	if opts.SpectralKMeans {
		assign = algorithms.AssignKMeans
	}
	labels, err := algorithms.SpectralClustering(affinity(inc), algorithms.SpectralOptions{
		Clusters: k,
		Seed:     opts.Seed,
		Assign:   assign,
	})
	if err != nil {
		return nil, err
	}

	res := botResult(inc, labels)
	res.K = k
	propagateLastWriter(g, res.Labels)
	return res, nil
}

func runAgglomerative(g *graph.Graph, opts Options) (*Result, error) {
	inc := matrix.Build(g)
	k := opts.Clusters
	if k <= 0 {
		k = opts.DefaultClusters
	}
	if n := len(inc.Bots); n < k {
		return nil, fmt.Errorf("%w: cannot form %d clusters from %d bots", algorithms.ErrInsufficientData, k, n)
	}

	dg, err := algorithms.AverageLinkage(algorithms.JaccardDistances(inc.Sets()))
	if err != nil {
		return nil, err
	}
	labels, err := dg.CutClusters(k)
	if err != nil {
		return nil, err
	}

	res := botResult(inc, labels)
	res.K = k
	res.Dendrogram = dg
	propagateMajority(g, res.Labels)
	return res, nil
}

func runHierarchical(g *graph.Graph, opts Options) (*Result, error) {
	inc := matrix.Build(g)
	if len(inc.Bots) == 0 {
		return nil, fmt.Errorf("%w: no bots to cluster", algorithms.ErrInsufficientData)
	}
	h, err := Hierarchy(inc, opts)
	if err != nil {
		return nil, err
	}
	res := botResult(inc, h.Labels)
	res.K = h.Selection.K
	res.Selection = &h.Selection
	res.Dendrogram = h.Dendrogram
	propagateMajority(g, res.Labels)
	return res, nil
}

// Undirected flattens g into a simple undirected graph over every node, in
// document order.
func Undirected(g *graph.Graph) *algorithms.UndirectedGraph {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.Data.ID
	}
	ug := algorithms.NewUndirectedGraph(ids)
	for _, e := range g.Edges {
		ug.AddEdge(e.Data.Source, e.Data.Target)
	}
	return ug
}

func runGreedyModularity(g *graph.Graph) (*Result, error) {
	cd := algorithms.GreedyModularity(Undirected(g))

	res := &Result{
		Labels:     Assignment(cd.NodeCommunity),
		Bots:       g.SortedIDs(graph.NodeBot),
		K:          len(cd.Communities),
		Modularity: cd.Modularity,
	}
	return res, nil
}

func runDomain(g *graph.Graph) (*Result, error) {
	labels := make(Assignment)
	domains := g.IDs(graph.NodeDomain)
	for i, d := range domains {
		labels[d] = i
	}
	unassigned := len(domains)

	botDomains := g.BotDomains()
	bots := g.SortedIDs(graph.NodeBot)
	for _, b := range bots {
		if d, ok := botDomains[b]; ok {
			labels[b] = labels[d]
		} else {
			labels[b] = unassigned
		}
	}
	propagateFeatures(g, labels, func(bot string) bool {
		_, ok := botDomains[bot]
		return ok
	})

	return &Result{Labels: labels, Bots: bots, K: len(domains)}, nil
}
