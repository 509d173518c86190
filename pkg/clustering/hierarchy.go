package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-botgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
	"github.com/dd0wney/cluso-botgraph/pkg/parallel"
)

// KScore is the silhouette of one candidate k.
type KScore struct {
	K     int     `json:"k"`
	Score float64 `json:"score"`
}

// Selection is the outcome of the automatic k search.
type Selection struct {
	K      int      `json:"k"`
	Score  float64  `json:"score"`
	Scores []KScore `json:"scores"`
	// Scored is false when k fell back to 2 without evaluation.
	Scored bool `json:"scored"`
}

// HierarchicalResult is an average-linkage Jaccard clustering with its flat cut.
type HierarchicalResult struct {
	Dendrogram *algorithms.Dendrogram
	Distances  *mat.SymDense
	Labels     []int
	Selection  Selection
}

// Hierarchy clusters the rows of inc with average linkage on Jaccard
// distance and cuts the tree with fcluster's maxclust rule. The cut uses
// opts.Clusters when set and SelectK otherwise.
func Hierarchy(inc *matrix.Incidence, opts Options) (*HierarchicalResult, error) {
	return hierarchy(inc.Sets(), opts)
}

// FeatureHierarchy clusters features by the bots that have them.
func FeatureHierarchy(inc *matrix.Incidence, opts Options) (*HierarchicalResult, error) {
	return hierarchy(inc.FeatureSets(), opts)
}

func hierarchy(sets []map[int]bool, opts Options) (*HierarchicalResult, error) {
	opts = opts.withDefaults()
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: nothing to cluster", algorithms.ErrInsufficientData)
	}
	dist := algorithms.JaccardDistances(sets)
	dg, err := algorithms.AverageLinkage(dist)
	if err != nil {
		return nil, err
	}

	var sel Selection
	if opts.Clusters > 0 {
		sel = Selection{K: opts.Clusters}
	} else if sel, err = SelectK(dg, dist, opts.MaxAutoK); err != nil {
		return nil, err
	}
	labels, err := dg.CutMaxClusters(sel.K)
	if err != nil {
		return nil, err
	}
	return &HierarchicalResult{Dendrogram: dg, Distances: dist, Labels: labels, Selection: sel}, nil
}

// SelectK scores k = 2..min(maxK, n-1) by silhouette under the given
// distances and keeps the first k with the highest score. With two or fewer
// observations it returns k = 2 unscored. Candidates are scored in parallel.
func SelectK(dg *algorithms.Dendrogram, dist mat.Symmetric, maxK int) (Selection, error) {
	n := dg.N
	if n <= 2 {
		return Selection{K: 2}, nil
	}

	last := min(maxK, n-1)
	candidates := make([]*KScore, max(last-1, 0))
	err := parallel.ForEach(0, len(candidates), func(i int) error {
		k := i + 2
		labels, err := dg.CutMaxClusters(k)
		if err != nil {
			return err
		}
		if algorithms.CountClusters(labels) < 2 {
			return nil
		}
		score, err := algorithms.Silhouette(dist, labels)
		if err != nil {
			return err
		}
		candidates[i] = &KScore{K: k, Score: score}
		return nil
	})
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{K: 2, Score: -1, Scored: true}
	for _, c := range candidates {
		if c == nil {
			continue
		}
		sel.Scores = append(sel.Scores, *c)
		if c.Score > sel.Score {
			sel.K, sel.Score = c.K, c.Score
		}
	}
	return sel, nil
}
