// Package characterize describes clusters of bots by the features that set
// them apart from the population.
package characterize

import (
	"errors"
	"sort"

	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
)

// ErrNoLabels is returned when none of the bots carries a cluster label.
var ErrNoLabels = errors.New("characterize: no labelled bots")

// FeaturePresence compares how often a feature occurs inside one cluster
// with how often it occurs over all bots.
type FeaturePresence struct {
	Cluster         int     `json:"cluster"`
	Feature         string  `json:"feature"`
	ClusterPresence float64 `json:"clusterPresence"`
	GlobalPresence  float64 `json:"globalPresence"`
	// Diff is ClusterPresence - GlobalPresence. Positive means the feature is
	// overrepresented in the cluster.
	Diff float64 `json:"diffFromGlobal"`
}

// Cluster is one group of bots with its per-feature presence, in feature
// column order.
type Cluster struct {
	Label    int               `json:"label"`
	Size     int               `json:"size"`
	Members  []string          `json:"members"`
	Features []FeaturePresence `json:"features"`
}

// ClusterProfile is the characterization of a whole clustering.
type ClusterProfile struct {
	Features []string  `json:"features"`
	Global   []float64 `json:"globalPresence"`
	Clusters []Cluster `json:"clusters"`

	byLabel map[int]int
}

// Profile computes cluster and global presence for every (cluster, feature)
// pair. Global presence is taken over all bots of inc; bots missing from
// labels do not belong to any cluster.
func Profile(inc *matrix.Incidence, labels map[string]int) (*ClusterProfile, error) {
	nBots, nFeatures := inc.Dims()
	p := &ClusterProfile{
		Features: inc.Features,
		Global:   make([]float64, nFeatures),
		byLabel:  make(map[int]int),
	}

	members := make(map[int][]int)
	for i, b := range inc.Bots {
		if l, ok := labels[b]; ok {
			members[l] = append(members[l], i)
		}
	}
	if len(members) == 0 {
		return nil, ErrNoLabels
	}

	for j := range inc.Features {
		sum := 0.0
		for i := 0; i < nBots; i++ {
			sum += inc.At(i, j)
		}
		p.Global[j] = sum / float64(nBots)
	}

	order := make([]int, 0, len(members))
	for l := range members {
		order = append(order, l)
	}
	sort.Ints(order)

	for _, l := range order {
		rows := members[l]
		c := Cluster{
			Label:    l,
			Size:     len(rows),
			Members:  make([]string, len(rows)),
			Features: make([]FeaturePresence, nFeatures),
		}
		for k, i := range rows {
			c.Members[k] = inc.Bots[i]
		}
		for j, f := range inc.Features {
			sum := 0.0
			for _, i := range rows {
				sum += inc.At(i, j)
			}
			presence := sum / float64(len(rows))
			c.Features[j] = FeaturePresence{
				Cluster:         l,
				Feature:         f,
				ClusterPresence: presence,
				GlobalPresence:  p.Global[j],
				Diff:            presence - p.Global[j],
			}
		}
		p.byLabel[l] = len(p.Clusters)
		p.Clusters = append(p.Clusters, c)
	}
	return p, nil
}

// Cluster returns the cluster with the given label.
func (p *ClusterProfile) Cluster(label int) (*Cluster, bool) {
	i, ok := p.byLabel[label]
	if !ok {
		return nil, false
	}
	return &p.Clusters[i], true
}

// Sizes maps each label to its bot count.
func (p *ClusterProfile) Sizes() map[int]int {
	out := make(map[int]int, len(p.Clusters))
	for _, c := range p.Clusters {
		out[c.Label] = c.Size
	}
	return out
}

// Rows flattens the profile into one record per (cluster, feature), clusters
// in label order.
func (p *ClusterProfile) Rows() []FeaturePresence {
	var out []FeaturePresence
	for _, c := range p.Clusters {
		out = append(out, c.Features...)
	}
	return out
}

// TopDistinguishing returns up to n features of the cluster ordered by
// difference from global presence, then by cluster presence, both
// descending. n <= 0 returns all of them.
func (p *ClusterProfile) TopDistinguishing(label, n int) []FeaturePresence {
	return p.ranked(label, n, func(a, b FeaturePresence) bool {
		if a.Diff != b.Diff {
			return a.Diff > b.Diff
		}
		return a.ClusterPresence > b.ClusterPresence
	})
}

// MostCommon returns up to n features of the cluster ordered by cluster
// presence, descending.
func (p *ClusterProfile) MostCommon(label, n int) []FeaturePresence {
	return p.ranked(label, n, func(a, b FeaturePresence) bool {
		return a.ClusterPresence > b.ClusterPresence
	})
}

func (p *ClusterProfile) ranked(label, n int, less func(a, b FeaturePresence) bool) []FeaturePresence {
	c, ok := p.Cluster(label)
	if !ok {
		return nil
	}
	out := append([]FeaturePresence(nil), c.Features...)
	// Stable over column order, so equal records stay in feature id order.
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
