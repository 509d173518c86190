// Package stats computes per-feature descriptive metrics over the incidence
// matrix: how widespread a feature is and how evenly it spreads over domains.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dd0wney/cluso-botgraph/pkg/matrix"
)

// UnknownDomain buckets bots without a domain. It is tracked but never part
// of the entropy or top-domain computation.
const UnknownDomain = "Unknown"

// NoDomain is reported as top domain when no known domain has the feature.
const NoDomain = "None"

// FeatureStats holds the metrics of one feature.
type FeatureStats struct {
	Feature       string         `json:"feature"`
	Ubiquity      float64        `json:"ubiquity"`
	Occurrences   int            `json:"occurrences"`
	Entropy       float64        `json:"entropy"`
	TopDomain     string         `json:"topDomain"`
	Concentration float64        `json:"domainConcentration"`
	DomainCounts  map[string]int `json:"domainCounts"`
	UnknownCount  int            `json:"unknownCount"`
}

// Compute returns one record per feature column, in column order.
func Compute(inc *matrix.Incidence) []FeatureStats {
	nBots, nFeatures := inc.Dims()
	out := make([]FeatureStats, 0, nFeatures)

	for j, feature := range inc.Features {
		col := inc.Column(j)
		fs := FeatureStats{
			Feature:      feature,
			Occurrences:  int(floats.Sum(col)),
			DomainCounts: make(map[string]int, len(inc.DomainIDs)),
			TopDomain:    NoDomain,
		}
		for _, d := range inc.DomainIDs {
			fs.DomainCounts[d] = 0
		}
		if nBots > 0 {
			fs.Ubiquity = float64(fs.Occurrences) / float64(nBots)
		}

		for i, v := range col {
			if v == 0 {
				continue
			}
			if d, ok := inc.Domain(inc.Bots[i]); ok {
				fs.DomainCounts[d]++
			} else {
				fs.UnknownCount++
			}
		}

		fs.Entropy = Entropy(fs.DomainCounts)
		top, topCount := TopDomain(fs.DomainCounts)
		if topCount > 0 {
			fs.TopDomain = top
		}
		if fs.Occurrences > 0 {
			fs.Concentration = float64(topCount) / float64(fs.Occurrences)
		}
		out = append(out, fs)
	}
	return out
}

// Entropy is the base-2 Shannon entropy of a count distribution after
// normalising it to sum 1. An all-zero distribution has entropy 0.
func Entropy(counts map[string]int) float64 {
	p := make([]float64, 0, len(counts))
	for _, k := range sortedKeys(counts) {
		p = append(p, float64(counts[k]))
	}
	total := floats.Sum(p)
	if total == 0 {
		return 0
	}
	floats.Scale(1/total, p)
	h := stat.Entropy(p) / math.Ln2
	if h <= 0 {
		// a certain outcome yields -0
		return 0
	}
	return h
}

// TopDomain returns the domain with the highest count. Ties go to the
// lexicographically smallest domain id.
func TopDomain(counts map[string]int) (string, int) {
	best, bestCount := "", -1
	for _, k := range sortedKeys(counts) {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	if bestCount < 0 {
		return "", 0
	}
	return best, bestCount
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
