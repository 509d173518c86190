package stats

import "sort"

// DomainSpecificThreshold is the entropy below which a feature counts as
// domain specific.
const DomainSpecificThreshold = 0.8

// SortForReport orders records by ubiquity then entropy, both descending,
// with the feature id as final tie-break. The input is not modified.
func SortForReport(records []FeatureStats) []FeatureStats {
	out := append([]FeatureStats(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Ubiquity != b.Ubiquity {
			return a.Ubiquity > b.Ubiquity
		}
		if a.Entropy != b.Entropy {
			return a.Entropy > b.Entropy
		}
		return a.Feature < b.Feature
	})
	return out
}

// Universal returns the n most ubiquitous features.
func Universal(records []FeatureStats, n int) []FeatureStats {
	return head(SortForReport(records), n)
}

// DomainSpecific returns up to n present features whose entropy is below
// threshold, most concentrated first.
func DomainSpecific(records []FeatureStats, threshold float64, n int) []FeatureStats {
	var out []FeatureStats
	for _, r := range records {
		if r.Occurrences > 0 && r.Entropy < threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Concentration != out[j].Concentration {
			return out[i].Concentration > out[j].Concentration
		}
		return out[i].Feature < out[j].Feature
	})
	return head(out, n)
}

func head(records []FeatureStats, n int) []FeatureStats {
	if n >= 0 && len(records) > n {
		return records[:n]
	}
	return records
}
