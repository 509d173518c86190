package algorithms

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SimilarityMetric selects which similarity formula to use.
type SimilarityMetric int

const (
	SimilarityJaccard SimilarityMetric = iota // |A∩B| / |A∪B|
	SimilarityOverlap                         // |A∩B| / min(|A|,|B|)
	SimilarityCosine                          // |A∩B| / sqrt(|A|×|B|)
)

// Similarity compares two sets. Any comparison involving an empty set is 0.
func Similarity(setA, setB map[int]bool, metric SimilarityMetric) float64 {
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	small, big := setA, setB
	if len(setA) > len(setB) {
		small, big = setB, setA
	}
	intersection := 0
	for id := range small {
		if big[id] {
			intersection++
		}
	}
	if intersection == 0 {
		return 0.0
	}

	switch metric {
	case SimilarityJaccard:
		union := len(setA) + len(setB) - intersection
		return float64(intersection) / float64(union)
	case SimilarityOverlap:
		return float64(intersection) / float64(min(len(setA), len(setB)))
	case SimilarityCosine:
		return float64(intersection) / math.Sqrt(float64(len(setA))*float64(len(setB)))
	default:
		return 0.0
	}
}

// JaccardDistance is 1 - Jaccard similarity, except that two empty sets are
// at distance 0: observations without any feature are treated as identical.
func JaccardDistance(setA, setB map[int]bool) float64 {
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	return 1 - Similarity(setA, setB, SimilarityJaccard)
}

// JaccardDistances returns the full pairwise distance matrix of sets.
func JaccardDistances(sets []map[int]bool) *mat.SymDense {
	n := len(sets)
	if n == 0 {
		return nil
	}
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, JaccardDistance(sets[i], sets[j]))
		}
	}
	return d
}

// CosineSimilarities returns the pairwise cosine similarity of the rows of x.
// Rows of zeros have similarity 0 with everything, themselves included.
func CosineSimilarities(x mat.Matrix) *mat.SymDense {
	n, _ := x.Dims()
	if n == 0 {
		return nil
	}
	var gram mat.SymDense
	gram.SymOuterK(1, x)

	norms := make([]float64, n)
	for i := range norms {
		norms[i] = math.Sqrt(gram.At(i, i))
	}
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if norms[i] == 0 || norms[j] == 0 {
				continue
			}
			s.SetSym(i, j, gram.At(i, j)/(norms[i]*norms[j]))
		}
	}
	return s
}

func checkFinite(m mat.Matrix) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return ErrNotFinite
			}
		}
	}
	return nil
}
