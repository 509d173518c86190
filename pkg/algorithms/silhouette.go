package algorithms

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Silhouette returns the mean silhouette coefficient of labels under a
// precomputed distance matrix. Observations alone in their cluster score 0.
// It requires between 2 and n-1 distinct labels.
func Silhouette(dist mat.Symmetric, labels []int) (float64, error) {
	if dist == nil {
		return 0, fmt.Errorf("%w: empty distance matrix", ErrInsufficientData)
	}
	n := dist.SymmetricDim()
	if n != len(labels) {
		return 0, fmt.Errorf("silhouette: %d labels for %d observations", len(labels), n)
	}
	k := CountClusters(labels)
	if k < 2 || k > n-1 {
		return 0, fmt.Errorf("%w: silhouette needs 2..%d clusters, got %d", ErrInvalidClusters, n-1, k)
	}

	sizes := make(map[int]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	var total float64
	for i := 0; i < n; i++ {
		own := labels[i]
		if sizes[own] == 1 {
			continue
		}
		sums := make(map[int]float64, k)
		for j := 0; j < n; j++ {
			if i != j {
				sums[labels[j]] += dist.At(i, j)
			}
		}
		a := sums[own] / float64(sizes[own]-1)
		b := -1.0
		for l, s := range sums {
			if l == own {
				continue
			}
			if mean := s / float64(sizes[l]); b < 0 || mean < b {
				b = mean
			}
		}
		if m := max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}
