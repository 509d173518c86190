package algorithms

import (
	"math"
	"math/rand/v2"
)

// KMeansOptions configures KMeans.
type KMeansOptions struct {
	Clusters int
	Seed     uint64
	// Restarts is the number of k-means++ initialisations; the run with the
	// lowest inertia wins.
	Restarts int
	MaxIter  int
}

// KMeansResult holds the winning partition.
type KMeansResult struct {
	Labels  []int
	Inertia float64
}

// KMeans clusters points with Lloyd's algorithm from seeded k-means++ starts.
// A fixed seed gives identical labels on every run. Labels are renumbered in
// order of first appearance.
func KMeans(points [][]float64, opts KMeansOptions) (*KMeansResult, error) {
	n := len(points)
	k := opts.Clusters
	if n == 0 {
		return nil, ErrInsufficientData
	}
	if k < 1 || k > n {
		return nil, ErrInvalidClusters
	}
	restarts := max(opts.Restarts, 1)
	maxIter := opts.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	var best *KMeansResult
	for r := 0; r < restarts; r++ {
		centers := seedCenters(points, k, rng)
		labels, inertia := lloyd(points, centers, maxIter)
		if best == nil || inertia < best.Inertia {
			best = &KMeansResult{Labels: labels, Inertia: inertia}
		}
	}
	best.Labels = relabel(func(i int) int { return best.Labels[i] }, n)
	return best, nil
}

func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.IntN(len(points))]))

	dist := make([]float64, len(points))
	for len(centers) < k {
		var total float64
		for i, p := range points {
			dist[i] = math.Inf(1)
			for _, c := range centers {
				dist[i] = math.Min(dist[i], sqDist(p, c))
			}
			total += dist[i]
		}
		if total == 0 {
			// Fewer distinct points than clusters: reuse points in order.
			centers = append(centers, clone(points[len(centers)%len(points)]))
			continue
		}
		target := rng.Float64() * total
		chosen := len(points) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				chosen = i
				break
			}
		}
		centers = append(centers, clone(points[chosen]))
	}
	return centers
}

func lloyd(points, centers [][]float64, maxIter int) ([]int, float64) {
	labels := make([]int, len(points))
	dim := len(points[0])
	var inertia float64
	for iter := 0; iter < maxIter; iter++ {
		changed := iter == 0
		inertia = 0
		for i, p := range points {
			bestC, bestD := 0, math.Inf(1)
			for c, center := range centers {
				if d := sqDist(p, center); d < bestD {
					bestC, bestD = c, d
				}
			}
			if labels[i] != bestC {
				labels[i] = bestC
				changed = true
			}
			inertia += bestD
		}
		if !changed {
			break
		}

		counts := make([]int, len(centers))
		sums := make([][]float64, len(centers))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			counts[labels[i]]++
			for d, v := range p {
				sums[labels[i]][d] += v
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				continue // empty cluster keeps its previous center
			}
			for d := range sums[c] {
				centers[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}
	return labels, inertia
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}
