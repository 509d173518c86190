package algorithms

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Merge is one step of an agglomerative clustering, laid out like a row of a
// scipy linkage matrix: clusters A and B (A < B) join at Distance into a new
// cluster of Size observations. Ids below N are observations; the cluster
// created by merge i has id N+i.
type Merge struct {
	A, B     int
	Distance float64
	Size     int
}

// Dendrogram is the full merge history over N observations.
type Dendrogram struct {
	N      int
	Merges []Merge
}

// AverageLinkage runs UPGMA agglomerative clustering on a precomputed
// distance matrix. At each step the closest pair of active clusters merges;
// ties go to the pair with the smallest ids.
func AverageLinkage(dist mat.Symmetric) (*Dendrogram, error) {
	if dist == nil {
		return nil, fmt.Errorf("%w: empty distance matrix", ErrInsufficientData)
	}
	n := dist.SymmetricDim()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty distance matrix", ErrInsufficientData)
	}
	if err := checkFinite(dist); err != nil {
		return nil, err
	}

	// d holds distances between active clusters, keyed by cluster id.
	size := make(map[int]int, 2*n)
	d := make(map[int]map[int]float64, 2*n)
	active := make([]int, n)
	for i := 0; i < n; i++ {
		active[i] = i
		size[i] = 1
		d[i] = make(map[int]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				d[i][j] = dist.At(i, j)
			}
		}
	}

	dg := &Dendrogram{N: n, Merges: make([]Merge, 0, n-1)}
	for step := 0; len(active) > 1; step++ {
		bi, bj := 0, 1
		best := math.Inf(1)
		for x := 0; x < len(active); x++ {
			for y := x + 1; y < len(active); y++ {
				if v := d[active[x]][active[y]]; v < best {
					best, bi, bj = v, x, y
				}
			}
		}

		a, b := active[bi], active[bj]
		id := n + step
		merged := size[a] + size[b]
		dg.Merges = append(dg.Merges, Merge{A: min(a, b), B: max(a, b), Distance: best, Size: merged})

		d[id] = make(map[int]float64, len(active))
		for _, k := range active {
			if k == a || k == b {
				continue
			}
			v := (float64(size[a])*d[a][k] + float64(size[b])*d[b][k]) / float64(merged)
			d[id][k] = v
			d[k][id] = v
			delete(d[k], a)
			delete(d[k], b)
		}
		delete(d, a)
		delete(d, b)
		size[id] = merged

		next := active[:0:0]
		for _, k := range active {
			if k != a && k != b {
				next = append(next, k)
			}
		}
		active = append(next, id)
	}
	return dg, nil
}

// CutMaxClusters forms flat clusters the way fcluster's maxclust criterion
// does: the lowest height at which at most k clusters remain. Merges tied at
// that height are applied together, so fewer than k clusters can result.
// Labels are numbered from 0 in order of first appearance.
func (dg *Dendrogram) CutMaxClusters(k int) ([]int, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClusters, k)
	}
	apply := dg.N - k
	if apply <= 0 {
		return dg.cut(0), nil
	}
	height := dg.Merges[apply-1].Distance
	for apply < len(dg.Merges) && dg.Merges[apply].Distance <= height {
		apply++
	}
	return dg.cut(apply), nil
}

// CutClusters stops merging once exactly k clusters remain, as a
// fixed-size agglomerative clusterer does.
func (dg *Dendrogram) CutClusters(k int) ([]int, error) {
	if k < 1 || k > dg.N {
		return nil, fmt.Errorf("%w: %d for %d observations", ErrInvalidClusters, k, dg.N)
	}
	return dg.cut(dg.N - k), nil
}

// cut applies the first m merges and labels the resulting components.
func (dg *Dendrogram) cut(m int) []int {
	parent := make([]int, dg.N+len(dg.Merges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for i := 0; i < m && i < len(dg.Merges); i++ {
		id := dg.N + i
		parent[find(dg.Merges[i].A)] = id
		parent[find(dg.Merges[i].B)] = id
	}
	return relabel(func(i int) int { return find(i) }, dg.N)
}

// Leaves returns the observations in dendrogram leaf order, left to right.
func (dg *Dendrogram) Leaves() []int {
	if dg.N == 0 {
		return nil
	}
	if len(dg.Merges) == 0 {
		return []int{0}
	}
	var out []int
	var walk func(int)
	walk = func(id int) {
		if id < dg.N {
			out = append(out, id)
			return
		}
		m := dg.Merges[id-dg.N]
		walk(m.A)
		walk(m.B)
	}
	walk(dg.N + len(dg.Merges) - 1)
	return out
}

// Height returns the distance of the final merge, 0 for a single observation.
func (dg *Dendrogram) Height() float64 {
	if len(dg.Merges) == 0 {
		return 0
	}
	return dg.Merges[len(dg.Merges)-1].Distance
}

// relabel maps arbitrary component keys to 0..k-1 in order of first
// appearance over observations 0..n-1.
func relabel(key func(int) int, n int) []int {
	labels := make([]int, n)
	seen := make(map[int]int)
	for i := 0; i < n; i++ {
		k := key(i)
		l, ok := seen[k]
		if !ok {
			l = len(seen)
			seen[k] = l
		}
		labels[i] = l
	}
	return labels
}

// CountClusters returns the number of distinct labels.
func CountClusters(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}
