package algorithms

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// LabelAssignment selects how the spectral embedding is turned into labels.
type LabelAssignment int

const (
	// AssignDiscretize searches for the discrete partition closest to the
	// embedding (Yu and Shi, "Multiclass spectral clustering").
	AssignDiscretize LabelAssignment = iota
	// AssignKMeans runs seeded k-means on the embedding.
	AssignKMeans
)

// SpectralOptions configures SpectralClustering.
type SpectralOptions struct {
	Clusters int
	Seed     uint64
	Assign   LabelAssignment
	// Restarts bounds k-means initialisations or discretize SVD restarts.
	Restarts int
}

// SpectralClustering partitions observations given a precomputed, symmetric,
// non-negative affinity matrix. The embedding uses the leading eigenvectors
// of the normalized affinity D^-1/2 A D^-1/2, rescaled by D^-1/2, and labels
// are assigned by discretization or seeded k-means. Isolated observations
// (zero degree) are kept and end up wherever their embedding places them.
func SpectralClustering(affinity mat.Symmetric, opts SpectralOptions) ([]int, error) {
	if affinity == nil {
		return nil, fmt.Errorf("%w: empty affinity matrix", ErrInsufficientData)
	}
	n := affinity.SymmetricDim()
	k := opts.Clusters
	if n < 2 {
		return nil, fmt.Errorf("%w: spectral clustering needs at least 2 observations, got %d", ErrInsufficientData, n)
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: %d for %d observations", ErrInvalidClusters, k, n)
	}
	if err := checkFinite(affinity); err != nil {
		return nil, err
	}

	invSqrt := make([]float64, n)
	for i := 0; i < n; i++ {
		var deg float64
		for j := 0; j < n; j++ {
			deg += affinity.At(i, j)
		}
		if deg < 0 {
			return nil, fmt.Errorf("spectral clustering: negative degree at %d", i)
		}
		if deg > 0 {
			invSqrt[i] = 1 / math.Sqrt(deg)
		}
	}

	norm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			norm.SetSym(i, j, invSqrt[i]*affinity.At(i, j)*invSqrt[j])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(norm, true); !ok {
		return nil, ErrEigenFailed
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back ascending; the leading k are the last columns.
	points := make([][]float64, n)
	for i := range points {
		points[i] = make([]float64, k)
	}
	for c := 0; c < k; c++ {
		col := n - 1 - c
		v := mat.Col(nil, col, &vecs)
		flipSign(v)
		for i := 0; i < n; i++ {
			scale := 1.0
			if invSqrt[i] > 0 {
				scale = invSqrt[i]
			}
			points[i][c] = v[i] * scale
		}
	}

	if opts.Assign == AssignKMeans {
		res, err := KMeans(points, KMeansOptions{
			Clusters: k,
			Seed:     opts.Seed,
			Restarts: max(opts.Restarts, 10),
		})
		if err != nil {
			return nil, err
		}
		return res.Labels, nil
	}

	restarts := opts.Restarts
	if restarts <= 0 {
		restarts = 30
	}
	labels, err := Discretize(points, opts.Seed, restarts)
	if err != nil {
		return nil, err
	}
	return relabel(func(i int) int { return labels[i] }, n), nil
}

// Discretize finds a discrete partition of a spectral embedding by
// alternating between assigning each row to its largest rotated coordinate
// and re-fitting the rotation by SVD. Returns ErrEigenFailed when the
// rotation does not converge within the allowed restarts.
func Discretize(embedding [][]float64, seed uint64, maxRestarts int) ([]int, error) {
	const maxIter = 20
	n := len(embedding)
	if n == 0 {
		return nil, ErrInsufficientData
	}
	k := len(embedding[0])

	vec := mat.NewDense(n, k, nil)
	for i, row := range embedding {
		vec.SetRow(i, row)
	}
	// Scale each column to norm sqrt(n) with a non-positive first entry, then
	// project rows onto the unit sphere.
	for c := 0; c < k; c++ {
		col := mat.Col(nil, c, vec)
		norm := 0.0
		for _, v := range col {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		scale := math.Sqrt(float64(n)) / norm
		if col[0] > 0 {
			scale = -scale
		}
		for i := range col {
			col[i] *= scale
		}
		vec.SetCol(c, col)
	}
	for i := 0; i < n; i++ {
		row := vec.RawRowView(i)
		norm := 0.0
		for _, v := range row {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	labels := make([]int, n)
	for restart := 0; restart < maxRestarts; restart++ {
		rotation := mat.NewDense(k, k, nil)
		rotation.SetCol(0, vec.RawRowView(rng.IntN(n)))
		c := make([]float64, n)
		for j := 1; j < k; j++ {
			prev := mat.Col(nil, j-1, rotation)
			for i := 0; i < n; i++ {
				c[i] += math.Abs(mat.Dot(vec.RowView(i), mat.NewVecDense(k, prev)))
			}
			rotation.SetCol(j, vec.RawRowView(argmin(c)))
		}

		last := 0.0
		for iter := 1; ; iter++ {
			var rotated mat.Dense
			rotated.Mul(vec, rotation)
			for i := 0; i < n; i++ {
				labels[i] = argmax(rotated.RawRowView(i))
			}

			indicator := mat.NewDense(k, k, nil)
			for i := 0; i < n; i++ {
				row := vec.RawRowView(i)
				for j := 0; j < k; j++ {
					indicator.Set(labels[i], j, indicator.At(labels[i], j)+row[j])
				}
			}

			var svd mat.SVD
			if !svd.Factorize(indicator, mat.SVDFull) {
				break
			}
			values := svd.Values(nil)
			sum := 0.0
			for _, v := range values {
				sum += v
			}
			ncut := 2 * (float64(n) - sum)
			if math.Abs(ncut-last) < 2.220446049250313e-16 || iter > maxIter {
				return labels, nil
			}
			last = ncut

			var u, v mat.Dense
			svd.UTo(&u)
			svd.VTo(&v)
			rotation.Mul(&v, u.T())
		}
	}
	return nil, fmt.Errorf("%w: discretization did not converge after %d restarts", ErrEigenFailed, maxRestarts)
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func argmin(v []float64) int {
	best := 0
	for i := range v {
		if v[i] < v[best] {
			best = i
		}
	}
	return best
}

// flipSign makes the largest-magnitude entry of v positive so eigenvectors
// have a deterministic orientation.
func flipSign(v []float64) {
	idx := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[idx]) {
			idx = i
		}
	}
	if v[idx] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}
