package algorithms

import "errors"

var (
	// ErrInsufficientData is returned when there are too few observations for
	// the requested computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidClusters is returned for a cluster count outside [1, n].
	ErrInvalidClusters = errors.New("invalid number of clusters")
	// ErrEigenFailed is returned when the eigendecomposition does not converge.
	ErrEigenFailed = errors.New("eigendecomposition failed")
	// ErrNotFinite is returned when an input matrix holds NaN or Inf.
	ErrNotFinite = errors.New("matrix contains non-finite values")
)
