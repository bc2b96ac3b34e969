package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Zero is noise which never perturbs anything: zero mean and zero covariance.
type Zero struct {
	// dim is the noise dimension
	dim int
}

// NewZero creates new zero noise of the given dimension.
// It returns error if dim is negative.
func NewZero(dim int) (*Zero, error) {
	if dim < 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", dim)
	}

	return &Zero{dim: dim}, nil
}

// Sample returns a vector with zero values.
func (z *Zero) Sample() mat.Vector {
	if z.dim == 0 {
		return &mat.VecDense{}
	}

	return mat.NewVecDense(z.dim, nil)
}

// Cov returns symmetric matrix with zero values.
func (z *Zero) Cov() mat.Symmetric {
	if z.dim == 0 {
		return &mat.SymDense{}
	}

	return mat.NewSymDense(z.dim, nil)
}

// Mean returns Zero mean.
func (z *Zero) Mean() []float64 {
	if z.dim == 0 {
		return nil
	}

	return make([]float64, z.dim)
}

// Reset does nothing: Zero noise has no state.
func (z *Zero) Reset() {}

// String implements the Stringer interface.
func (z *Zero) String() string {
	return fmt.Sprintf("Zero{\nMean=%v\nCov=%v\n}", z.Mean(), mat.Formatted(z.Cov(), mat.Prefix("    "), mat.Squeeze()))
}

// None is noise of zero dimension.
// A filter given None noise treats it as zero noise of its own dimension.
type None struct {
	Zero
}

// NewNone creates new None noise and returns it
func NewNone() (*None, error) {
	return &None{}, nil
}

// String implements the Stringer interface.
func (n *None) String() string {
	return fmt.Sprintf("None{\nMean=%v\nCov=%v\n}", n.Mean(), mat.Formatted(n.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
