package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Base is base estimate
type Base struct {
	// val is estimated value
	val *mat.VecDense
	// cov is estimated covariance
	cov *mat.SymDense
}

// NewBase returns base estimate given val.
// Its covariance is a zero matrix.
func NewBase(val mat.Vector) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(v.Len(), nil)

	return &Base{
		val: v,
		cov: c,
	}, nil
}

// NewBaseWithCov returns base estimate given value and covariance.
// It returns error if the covariance dimension does not match the value length.
func NewBaseWithCov(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || cov == nil {
		return nil, fmt.Errorf("invalid estimate: val=%v cov=%v", val, cov)
	}

	rv, _ := val.Dims()
	rc := cov.SymmetricDim()

	if rv != rc {
		return nil, fmt.Errorf("invalid dimensions. Val: %d, Cov: %d x %d", rv, rc, rc)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Base{
		val: v,
		cov: c,
	}, nil
}

// Val returns estimated value
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns covariance estimate
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}

// Bounds returns the n-sigma envelope of the estimate:
// val[i] -/+ n*sqrt(cov[i][i]) for every state component.
func (b *Base) Bounds(n float64) (lower, upper []float64) {
	size := b.val.Len()
	lower = make([]float64, size)
	upper = make([]float64, size)

	for i := 0; i < size; i++ {
		sigma := math.Sqrt(math.Max(b.cov.At(i, i), 0))
		lower[i] = b.val.AtVec(i) - n*sigma
		upper[i] = b.val.AtVec(i) + n*sigma
	}

	return lower, upper
}

// String implements the Stringer interface.
func (b *Base) String() string {
	return fmt.Sprintf("Base{\nVal=%v\nCov=%v\n}",
		mat.Formatted(b.val.T(), mat.Prefix("    "), mat.Squeeze()),
		mat.Formatted(b.cov, mat.Prefix("    "), mat.Squeeze()))
}
