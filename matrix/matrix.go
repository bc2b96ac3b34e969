package matrix

import (
	"fmt"
	"math"

	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Eye returns n x n identity matrix.
// It returns error if n is non-positive.
func Eye(n int) (mat.Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid identity dimension: %d", n)
	}

	return mx.NewDenseValIdentity(n, 1.0)
}

// IsSymmetric returns true if m is square and its off-diagonal elements
// agree with their transposed counterparts to within relative tolerance tol.
// It panics if m is nil.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	rows, cols := m.Dims()
	if rows != cols {
		return false
	}

	for i := 0; i < rows; i++ {
		for j := i + 1; j < cols; j++ {
			a, b := m.At(i, j), m.At(j, i)
			if !scalar.EqualWithinAbsOrRel(a, b, tol, tol) {
				return false
			}
		}
	}

	return true
}

// Symmetrize returns the symmetric part of a square matrix m, i.e. (m + m')/2.
// It panics if m is not square.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	rows, cols := m.Dims()
	if rows != cols {
		panic(mat.ErrSquare)
	}

	sym := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < cols; j++ {
			sym.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return sym
}

// IsPSD returns true if the symmetric matrix m is positive semi-definite.
// Eigenvalues which are negative by less than tol times the largest
// eigenvalue magnitude are treated as zero.
func IsPSD(m mat.Symmetric, tol float64) bool {
	if m.SymmetricDim() == 0 {
		return true
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(m, false); !ok {
		return false
	}
	vals := eig.Values(nil)

	lo := floats.Min(vals)
	scale := math.Max(math.Abs(lo), math.Abs(floats.Max(vals)))

	return lo >= -tol*scale
}

// Diag returns a slice containing the diagonal of a square matrix m.
// It panics if m is not square.
func Diag(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	if rows != cols {
		panic(mat.ErrSquare)
	}

	diag := make([]float64, rows)
	for i := range diag {
		diag[i] = m.At(i, i)
	}

	return diag
}
