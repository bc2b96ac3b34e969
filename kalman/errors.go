package kalman

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when operand dimensions are not conformant.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrSingularInnovation is returned when the innovation covariance
	// can not be inverted: it is either singular or too badly conditioned.
	ErrSingularInnovation = errors.New("singular innovation covariance")
	// ErrNonConformant is returned when a covariance matrix is not
	// symmetric positive semi-definite.
	ErrNonConformant = errors.New("non-conformant initialization")
	// ErrNonFinite is returned when a vector or matrix contains NaN or Inf.
	ErrNonFinite = errors.New("non-finite value")
)

// DimError describes a matrix whose dimensions do not match the model.
// It unwraps to ErrShapeMismatch.
type DimError struct {
	// Name is the matrix name
	Name string
	// Rows and Cols are the dimensions of the supplied matrix
	Rows, Cols int
	// WantRows and WantCols are the expected dimensions
	WantRows, WantCols int
}

func (e *DimError) Error() string {
	return fmt.Sprintf("invalid %s dimensions: [%d x %d], expected [%d x %d]",
		e.Name, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

// Unwrap returns ErrShapeMismatch.
func (e *DimError) Unwrap() error {
	return ErrShapeMismatch
}

// IsNil returns true if m is nil or holds a nil pointer.
func IsNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}

	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// CheckDims returns *DimError if m is not a rows x cols matrix.
// A nil m is reported as zero-sized.
func CheckDims(name string, m mat.Matrix, rows, cols int) error {
	var r, c int
	if !IsNil(m) {
		r, c = m.Dims()
	}

	if r != rows || c != cols {
		return &DimError{Name: name, Rows: r, Cols: c, WantRows: rows, WantCols: cols}
	}

	return nil
}

// CheckFinite returns error wrapping ErrNonFinite if any element of m is NaN or Inf.
func CheckFinite(name string, m mat.Matrix) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s element [%d, %d] is %v: %w", name, i, j, v, ErrNonFinite)
			}
		}
	}

	return nil
}
