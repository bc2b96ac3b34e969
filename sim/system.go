package sim

import (
	"fmt"

	"github.com/jakegem/ACE/kalman"
	"gonum.org/v1/gonum/mat"
)

// System defines a linear model of a plant using
// traditional matrices of modern control theory.
//
// It contains the System (A), input (B), Observation/Output (C)
// and Feedthrough (D) matrices.
type System struct {
	// System/State matrix A
	A *mat.Dense
	// Control/Input Matrix B
	B *mat.Dense
	// Observation/Output Matrix C
	C *mat.Dense
	// Feedthrough matrix D
	D *mat.Dense
}

// newSystem copies the supplied matrices into a new System.
// Only A is mandatory. It returns error if the matrix dimensions do not conform.
func newSystem(A, B, C, D *mat.Dense) (System, error) {
	if A == nil {
		return System{}, fmt.Errorf("system matrix must be defined for a model")
	}

	nx, _ := A.Dims()
	if err := kalman.CheckDims("A", A, nx, nx); err != nil {
		return System{}, err
	}

	sys := System{A: mat.DenseCopyOf(A)}

	nu := 0
	if B != nil {
		_, nu = B.Dims()
		if err := kalman.CheckDims("B", B, nx, nu); err != nil {
			return System{}, err
		}
		sys.B = mat.DenseCopyOf(B)
	}

	ny := 0
	if C != nil {
		ny, _ = C.Dims()
		if err := kalman.CheckDims("C", C, ny, nx); err != nil {
			return System{}, err
		}
		sys.C = mat.DenseCopyOf(C)
	}

	if D != nil {
		if err := kalman.CheckDims("D", D, ny, nu); err != nil {
			return System{}, err
		}
		sys.D = mat.DenseCopyOf(D)
	}

	return sys, nil
}

// SystemDims returns internal state length (nx), input vector length (nu)
// and external/observable/output state length (ny).
func (s System) SystemDims() (nx, nu, ny int) {
	nx, _ = s.A.Dims()
	if s.B != nil {
		_, nu = s.B.Dims()
	}
	if s.C != nil {
		ny, _ = s.C.Dims()
	}
	return nx, nu, ny
}

// SystemMatrix returns state propagation matrix `A`.
func (s System) SystemMatrix() (A mat.Matrix) { return s.A }

// ControlMatrix returns state propagation control matrix `B`
func (s System) ControlMatrix() (B mat.Matrix) {
	if s.B == nil {
		return nil
	}
	return s.B
}

// OutputMatrix returns observation matrix `C`
func (s System) OutputMatrix() (C mat.Matrix) {
	if s.C == nil {
		return nil
	}
	return s.C
}

// FeedForwardMatrix returns observation control matrix `D`
func (s System) FeedForwardMatrix() (D mat.Matrix) {
	if s.D == nil {
		return nil
	}
	return s.D
}

// Observe returns external/observable state given internal state x and input u.
// wn is added to the output as a noise vector; empty wn is ignored.
func (s System) Observe(x, u, wn mat.Vector) (mat.Vector, error) {
	if s.C == nil {
		return nil, fmt.Errorf("output matrix must be defined to observe a model")
	}

	nx, nu, ny := s.SystemDims()
	if err := checkVec("state", x, nx); err != nil {
		return nil, err
	}

	y := mat.NewVecDense(ny, nil)
	y.MulVec(s.C, x)

	if u != nil && u.Len() != 0 && s.D != nil {
		if err := checkVec("input", u, nu); err != nil {
			return nil, err
		}
		yu := mat.NewVecDense(ny, nil)
		yu.MulVec(s.D, u)
		y.AddVec(y, yu)
	}

	if wn != nil && wn.Len() != 0 {
		if err := checkVec("output noise", wn, ny); err != nil {
			return nil, err
		}
		y.AddVec(y, wn)
	}

	return y, nil
}

// propagate returns A*x + B*u + wd.
func (s System) propagate(x, u, wd mat.Vector) (*mat.VecDense, error) {
	nx, nu, _ := s.SystemDims()
	if err := checkVec("state", x, nx); err != nil {
		return nil, err
	}

	out := mat.NewVecDense(nx, nil)
	out.MulVec(s.A, x)

	if u != nil && u.Len() != 0 && s.B != nil {
		if err := checkVec("input", u, nu); err != nil {
			return nil, err
		}
		outU := mat.NewVecDense(nx, nil)
		outU.MulVec(s.B, u)
		out.AddVec(out, outU)
	}

	if wd != nil && wd.Len() != 0 {
		if err := checkVec("state noise", wd, nx); err != nil {
			return nil, err
		}
		out.AddVec(out, wd)
	}

	return out, nil
}

func checkVec(name string, v mat.Vector, n int) error {
	return kalman.CheckDims(name, v, n, 1)
}
