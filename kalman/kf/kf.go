package kf

import (
	"errors"
	"fmt"

	filter "github.com/jakegem/ACE"
	"github.com/jakegem/ACE/estimate"
	"github.com/jakegem/ACE/kalman"
	"github.com/jakegem/ACE/matrix"
	"gonum.org/v1/gonum/mat"
)

// CovUpdate selects the form of the posteriori covariance update.
type CovUpdate int

const (
	// Joseph is the Joseph form update: P = (I-K*H)*P*(I-K*H)' + K*R*K'
	Joseph CovUpdate = iota
	// Simple is the short form update: P = (I-K*H)*P
	Simple
)

// DefaultSymmetryTolerance is relative tolerance used when checking
// covariance matrices for symmetry and positive semi-definiteness.
const DefaultSymmetryTolerance = 1e-9

// Option configures KF.
type Option func(*KF)

// WithConditionTolerance sets the largest condition number of the innovation
// covariance which is still considered invertible. New rejects values below 1.
func WithConditionTolerance(c float64) Option {
	return func(k *KF) {
		k.condTol = c
	}
}

// WithSymmetryTolerance sets relative tolerance of the covariance checks.
func WithSymmetryTolerance(tol float64) Option {
	return func(k *KF) {
		k.symTol = tol
	}
}

// WithCovUpdate sets the covariance update form.
func WithCovUpdate(u CovUpdate) Option {
	return func(k *KF) {
		k.form = u
	}
}

// KF is Kalman Filter.
// KF is not safe for concurrent use.
type KF struct {
	// x is state estimate
	x *mat.VecDense
	// p is state covariance
	p *mat.SymDense
	// f is state propagation matrix
	f *mat.Dense
	// q is state noise a.k.a. process noise covariance
	q *mat.SymDense
	// h is observation matrix
	h *mat.Dense
	// r is output noise a.k.a. measurement noise covariance
	r *mat.SymDense
	// eye is n x n identity
	eye mat.Matrix
	// inn is innovation vector
	inn *mat.VecDense
	// s is innovation covariance
	s *mat.SymDense
	// k is Kalman gain
	k *mat.Dense
	// condTol is innovation covariance condition number tolerance
	condTol float64
	// symTol is covariance symmetry tolerance
	symTol float64
	// form is covariance update form
	form CovUpdate
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - x:  initial state estimate (n)
//   - p:  initial state covariance (n x n)
//   - f:  state propagation matrix (n x n)
//   - q:  state noise a.k.a. process noise covariance (n x n)
//   - h:  observation matrix (m x n)
//   - r:  output noise a.k.a. measurement noise covariance (m x m)
//
// All matrices are copied. It returns error if either of the following conditions is met:
//   - any of the matrices is nil or has non-conformant dimensions: kalman.ErrShapeMismatch
//   - any of p, q, r is not symmetric positive semi-definite: kalman.ErrNonConformant
//   - any element is NaN or Inf: kalman.ErrNonFinite
//   - the condition tolerance is below 1 or the symmetry tolerance is negative
func New(x mat.Vector, p, f, q, h, r mat.Matrix, opts ...Option) (*KF, error) {
	for _, m := range []mat.Matrix{x, p, f, q, h, r} {
		if kalman.IsNil(m) {
			return nil, fmt.Errorf("nil model matrix: %w", kalman.ErrShapeMismatch)
		}
	}

	// size of the state and output vectors
	nx := x.Len()
	ny, _ := h.Dims()
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("invalid model dimensions: [%d x %d]: %w", nx, ny, kalman.ErrShapeMismatch)
	}

	for _, c := range []struct {
		name       string
		m          mat.Matrix
		rows, cols int
	}{
		{"state covariance", p, nx, nx},
		{"propagation matrix", f, nx, nx},
		{"state noise", q, nx, nx},
		{"observation matrix", h, ny, nx},
		{"output noise", r, ny, ny},
	} {
		if err := kalman.CheckDims(c.name, c.m, c.rows, c.cols); err != nil {
			return nil, err
		}
	}

	k := &KF{
		condTol: mat.ConditionTolerance,
		symTol:  DefaultSymmetryTolerance,
		form:    Joseph,
	}
	for _, opt := range opts {
		opt(k)
	}

	// every condition number is at least 1
	if !(k.condTol >= 1) {
		return nil, fmt.Errorf("invalid condition tolerance: %g", k.condTol)
	}
	if !(k.symTol >= 0) {
		return nil, fmt.Errorf("invalid symmetry tolerance: %g", k.symTol)
	}

	for _, c := range []struct {
		name string
		m    mat.Matrix
	}{
		{"state", x}, {"state covariance", p}, {"propagation matrix", f},
		{"state noise", q}, {"observation matrix", h}, {"output noise", r},
	} {
		if err := kalman.CheckFinite(c.name, c.m); err != nil {
			return nil, err
		}
	}

	var err error
	if k.p, err = k.covariance("state covariance", p); err != nil {
		return nil, err
	}
	if k.q, err = k.covariance("state noise", q); err != nil {
		return nil, err
	}
	if k.r, err = k.covariance("output noise", r); err != nil {
		return nil, err
	}

	if k.eye, err = matrix.Eye(nx); err != nil {
		return nil, err
	}

	k.x = mat.VecDenseCopyOf(x)
	k.f = mat.DenseCopyOf(f)
	k.h = mat.DenseCopyOf(h)
	k.inn = mat.NewVecDense(ny, nil)
	k.s = mat.NewSymDense(ny, nil)
	k.k = mat.NewDense(nx, ny, nil)

	return k, nil
}

// NewFromModel creates new KF from a discrete model m, initial condition init,
// state noise q and output noise r and returns it.
// Nil q or r, or noise with empty covariance, is treated as zero noise.
// It returns error if the model has control inputs or if New fails.
func NewFromModel(m filter.DiscreteModel, init filter.InitCond, q, r filter.Noise, opts ...Option) (*KF, error) {
	if m == nil || init == nil {
		return nil, fmt.Errorf("invalid model or initial condition: %w", kalman.ErrShapeMismatch)
	}

	nx, nu, ny := m.SystemDims()
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("invalid model dimensions: [%d x %d]: %w", nx, ny, kalman.ErrShapeMismatch)
	}

	if nu != 0 {
		return nil, fmt.Errorf("control input is not supported: %d inputs", nu)
	}

	return New(init.State(), init.Cov(), m.SystemMatrix(), noiseCov(q, nx), m.OutputMatrix(), noiseCov(r, ny), opts...)
}

func noiseCov(n filter.Noise, size int) mat.Symmetric {
	if n == nil || n.Cov().SymmetricDim() == 0 {
		return mat.NewSymDense(size, nil)
	}

	return n.Cov()
}

// covariance validates m and returns its symmetric copy.
func (k *KF) covariance(name string, m mat.Matrix) (*mat.SymDense, error) {
	if !matrix.IsSymmetric(m, k.symTol) {
		return nil, fmt.Errorf("%s is not symmetric: %w", name, kalman.ErrNonConformant)
	}

	sym := matrix.Symmetrize(m)
	if !matrix.IsPSD(sym, k.symTol) {
		return nil, fmt.Errorf("%s is not positive semi-definite: %w", name, kalman.ErrNonConformant)
	}

	return sym, nil
}

// Predict propagates the state estimate and its covariance to the next step:
//
//	x = F*x
//	P = F*P*F' + Q
func (k *KF) Predict() {
	x := &mat.VecDense{}
	x.MulVec(k.f, k.x)

	cov := &mat.Dense{}
	cov.Product(k.f, k.p, k.f.T())
	cov.Add(cov, k.q)

	k.x.CopyVec(x)
	k.p.CopySym(matrix.Symmetrize(cov))
}

// Update corrects the state estimate using the measurement z.
// It returns kalman.ErrShapeMismatch if z length does not match the observation model,
// kalman.ErrNonFinite if z contains NaN or Inf
// and kalman.ErrSingularInnovation if the innovation covariance can not be inverted.
// The filter is left unchanged when Update fails.
func (k *KF) Update(z mat.Vector) error {
	nx, ny := k.Dims()

	if err := kalman.CheckDims("measurement", z, ny, 1); err != nil {
		return err
	}
	if err := kalman.CheckFinite("measurement", z); err != nil {
		return err
	}

	// innovation: z - H*x
	inn := mat.NewVecDense(ny, nil)
	inn.MulVec(k.h, k.x)
	inn.SubVec(z, inn)

	// P*H'
	pht := mat.NewDense(nx, ny, nil)
	pht.Mul(k.p, k.h.T())

	// Note: pht = P * H' so we reuse the result here
	// S = H*P*H' + R
	hph := mat.NewDense(ny, ny, nil)
	hph.Mul(k.h, pht)
	hph.Add(hph, k.r)
	s := matrix.Symmetrize(hph)

	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		return fmt.Errorf("innovation covariance is not positive definite: %w", kalman.ErrSingularInnovation)
	}
	if cond := chol.Cond(); cond > k.condTol {
		return fmt.Errorf("innovation covariance condition number %g exceeds %g: %w", cond, k.condTol, kalman.ErrSingularInnovation)
	}

	// K = P*H'*inv(S) is solved from S*K' = H*P
	kt := &mat.Dense{}
	if err := chol.SolveTo(kt, pht.T()); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || float64(cond) > k.condTol {
			return fmt.Errorf("failed to calculate Kalman gain: %v: %w", err, kalman.ErrSingularInnovation)
		}
	}
	gain := mat.DenseCopyOf(kt.T())

	// update state x
	corr := mat.NewVecDense(nx, nil)
	corr.MulVec(gain, inn)
	x := mat.NewVecDense(nx, nil)
	x.AddVec(k.x, corr)

	// eye - K*H
	a := mat.NewDense(nx, nx, nil)
	a.Mul(gain, k.h)
	a.Sub(k.eye, a)

	pCorr := mat.NewDense(nx, nx, nil)
	switch k.form {
	case Simple:
		pCorr.Mul(a, k.p)
	default:
		pCorr.Product(a, k.p, a.T())
		// K*R*K'
		krk := mat.NewDense(nx, nx, nil)
		krk.Product(gain, k.r, gain.T())
		pCorr.Add(pCorr, krk)
	}

	k.x.CopyVec(x)
	k.p.CopySym(matrix.Symmetrize(pCorr))
	k.inn.CopyVec(inn)
	k.s.CopySym(s)
	k.k.Copy(gain)

	return nil
}

// Run runs one step of KF: it predicts the next state and corrects it using measurement z.
// It returns the posteriori estimate or error if the update fails.
func (k *KF) Run(z mat.Vector) (filter.Estimate, error) {
	k.Predict()

	if err := k.Update(z); err != nil {
		return nil, err
	}

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Estimate returns a snapshot of the current state estimate and covariance.
func (k *KF) Estimate() (filter.Estimate, error) {
	return estimate.NewBaseWithCov(k.x, k.p)
}

// Dims returns state and output dimensions.
func (k *KF) Dims() (nx, ny int) {
	nx = k.x.Len()
	ny, _ = k.h.Dims()

	return nx, ny
}

// State returns a copy of the KF state estimate
func (k *KF) State() mat.Vector {
	return mat.VecDenseCopyOf(k.x)
}

// SetState sets KF state estimate to x.
// It returns error if either x is nil, its length does not match the KF state or it holds NaN or Inf.
func (k *KF) SetState(x mat.Vector) error {
	if err := kalman.CheckDims("state vector", x, k.x.Len(), 1); err != nil {
		return err
	}

	if err := kalman.CheckFinite("state vector", x); err != nil {
		return err
	}

	k.x.CopyVec(x)

	return nil
}

// Cov returns KF covariance
func (k *KF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(k.p.SymmetricDim(), nil)
	cov.CopySym(k.p)

	return cov
}

// SetCov sets KF covariance matrix to cov.
// It returns error if either cov is nil, its dimensions are not the same as KF covariance dimensions
// or if it is not positive semi-definite.
func (k *KF) SetCov(cov mat.Symmetric) error {
	n := k.p.SymmetricDim()
	if err := kalman.CheckDims("state covariance", cov, n, n); err != nil {
		return err
	}

	if err := kalman.CheckFinite("state covariance", cov); err != nil {
		return err
	}

	if !matrix.IsPSD(cov, k.symTol) {
		return fmt.Errorf("state covariance is not positive semi-definite: %w", kalman.ErrNonConformant)
	}

	k.p.CopySym(cov)

	return nil
}

// Gain returns Kalman gain
func (k *KF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	gain.CloneFrom(k.k)

	return gain
}

// Innovation returns the innovation vector of the last successful update
func (k *KF) Innovation() mat.Vector {
	return mat.VecDenseCopyOf(k.inn)
}

// InnovationCov returns the innovation covariance of the last successful update
func (k *KF) InnovationCov() mat.Symmetric {
	s := mat.NewSymDense(k.s.SymmetricDim(), nil)
	s.CopySym(k.s)

	return s
}
