package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Continuous is a basic model of a linear, continuous-time, dynamical system
type Continuous struct {
	System
}

// NewContinuous creates a linear continuous-time model based on the control theory equations.
//
//	dx/dt = A*x + B*u
//	y = C*x + D*u
func NewContinuous(A, B, C, D *mat.Dense) (*Continuous, error) {
	sys, err := newSystem(A, B, C, D)
	if err != nil {
		return nil, err
	}

	return &Continuous{System: sys}, nil
}

// ToDiscrete creates a discrete-time model from a continuous time model
// using Ts as the sampling time and zero-order hold on the input.
//
// Both matrices come from a single exponential of the augmented matrix
//
//	exp([A B; 0 0]*Ts) = [Ad Bd; 0 I]
//
// which is valid for singular A as well.
func (ct *Continuous) ToDiscrete(Ts float64) (*Discrete, error) {
	if Ts <= 0 {
		return nil, fmt.Errorf("invalid sampling time: %g", Ts)
	}

	nx, nu, _ := ct.SystemDims()
	n := nx + nu

	m := mat.NewDense(n, n, nil)
	m.Slice(0, nx, 0, nx).(*mat.Dense).Scale(Ts, ct.A)
	if nu > 0 {
		m.Slice(0, nx, nx, n).(*mat.Dense).Scale(Ts, ct.B)
	}

	e := new(mat.Dense)
	e.Exp(m)

	var Bd *mat.Dense
	if nu > 0 {
		Bd = mat.DenseCopyOf(e.Slice(0, nx, nx, n))
	}

	d, err := NewDiscrete(mat.DenseCopyOf(e.Slice(0, nx, 0, nx)), Bd, ct.C, ct.D)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Propagate returns the next internal state x of a linear, continuous-time system
// given an input vector u and process noise wd.
// It integrates dx/dt = A*x + B*u + wd over a timestep dt with a single Euler step.
func (ct *Continuous) Propagate(x, u, wd mat.Vector, dt float64) (mat.Vector, error) {
	dx, err := ct.propagate(x, u, wd)
	if err != nil {
		return nil, err
	}

	out := mat.VecDenseCopyOf(x)
	out.AddScaledVec(out, dt, dx)

	return out, nil
}
