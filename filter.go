package filter

import "gonum.org/v1/gonum/mat"

// Filter is a recursive dynamical system filter.
type Filter interface {
	// Predict advances the filter estimate by one model step
	Predict()
	// Update corrects the filter estimate using external measurement
	Update(mat.Vector) error
	// State returns current state estimate
	State() mat.Vector
	// Cov returns current state covariance
	Cov() mat.Symmetric
}

// Observer observes external state (output) of the system
type Observer interface {
	// Observe observes external state of the system
	Observe(mat.Vector, mat.Vector, mat.Vector) (mat.Vector, error)
}

// DiscreteModel is a dynamical system whose state is driven by
// static propagation and observation dynamics matrices
type DiscreteModel interface {
	// SystemDims returns state, input and output dimensions
	SystemDims() (nx, nu, ny int)
	// SystemMatrix returns state propagation matrix
	SystemMatrix() mat.Matrix
	// OutputMatrix returns observation matrix
	OutputMatrix() mat.Matrix
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset()
}
