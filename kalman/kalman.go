package kalman

import (
	filter "github.com/jakegem/ACE"
	"gonum.org/v1/gonum/mat"
)

// Kalman is Kalman Filter
type Kalman interface {
	// filter.Filter is dynamical system filter
	filter.Filter
	// Gain returns Kalman gain of the last successful update
	Gain() mat.Matrix
	// Innovation returns innovation vector of the last successful update
	Innovation() mat.Vector
}
