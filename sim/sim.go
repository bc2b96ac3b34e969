package sim

import "gonum.org/v1/gonum/mat"

// InitCond is the initial condition of a filter: the initial state
// estimate and its covariance. It implements filter.InitCond.
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond from copies of state and cov and returns it
func NewInitCond(state mat.Vector, cov mat.Symmetric) *InitCond {
	return &InitCond{
		state: mat.VecDenseCopyOf(state),
		cov:   copySym(cov),
	}
}

// State returns initial state
func (c *InitCond) State() mat.Vector { return mat.VecDenseCopyOf(c.state) }

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric { return copySym(c.cov) }

func copySym(m mat.Symmetric) *mat.SymDense {
	sym := mat.NewSymDense(m.SymmetricDim(), nil)
	sym.CopySym(m)

	return sym
}
