package noise

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform is bounded noise whose components are drawn independently
// from uniform distributions on [low[i], high[i]).
type Uniform struct {
	// dists are per-component uniform distributions
	dists []distuv.Uniform
	// low and high are the component bounds
	low  []float64
	high []float64
	// seed seeds the random source
	seed uint64
}

// NewUniform creates new Uniform noise with the given bounds seeded from the current time.
// It returns error if the bounds are empty, have different lengths or low[i] >= high[i].
func NewUniform(low, high []float64) (*Uniform, error) {
	return NewUniformWithSeed(low, high, uint64(time.Now().UnixNano()))
}

// NewUniformWithSeed creates new Uniform noise with the given bounds
// whose samples are drawn from a source seeded with seed.
func NewUniformWithSeed(low, high []float64, seed uint64) (*Uniform, error) {
	if len(low) == 0 || len(low) != len(high) {
		return nil, fmt.Errorf("invalid uniform noise bounds: %v, %v", low, high)
	}

	for i := range low {
		if !(low[i] < high[i]) {
			return nil, fmt.Errorf("invalid uniform noise bounds: [%g, %g)", low[i], high[i])
		}
	}

	u := &Uniform{
		low:  append([]float64(nil), low...),
		high: append([]float64(nil), high...),
		seed: seed,
	}
	u.Reset()

	return u, nil
}

// Sample generates a sample from Uniform noise and returns it.
func (u *Uniform) Sample() mat.Vector {
	sample := mat.NewVecDense(len(u.dists), nil)
	for i := range u.dists {
		sample.SetVec(i, u.dists[i].Rand())
	}

	return sample
}

// Mean returns Uniform mean: the midpoints of the bounds.
func (u *Uniform) Mean() []float64 {
	mean := make([]float64, len(u.dists))
	for i := range u.dists {
		mean[i] = u.dists[i].Mean()
	}

	return mean
}

// Cov returns diagonal covariance matrix of Uniform noise: (high-low)^2/12.
func (u *Uniform) Cov() mat.Symmetric {
	cov := mat.NewSymDense(len(u.dists), nil)
	for i := range u.dists {
		cov.SetSym(i, i, u.dists[i].Variance())
	}

	return cov
}

// Reset resets Uniform noise: samples are drawn again from the start of the seeded sequence.
func (u *Uniform) Reset() {
	src := rand.NewSource(u.seed)

	u.dists = make([]distuv.Uniform, len(u.low))
	for i := range u.low {
		u.dists[i] = distuv.Uniform{Min: u.low[i], Max: u.high[i], Src: src}
	}
}

// String implements the Stringer interface.
func (u *Uniform) String() string {
	return fmt.Sprintf("Uniform{\nLow=%v\nHigh=%v\n}", u.low, u.high)
}
