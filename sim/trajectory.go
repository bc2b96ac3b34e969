package sim

import (
	"fmt"
	"math"

	filter "github.com/jakegem/ACE"
	"gonum.org/v1/gonum/mat"
)

// Trajectory describes a one dimensional motion whose velocity oscillates
// around a constant value:
//
//	v(t) = InitialVelocity + Amplitude*sin(2*pi*Frequency*t)
type Trajectory struct {
	// Rate is the sampling rate in Hz
	Rate float64
	// Duration is the length of the trajectory in seconds
	Duration float64
	// InitialVelocity is the constant velocity component
	InitialVelocity float64
	// Amplitude is the amplitude of the velocity oscillation
	Amplitude float64
	// Frequency is the frequency of the velocity oscillation in Hz
	Frequency float64
}

// DefaultTrajectory returns a 5 seconds long trajectory sampled at 60 Hz.
func DefaultTrajectory() Trajectory {
	return Trajectory{
		Rate:            60,
		Duration:        5,
		InitialVelocity: 1,
		Amplitude:       1,
		Frequency:       1,
	}
}

// Dt returns the sampling period.
func (t Trajectory) Dt() float64 { return 1.0 / t.Rate }

// Steps returns the number of samples of the trajectory.
func (t Trajectory) Steps() int { return int(t.Rate * t.Duration) }

// Validate returns error if the trajectory can not be sampled.
func (t Trajectory) Validate() error {
	if !(t.Rate > 0) || math.IsInf(t.Rate, 0) {
		return fmt.Errorf("invalid trajectory rate: %g", t.Rate)
	}

	if !(t.Duration > 0) || t.Steps() < 1 {
		return fmt.Errorf("invalid trajectory duration: %g", t.Duration)
	}

	return nil
}

// Truth is a sampled trajectory.
type Truth struct {
	// Time contains sample times
	Time []float64
	// Position contains true positions
	Position []float64
	// Velocity contains true velocities
	Velocity []float64
	// model integrates velocity into position
	model *Discrete
}

// Generate samples the trajectory starting at zero position.
// Position is integrated with an Euler step: p[k] = p[k-1] + v(t[k])*dt.
func (t Trajectory) Generate() (*Truth, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	dt := t.Dt()
	model, err := NewDiscrete(
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{dt}),
		mat.NewDense(1, 1, []float64{1}),
		nil,
	)
	if err != nil {
		return nil, err
	}

	n := t.Steps()
	truth := &Truth{
		Time:     make([]float64, n),
		Position: make([]float64, n),
		Velocity: make([]float64, n),
		model:    model,
	}

	var x mat.Vector = mat.NewVecDense(1, nil)
	for i := 0; i < n; i++ {
		ti := float64(i) * dt
		v := t.InitialVelocity + t.Amplitude*math.Sin(2*math.Pi*t.Frequency*ti)

		x, err = model.Propagate(x, mat.NewVecDense(1, []float64{v}), nil)
		if err != nil {
			return nil, err
		}

		truth.Time[i] = ti
		truth.Velocity[i] = v
		truth.Position[i] = x.AtVec(0)
	}

	return truth, nil
}

// Len returns the number of samples.
func (tr *Truth) Len() int { return len(tr.Position) }

// Measure returns noisy position observations: one sample of n is added to every true position.
// Nil n returns noiseless observations.
func (tr *Truth) Measure(n filter.Noise) ([]mat.Vector, error) {
	zs := make([]mat.Vector, len(tr.Position))
	for i, p := range tr.Position {
		var wn mat.Vector
		if n != nil {
			wn = n.Sample()
		}

		z, err := tr.model.Observe(mat.NewVecDense(1, []float64{p}), nil, wn)
		if err != nil {
			return nil, fmt.Errorf("failed to measure sample %d: %w", i, err)
		}
		zs[i] = z
	}

	return zs, nil
}
