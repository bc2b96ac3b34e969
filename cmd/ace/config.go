package main

import (
	"fmt"
	"os"
	"strings"

	filter "github.com/jakegem/ACE"
	"github.com/jakegem/ACE/kalman/kf"
	"github.com/jakegem/ACE/noise"
	"github.com/jakegem/ACE/sim"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Scenario describes a simulated filter run.
type Scenario struct {
	// State is the initial state estimate
	State []float64 `yaml:"state"`
	// Cov is the initial state covariance
	Cov [][]float64 `yaml:"cov"`
	// Model contains the system matrices
	Model ModelConfig `yaml:"model"`
	// Noise contains the filter noise covariances
	Noise NoiseConfig `yaml:"noise"`
	// Filter tunes the filter numerics
	Filter FilterConfig `yaml:"filter"`
	// Trajectory describes the simulated motion
	Trajectory TrajectoryConfig `yaml:"trajectory"`
	// Measurement describes the measurement noise of the simulation
	Measurement MeasurementConfig `yaml:"measurement"`
}

// ModelConfig contains the state transition and observation matrices.
type ModelConfig struct {
	F [][]float64 `yaml:"f"`
	H [][]float64 `yaml:"h"`
	// Discretize treats F as the continuous-time system matrix sampled at the trajectory rate
	Discretize bool `yaml:"discretize"`
}

// NoiseConfig contains process and measurement noise covariances.
type NoiseConfig struct {
	Q [][]float64 `yaml:"q"`
	R [][]float64 `yaml:"r"`
}

// FilterConfig selects the covariance update form and the innovation conditioning limit.
type FilterConfig struct {
	// CovUpdate is either joseph or simple
	CovUpdate string `yaml:"cov_update"`
	// ConditionTolerance is ignored unless positive
	ConditionTolerance float64 `yaml:"condition_tolerance"`
}

// TrajectoryConfig mirrors sim.Trajectory.
type TrajectoryConfig struct {
	Rate            float64 `yaml:"rate"`
	Duration        float64 `yaml:"duration"`
	InitialVelocity float64 `yaml:"initial_velocity"`
	Amplitude       float64 `yaml:"amplitude"`
	Frequency       float64 `yaml:"frequency"`
}

// MeasurementConfig describes the noise added to true positions.
type MeasurementConfig struct {
	// Type is either uniform or gaussian
	Type string `yaml:"type"`
	// Low and High bound uniform noise
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
	// Std is the standard deviation of gaussian noise
	Std float64 `yaml:"std"`
}

// DefaultScenario returns a constant velocity filter tracking
// the default trajectory measured with uniform noise in [-0.1, 0.1).
func DefaultScenario() *Scenario {
	traj := sim.DefaultTrajectory()

	return &Scenario{
		State: []float64{0, 0},
		Cov:   [][]float64{{1, 0}, {0, 1}},
		Model: ModelConfig{
			F: [][]float64{{1, 1}, {0, 1}},
			H: [][]float64{{1, 0}},
		},
		Noise: NoiseConfig{
			Q: [][]float64{{1e-4, 0}, {0, 1e-4}},
			R: [][]float64{{0.01}},
		},
		Filter: FilterConfig{
			CovUpdate: "joseph",
		},
		Trajectory: TrajectoryConfig{
			Rate:            traj.Rate,
			Duration:        traj.Duration,
			InitialVelocity: traj.InitialVelocity,
			Amplitude:       traj.Amplitude,
			Frequency:       traj.Frequency,
		},
		Measurement: MeasurementConfig{
			Type: "uniform",
			Low:  -0.1,
			High: 0.1,
		},
	}
}

// LoadScenario reads the YAML scenario in path.
// Keys missing from the file keep their DefaultScenario values.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseScenario(b)
}

// ParseScenario parses YAML scenario b on top of DefaultScenario.
func ParseScenario(b []byte) (*Scenario, error) {
	s := DefaultScenario()
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return s, nil
}

// SimTrajectory returns the simulated trajectory.
func (s *Scenario) SimTrajectory() sim.Trajectory {
	return sim.Trajectory{
		Rate:            s.Trajectory.Rate,
		Duration:        s.Trajectory.Duration,
		InitialVelocity: s.Trajectory.InitialVelocity,
		Amplitude:       s.Trajectory.Amplitude,
		Frequency:       s.Trajectory.Frequency,
	}
}

// NewFilter creates the filter described by the scenario.
func (s *Scenario) NewFilter() (*kf.KF, error) {
	if len(s.State) == 0 {
		return nil, fmt.Errorf("invalid scenario: empty state")
	}
	x := mat.NewVecDense(len(s.State), s.State)

	p, err := dense("cov", s.Cov)
	if err != nil {
		return nil, err
	}

	f, err := dense("model.f", s.Model.F)
	if err != nil {
		return nil, err
	}

	// the simulated sensor observes position only
	if len(s.Model.H) != 1 {
		return nil, fmt.Errorf("invalid scenario: model.h has %d rows, position measurements need 1", len(s.Model.H))
	}
	h, err := dense("model.h", s.Model.H)
	if err != nil {
		return nil, err
	}

	q, err := dense("noise.q", s.Noise.Q)
	if err != nil {
		return nil, err
	}

	r, err := dense("noise.r", s.Noise.R)
	if err != nil {
		return nil, err
	}

	if s.Model.Discretize {
		ct, err := sim.NewContinuous(f, nil, h, nil)
		if err != nil {
			return nil, err
		}

		dt, err := ct.ToDiscrete(s.SimTrajectory().Dt())
		if err != nil {
			return nil, err
		}
		f = mat.DenseCopyOf(dt.SystemMatrix())
	}

	var opts []kf.Option
	switch strings.ToLower(s.Filter.CovUpdate) {
	case "", "joseph":
		opts = append(opts, kf.WithCovUpdate(kf.Joseph))
	case "simple":
		opts = append(opts, kf.WithCovUpdate(kf.Simple))
	default:
		return nil, fmt.Errorf("invalid covariance update: %q", s.Filter.CovUpdate)
	}

	if s.Filter.ConditionTolerance > 0 {
		opts = append(opts, kf.WithConditionTolerance(s.Filter.ConditionTolerance))
	}

	return kf.New(x, p, f, q, h, r, opts...)
}

// NewMeasurementNoise creates the simulated measurement noise.
// Seed 0 seeds the noise from the current time.
// It returns nil noise when the noise is disabled.
func (s *Scenario) NewMeasurementNoise(seed uint64) (filter.Noise, error) {
	m := s.Measurement

	switch strings.ToLower(m.Type) {
	case "", "uniform":
		if m.Low == 0 && m.High == 0 {
			return nil, nil
		}
		if seed == 0 {
			return noise.NewUniform([]float64{m.Low}, []float64{m.High})
		}
		return noise.NewUniformWithSeed([]float64{m.Low}, []float64{m.High}, seed)
	case "gaussian":
		if m.Std == 0 {
			return nil, nil
		}
		cov := mat.NewSymDense(1, []float64{m.Std * m.Std})
		if seed == 0 {
			return noise.NewGaussian([]float64{0}, cov)
		}
		return noise.NewGaussianWithSeed([]float64{0}, cov, seed)
	case "none":
		return nil, nil
	}

	return nil, fmt.Errorf("invalid measurement noise type: %q", m.Type)
}

// dense creates a matrix from rows. It returns error if rows is empty or ragged.
func dense(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("invalid scenario: empty %s", name)
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("invalid scenario: %s row %d has %d columns, expected %d", name, i, len(row), cols)
		}
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), cols, data), nil
}
