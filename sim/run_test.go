package sim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jakegem/ACE/kalman"
	"github.com/jakegem/ACE/kalman/kf"
	"github.com/jakegem/ACE/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// stepFilter is a filter whose state counts predict steps.
// Its updates fail at the steps listed in fail.
type stepFilter struct {
	step int
	fail map[int]error
}

func (f *stepFilter) Predict() { f.step++ }

func (f *stepFilter) Update(z mat.Vector) error { return f.fail[f.step-1] }

func (f *stepFilter) State() mat.Vector {
	return mat.NewVecDense(1, []float64{float64(f.step)})
}

func (f *stepFilter) Cov() mat.Symmetric {
	return mat.NewSymDense(1, []float64{4.0})
}

func measurements(n int) []mat.Vector {
	zs := make([]mat.Vector, n)
	for i := range zs {
		zs[i] = mat.NewVecDense(1, []float64{float64(i)})
	}

	return zs
}

func newScenarioKF(t *testing.T) *kf.KF {
	f, err := kf.New(
		mat.NewVecDense(2, nil),
		mat.NewSymDense(2, []float64{1, 0, 0, 1}),
		mat.NewDense(2, 2, []float64{1, 1, 0, 1}),
		mat.NewSymDense(2, []float64{1e-4, 0, 0, 1e-4}),
		mat.NewDense(1, 2, []float64{1, 0}),
		mat.NewSymDense(1, []float64{0.01}),
	)
	require.NoError(t, err)

	return f
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	truth, err := DefaultTrajectory().Generate()
	require.NoError(t, err)

	un, err := noise.NewUniformWithSeed([]float64{-0.1}, []float64{0.1}, 1)
	require.NoError(t, err)

	zs, err := truth.Measure(un)
	require.NoError(t, err)

	res, err := Run(newScenarioKF(t), zs, discard)
	assert.NoError(err)
	require.NotNil(t, res)

	assert.Equal(truth.Len(), res.Len())
	assert.Len(res.Posterior, truth.Len())
	assert.Empty(res.Skipped)

	// the first priori estimate is the predicted initial condition
	assert.Equal(0.0, res.Prior[0].Val().AtVec(0))
	assert.InDelta(2.0001, res.Prior[0].Cov().At(0, 0), 1e-12)

	lower, upper := res.Bounds(0)
	prior := res.PriorSeries(0)
	for i := range prior {
		assert.True(lower[i] <= prior[i] && prior[i] <= upper[i])
	}

	_, _, rmse, err := res.Errors(0, truth.Position)
	assert.NoError(err)
	assert.True(rmse < 0.1, "rmse: %v", rmse)

	_, _, _, err = res.Errors(0, truth.Position[1:])
	assert.Error(err)
}

func TestRunSkip(t *testing.T) {
	assert := assert.New(t)

	f := &stepFilter{
		fail: map[int]error{
			1: fmt.Errorf("step 1: %w", kalman.ErrSingularInnovation),
			3: kalman.ErrSingularInnovation,
		},
	}

	res, err := Run(f, measurements(5), discard)
	assert.NoError(err)
	require.NotNil(t, res)

	assert.Equal(5, res.Len())
	assert.Equal([]int{1, 3}, res.Skipped)
	assert.Equal([]float64{1, 2, 3, 4, 5}, res.PriorSeries(0))
	assert.Equal([]float64{1, 2, 3, 4, 5}, res.PosteriorSeries(0))

	lower, upper := res.Bounds(0)
	assert.InDeltaSlice([]float64{-5, -4, -3, -2, -1}, lower, 1e-12)
	assert.InDeltaSlice([]float64{7, 8, 9, 10, 11}, upper, 1e-12)
}

func TestRunAbort(t *testing.T) {
	assert := assert.New(t)

	f := &stepFilter{
		fail: map[int]error{
			2: &kalman.DimError{Name: "z", Rows: 2, Cols: 1, WantRows: 1, WantCols: 1},
		},
	}

	res, err := Run(f, measurements(5), nil)
	assert.Nil(res)
	assert.Error(err)
	assert.True(errors.Is(err, kalman.ErrShapeMismatch))

	// the filter is not advanced past the failing step
	assert.Equal(3, f.step)

	res, err = Run(nil, measurements(5), discard)
	assert.Nil(res)
	assert.Error(err)
}

func TestRunEmpty(t *testing.T) {
	assert := assert.New(t)

	res, err := Run(newScenarioKF(t), nil, discard)
	assert.NoError(err)
	assert.Equal(0, res.Len())

	_, _, _, err = res.Errors(0, nil)
	assert.Error(err)
}
