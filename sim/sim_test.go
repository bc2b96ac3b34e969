package sim

import (
	"errors"
	"os"
	"testing"

	filter "github.com/jakegem/ACE"
	"github.com/jakegem/ACE/kalman"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	_ filter.DiscreteModel = (*Discrete)(nil)
	_ filter.Observer      = (*Discrete)(nil)
	_ filter.InitCond      = (*InitCond)(nil)
)

var (
	x, u, q, r *mat.VecDense
	A, B, C, D *mat.Dense
)

func setup() {
	x = mat.NewVecDense(2, []float64{0.5, 0.6})
	u = mat.NewVecDense(1, []float64{-1.0})

	// state and output noise
	q = mat.NewVecDense(2, nil)
	r = mat.NewVecDense(1, []float64{0.1})

	A = mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B = mat.NewDense(2, 1, []float64{0.5, 1.0})
	C = mat.NewDense(1, 2, []float64{1.0, 0.0})
	D = mat.NewDense(1, 1, []float64{0.0})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestInitCond(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 3.0})
	cov := mat.NewSymDense(2, []float64{0.25, 0, 0, 0.25})

	ic := NewInitCond(state, cov)
	state.SetVec(0, 10.0)

	assert.Equal(1.0, ic.State().AtVec(0))
	assert.Equal(3.0, ic.State().AtVec(1))
	assert.True(mat.Equal(cov, ic.Cov()))
}

func TestNewDiscrete(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NotNil(f)
	assert.NoError(err)

	f, err = NewDiscrete(A, nil, C, nil)
	assert.NotNil(f)
	assert.NoError(err)

	testCases := []struct {
		A, B, C, D *mat.Dense
	}{
		{nil, B, C, D},
		{mat.NewDense(2, 3, nil), nil, nil, nil},
		{A, mat.NewDense(3, 1, nil), C, nil},
		{A, B, mat.NewDense(1, 3, nil), nil},
		{A, B, C, mat.NewDense(1, 2, nil)},
	}

	for _, tc := range testCases {
		f, err := NewDiscrete(tc.A, tc.B, tc.C, tc.D)
		assert.Nil(f)
		assert.Error(err)
	}

	_, err = NewDiscrete(A, mat.NewDense(3, 1, nil), C, nil)
	assert.True(errors.Is(err, kalman.ErrShapeMismatch))
}

func TestSystemDims(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NoError(err)

	nx, nu, ny := f.SystemDims()
	assert.Equal(2, nx)
	assert.Equal(1, nu)
	assert.Equal(1, ny)

	f, err = NewDiscrete(A, nil, nil, nil)
	assert.NoError(err)

	nx, nu, ny = f.SystemDims()
	assert.Equal(2, nx)
	assert.Equal(0, nu)
	assert.Equal(0, ny)
	assert.Nil(f.ControlMatrix())
	assert.Nil(f.OutputMatrix())
	assert.Nil(f.FeedForwardMatrix())
}

func TestSystemMatrices(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NoError(err)

	assert.True(mat.Equal(A, f.SystemMatrix()))
	assert.True(mat.Equal(B, f.ControlMatrix()))
	assert.True(mat.Equal(C, f.OutputMatrix()))
	assert.True(mat.Equal(D, f.FeedForwardMatrix()))

	// the model keeps its own copies
	a := mat.DenseCopyOf(A)
	g, err := NewDiscrete(a, nil, nil, nil)
	assert.NoError(err)
	a.Set(0, 0, 42.0)
	assert.Equal(1.0, g.SystemMatrix().At(0, 0))
}

func TestDiscretePropagate(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NoError(err)

	v, err := f.Propagate(x, u, q)
	assert.NotNil(v)
	assert.NoError(err)
	assert.InDelta(0.6, v.AtVec(0), 1e-12)
	assert.InDelta(-0.4, v.AtVec(1), 1e-12)

	// no input
	v, err = f.Propagate(x, nil, nil)
	assert.NoError(err)
	assert.InDelta(1.1, v.AtVec(0), 1e-12)
	assert.InDelta(0.6, v.AtVec(1), 1e-12)

	// state noise is added
	v, err = f.Propagate(x, nil, mat.NewVecDense(2, []float64{1.0, -1.0}))
	assert.NoError(err)
	assert.InDelta(2.1, v.AtVec(0), 1e-12)
	assert.InDelta(-0.4, v.AtVec(1), 1e-12)

	v, err = f.Propagate(mat.NewVecDense(3, nil), u, q)
	assert.Nil(v)
	assert.Error(err)

	v, err = f.Propagate(x, mat.NewVecDense(2, nil), q)
	assert.Nil(v)
	assert.Error(err)

	v, err = f.Propagate(x, u, mat.NewVecDense(3, nil))
	assert.Nil(v)
	assert.Error(err)
}

func TestSystemObserve(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NoError(err)

	y, err := f.Observe(x, u, nil)
	assert.NoError(err)
	assert.Equal(1, y.Len())
	assert.InDelta(0.5, y.AtVec(0), 1e-12)

	y, err = f.Observe(x, nil, r)
	assert.NoError(err)
	assert.InDelta(0.6, y.AtVec(0), 1e-12)

	y, err = f.Observe(mat.NewVecDense(3, nil), u, r)
	assert.Nil(y)
	assert.Error(err)

	y, err = f.Observe(x, u, mat.NewVecDense(2, nil))
	assert.Nil(y)
	assert.Error(err)

	// no output matrix
	g, err := NewDiscrete(A, nil, nil, nil)
	assert.NoError(err)
	y, err = g.Observe(x, nil, nil)
	assert.Nil(y)
	assert.Error(err)
}
