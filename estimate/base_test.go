package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBase(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 1.0})
	cov := mat.NewSymDense(2, []float64{1.0, 0.0, 0.0, 1.0})

	b, err := NewBase(state)
	assert.NotNil(b)
	assert.NoError(err)
	assert.Equal(0.0, b.Cov().At(1, 1))

	b, err = NewBase(nil)
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBaseWithCov(state, cov)
	assert.NotNil(b)
	assert.NoError(err)

	b, err = NewBaseWithCov(state, mat.NewSymDense(1, []float64{1.0}))
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBaseWithCov(nil, cov)
	assert.Nil(b)
	assert.Error(err)
}

func TestValCovCopies(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 2.0})
	cov := mat.NewSymDense(2, []float64{1.0, 2.0, 2.0, 4.0})

	b, err := NewBaseWithCov(state, cov)
	assert.NotNil(b)
	assert.NoError(err)

	// mutating the inputs must not leak into the estimate
	state.SetVec(0, 100.0)
	cov.SetSym(0, 0, 100.0)

	v := b.Val()
	assert.Equal(1.0, v.AtVec(0))
	assert.Equal(2.0, v.AtVec(1))

	c := b.Cov()
	assert.Equal(1.0, c.At(0, 0))
	assert.Equal(2.0, c.At(0, 1))
	assert.Equal(4.0, c.At(1, 1))

	// mutating the returned copies must not leak either
	v.(*mat.VecDense).SetVec(1, -1.0)
	assert.Equal(2.0, b.Val().AtVec(1))
}

func TestBounds(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, -2.0})
	cov := mat.NewSymDense(2, []float64{4.0, 0.0, 0.0, 0.25})

	b, err := NewBaseWithCov(state, cov)
	assert.NoError(err)

	lower, upper := b.Bounds(3)
	assert.InDeltaSlice([]float64{-5.0, -3.5}, lower, 1e-12)
	assert.InDeltaSlice([]float64{7.0, -0.5}, upper, 1e-12)

	assert.NotEmpty(b.String())
}
