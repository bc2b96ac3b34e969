package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestNewGaussian(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		mean []float64
		cov  mat.Symmetric
		ok   bool
	}{
		{[]float64{2, 3}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), true},
		{[]float64{2}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), false},
		// not positive definite
		{[]float64{0, 0}, mat.NewSymDense(2, []float64{1, 2, 2, 1}), false},
		{[]float64{0, 0}, nil, false},
	}

	for _, tc := range testCases {
		g, err := NewGaussian(tc.mean, tc.cov)
		if tc.ok {
			assert.NotNil(g)
			assert.NoError(err)
			continue
		}
		assert.Nil(g)
		assert.Error(err)
	}
}

func TestGaussianMeanCov(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov)
	assert.NoError(err)

	mean[0] = 100
	cov.SetSym(0, 0, 100)

	assert.Equal([]float64{2, 3}, g.Mean())
	assert.Equal(1.0, g.Cov().At(0, 0))
	assert.Equal(0.1, g.Cov().At(1, 0))
}

func TestGaussianSample(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussianWithSeed([]float64{5}, mat.NewSymDense(1, []float64{0.25}), 42)
	assert.NoError(err)

	samples := make([]float64, 5000)
	for i := range samples {
		samples[i] = g.Sample().AtVec(0)
	}

	mean, std := stat.MeanStdDev(samples, nil)
	assert.InDelta(5.0, mean, 0.05)
	assert.InDelta(0.5, std, 0.05)
}

func TestGaussianReset(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussianWithSeed([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 0, 0, 1}), 7)
	assert.NoError(err)

	first := mat.VecDenseCopyOf(g.Sample())
	g.Sample()

	g.Reset()
	assert.True(mat.Equal(first, g.Sample()))
}

func TestGaussianString(t *testing.T) {
	assert := assert.New(t)

	str := `Gaussian{
Mean=[2 3]
Cov=⎡  1  0.1⎤
    ⎣0.1    1⎦
}`
	g, err := NewGaussian([]float64{2, 3}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}))
	assert.NoError(err)
	assert.Equal(str, g.String())
}
