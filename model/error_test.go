package model

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// Easy - max and mean are the same so we can test normed or not
func TestErrorSuiteNormed(t *testing.T) {
	assert := assert.New(t)

	m1 := Marginals{
		{250.0, 750.0},
		{25.1, 75.3},
	}
	m2 := Marginals{
		{42.0, 42.0},
		{3.1, 3.1},
	}

	// Calculate mean hellinger
	// Should come out to 0.18459191128251448
	p1 := math.Pow(math.Sqrt(0.75)-math.Sqrt(0.50), 2)
	p2 := math.Pow(math.Sqrt(0.25)-math.Sqrt(0.50), 2)
	hellExp := math.Sqrt(p1+p2) / math.Sqrt2

	/* JS Divergence calc via python with from scipy.stats import entropy
	from numpy.linalg import norm
	import numpy as np
	def jsd(p, q):
		_p = p / norm(p, ord=1)
		_q = q / norm(q, ord=1)
		_m = 0.5 * (_p + _q)
		return 0.5 * (entropy(_p, _m, base=2) + entropy(_q, _m, base=2))
	print(jsd([0.5, 0.5], [0.25, 0.75]))
	*/
	jsExp := 0.0487949406953985

	var suite *ErrorSuite
	var err error
	const eps = 1e-8

	check := func() {
		suite, err = NewErrorSuite(m1, m2)
		assert.NoError(err)
		assert.InEpsilon(0.25, suite.MeanMeanAbsError, eps)
		assert.InEpsilon(0.25, suite.MaxMeanAbsError, eps)
		assert.InEpsilon(0.25, suite.MeanMaxAbsError, eps)
		assert.InEpsilon(0.25, suite.MaxMaxAbsError, eps)
		assert.InEpsilon(hellExp, suite.MeanHellinger, eps)
		assert.InEpsilon(hellExp, suite.MaxHellinger, eps)
		assert.InEpsilon(jsExp, suite.MeanJSDiverge, eps)
		assert.InEpsilon(jsExp, suite.MaxJSDiverge, eps)
	}

	// non-normed
	check()

	// partly normed
	assert.NoError(NormalizeVector(m1[0]))
	assert.NoError(NormalizeVector(m2[1]))
	check()

	// All normed: now MSE is meaningful too
	assert.NoError(m1.NormalizeRows())
	assert.NoError(m2.NormalizeRows())
	check()
	assert.InEpsilon(0.0625, suite.MSE, eps)
}

// Not so easy = we want mean and max to be different
func TestErrorSuiteMaxMean(t *testing.T) {
	assert := assert.New(t)

	// We manually calculated our expected values for these variables
	m1 := Marginals{
		{30.0, 40.0, 30.0},
		{30.0, 40.0, 30.0},
	}
	m2 := Marginals{
		{90.0, 5.0, 5.0},
		{60.0, 30.0, 10.0},
	}

	const eps = 1e-7 // Hand calcs, slightly larger eps

	suite, err := NewErrorSuite(m1, m2)
	assert.NoError(err)
	assert.InEpsilon(.30000000, suite.MeanMeanAbsError, eps)
	assert.InEpsilon(.39999999, suite.MaxMeanAbsError, eps)
	assert.InEpsilon(.45000000, suite.MeanMaxAbsError, eps)
	assert.InEpsilon(.60000000, suite.MaxMaxAbsError, eps)
	assert.InEpsilon(.35109087, suite.MeanHellinger, eps)
	assert.InEpsilon(.46528369, suite.MaxHellinger, eps)
	assert.InEpsilon(.18806933, suite.MeanJSDiverge, eps)
	assert.InEpsilon(.29645726, suite.MaxJSDiverge, eps)
}

func TestMeanSquaredError(t *testing.T) {
	assert := assert.New(t)

	a := Marginals{{0.5, 0.5}, {1.0, 0.0}}
	b := Marginals{{0.25, 0.75}, {0.0, 1.0}}

	mse, err := MeanSquaredError(a, b)
	assert.NoError(err)
	// (0.0625 + 0.0625 + 1 + 1) / 4
	assert.InEpsilon(0.53125, mse, 1e-12)

	mse, err = MeanSquaredError(a, a)
	assert.NoError(err)
	assert.Equal(0.0, mse)

	_, err = MeanSquaredError(a, Marginals{{0.5, 0.5}})
	assert.True(errors.Is(err, ErrInvalidArgument))

	_, err = MeanSquaredError(a, Marginals{{0.5, 0.5}, {0.2, 0.3, 0.5}})
	assert.True(errors.Is(err, ErrInvalidArgument))

	_, err = NewErrorSuite(Marginals{}, Marginals{})
	assert.Error(err)
}

// Zero entries must not turn the divergence into NaN
func TestJSDivergenceZeros(t *testing.T) {
	assert := assert.New(t)

	d := JSDivergence([]float64{1.0, 0.0}, []float64{0.0, 1.0})
	assert.False(math.IsNaN(d))
	assert.InEpsilon(1.0, d, 1e-12)

	assert.Equal(0.0, JSDivergence([]float64{0.5, 0.5}, []float64{0.5, 0.5}))
	assert.InDelta(0.0, HellingerDiff([]float64{0.2, 0.8}, []float64{2, 8}), 1e-12)
}
