package model

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMarginalsCheck(t *testing.T) {
	assert := assert.New(t)

	good := []Marginals{
		{{1.0}},
		{{0.5, 0.5}, {0.25, 0.75}},
		{{0.5, 0.4, 0.1}},
		Uniform(3, 7),
	}
	for _, m := range good {
		assert.NoError(m.Check())
	}

	bad := map[string]Marginals{
		"Empty":      {},
		"No values":  {{}},
		"Ragged":     {{0.5, 0.5}, {1.0}},
		"Sum < 1":    {{0.5, 0.4999}},
		"Sum > 1":    {{0.5, 0.5001}},
		"Negative":   {{1.5, -0.5}},
		"NaN":        {{math.NaN(), 1.0}},
		"Above one":  {{2.0, -1.0}},
		"Second row": {{0.5, 0.5}, {0.1, 0.1}},
	}
	for name, m := range bad {
		err := m.Check()
		assert.Error(err, name)
		assert.True(errors.Is(err, ErrInvalidArgument), name)
	}
}

func TestMarginalsNormalize(t *testing.T) {
	assert := assert.New(t)

	m := Marginals{
		{120.0, 120.0},
		{1.0, 3.0},
		{0.1, 0.0},
	}
	assert.NoError(m.NormalizeRows())
	assert.NoError(m.Check())
	assert.Equal([]float64{0.5, 0.5}, m[0])
	assert.Equal([]float64{0.25, 0.75}, m[1])
	assert.Equal([]float64{1.0, 0.0}, m[2])

	zero := Marginals{{0.5, 0.5}, {0.0, 0.0}}
	err := zero.NormalizeRows()
	assert.True(errors.Is(err, ErrDegenerateModel))

	inf := Marginals{{math.Inf(1), 1.0}}
	err = inf.NormalizeRows()
	assert.True(errors.Is(err, ErrNumericRange))
}

func TestMarginalsShape(t *testing.T) {
	assert := assert.New(t)

	m := NewMarginals(4, 3)
	assert.Equal(4, m.Vars())
	assert.Equal(3, m.Card())
	assert.Equal(0, Marginals{}.Card())

	u := Uniform(2, 4)
	cp := u.Clone()
	cp[0][0] = 1.0
	assert.Equal(0.25, u[0][0])

	c := &Chain{N: 2, K: 4, Potentials: MakeTensor(1, 4)}
	assert.NoError(u.CheckAgainst(c))
	c.K = 3
	assert.True(errors.Is(u.CheckAgainst(c), ErrInvalidArgument))
}
