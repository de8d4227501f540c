package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// Make sure that Check actually catches problems
func TestFactorBadCheck(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		card int
		f    *Factor
	}{
		{2, &Factor{"Bad-NoVarHaveTable", []int{}, []float64{0.5, 0.5}}},
		{1, &Factor{"Bad-1Var1BadTable", []int{0}, []float64{0.5, 0.5}}},
		{2, &Factor{"Bad-1Var2BadTable", []int{0}, []float64{0.5, 0.5, 0.5}}},
		{3, &Factor{"Bad-1Var3BadTable", []int{0}, []float64{0.5}}},
		{2, &Factor{"Bad-2VarBadTableHi", []int{0, 1}, []float64{0.5, 0.5, 0.5, 0.5, 0.5}}},
		{2, &Factor{"Bad-2VarBadTableLo", []int{0, 1}, []float64{0.5, 0.5}}},
		{2, &Factor{"Bad-Negative", []int{0}, []float64{0.5, -0.5}}},
	}

	for _, c := range cases {
		err := c.f.Check(c.card)
		assert.Error(err, c.f.Name)
		assert.True(errors.Is(err, ErrFormat), c.f.Name)
	}
}

// Make sure we're OK with valid factors
func TestFactorGoodCheck(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		card int
		f    *Factor
	}{
		{1, &Factor{"Good-1Var1", []int{0}, []float64{0.5}}},
		{2, &Factor{"Good-1Var2", []int{1}, []float64{0.5, 0.0}}},
		{2, &Factor{"Good-2VarBin", []int{0, 1}, []float64{0.5, 0.5, 0.5, 0.5}}},
		{3, &Factor{"Good-2Var3", []int{2, 1}, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}}},
	}

	for _, c := range cases {
		assert.NoError(c.f.Check(c.card), c.f.Name)
	}
}

// Make sure we correctly handle bad eval
func TestFactorEval(t *testing.T) {
	assert := assert.New(t)

	f, err := NewFactor("TestTable", []int{3, 4}, 3)
	assert.NoError(err)
	assert.Equal(9, len(f.Table))
	for i := range f.Table {
		f.Table[i] = float64(i) + 0.01
	}

	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			v, e := f.Eval([]int{a, b}, 3)
			assert.NoError(e)
			assert.InEpsilon(float64(a*3+b)+0.01, v, 1e-14)
		}
	}

	failCases := [][]int{
		{},
		{0},
		{0, 0, 0},
		{3, 0},
		{0, -1},
	}
	for _, c := range failCases {
		_, e := f.Eval(c, 3)
		assert.Error(e)
	}

	_, err = NewFactor("NoVars", []int{}, 2)
	assert.Error(err)
	_, err = NewFactor("NoCard", []int{0}, 0)
	assert.Error(err)
}

func TestNewFactorLimits(t *testing.T) {
	assert := assert.New(t)

	f, err := NewFactor("pair", []int{0, 1}, 3)
	assert.NoError(err)
	assert.Len(f.Table, 9)

	// 10^20 entries would overflow an int
	f, err = NewFactor("wide", make([]int, 20), 10)
	assert.Nil(f)
	assert.True(errors.Is(err, ErrInvalidArgument))

	_, err = NewFactor("empty", []int{}, 2)
	assert.True(errors.Is(err, ErrInvalidArgument))
	_, err = NewFactor("nocard", []int{0}, 0)
	assert.True(errors.Is(err, ErrInvalidArgument))

	f, err = NewFactor("pair", []int{0, 1}, 2)
	assert.NoError(err)
	_, err = f.Eval([]int{0}, 2)
	assert.True(errors.Is(err, ErrInvalidArgument))
	_, err = f.Eval([]int{0, 2}, 2)
	assert.True(errors.Is(err, ErrInvalidArgument))
}
