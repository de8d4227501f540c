package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularFloat(t *testing.T) {
	assert := assert.New(t)

	cf, err := NewCircularFloat(6)
	require.NoError(t, err)
	assert.Equal(6, cf.BufSize)
	assert.Equal(0, cf.Count)
	assert.Nil(cf.FirstHalf())

	cf.Add(1)
	cf.Add(2)
	cf.Add(3)
	cf.Add(4)
	cf.Add(5)
	assert.Equal(6, cf.BufSize)
	assert.Equal(5, cf.Count)
	assert.False(cf.Full())
	assert.Nil(cf.FirstHalf())
	assert.Nil(cf.SecondHalf())

	_, _, ok := cf.HalfMeans()
	assert.False(ok)

	cf.Add(6)
	assert.Equal(6, cf.Count)
	assert.True(cf.Full())

	exp := 0.0
	for iter := cf.FirstHalf(); iter.Next(); {
		exp++
		assert.Equal(exp, iter.Value())
	}
	for iter := cf.SecondHalf(); iter.Next(); {
		exp++
		assert.Equal(exp, iter.Value())
	}

	first, second, ok := cf.HalfMeans()
	assert.True(ok)
	assert.Equal(2.0, first)
	assert.Equal(5.0, second)

	// 1 2 3 4 5 6 add 8 add 8 => 8 8 3 4 5 6
	// So first=3,4,5 second=6,8,8
	cf.Add(8)
	cf.Add(8)
	assert.Equal(int64(8), cf.TotalSeen)
	expVals := []float64{3, 4, 5, 6, 8, 8}

	idx := 0
	for iter := cf.FirstHalf(); iter.Next(); {
		assert.Equal(expVals[idx], iter.Value())
		idx++
	}
	for iter := cf.SecondHalf(); iter.Next(); {
		assert.Equal(expVals[idx], iter.Value())
		idx++
	}
	assert.Equal(6, idx)

	first, second, ok = cf.HalfMeans()
	assert.True(ok)
	assert.Equal(4.0, first)
	assert.Equal(22.0/3.0, second)

	iter := cf.SecondHalf()
	assert.Equal(6.0, iter.Value())
	assert.Equal(8.0, iter.Mean())
	assert.False(iter.Next())
	assert.Equal(0.0, iter.Mean())
}

func TestCircularFloatSize(t *testing.T) {
	assert := assert.New(t)

	cf, err := NewCircularFloat(7)
	assert.NoError(err)
	assert.Equal(6, cf.BufSize)

	for _, sz := range []int{-1, 0, 1} {
		cf, err = NewCircularFloat(sz)
		assert.Nil(cf)
		assert.Error(err)
	}
}
