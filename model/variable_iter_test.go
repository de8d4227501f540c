package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentIter(t *testing.T) {
	assert := assert.New(t)

	ai, e := NewAssignmentIter([]int{2, 3, 2})
	assert.NoError(e)

	expected := [][]int{
		{0, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{0, 1, 1},
		{0, 2, 0},
		{0, 2, 1},
		{1, 0, 0},
		{1, 0, 1},
		{1, 1, 0},
		{1, 1, 1},
		{1, 2, 0},
		{1, 2, 1},
	}

	vals := make([]int, 3)
	curr := 0
	for {
		assert.NoError(ai.Val(vals))
		assert.Equal(expected[curr], vals)
		if !ai.Next() {
			break
		}
		curr++
	}

	assert.Equal(len(expected)-1, curr)
	assert.Equal([]int{0, 0, 0}, ai.lastVal)
}

func TestAssignmentIterCorners(t *testing.T) {
	assert := assert.New(t)

	// Creation error
	_, e := NewAssignmentIter([]int{})
	assert.Error(e)
	_, e = NewAssignmentIter(nil)
	assert.Error(e)
	_, e = NewAssignmentIter([]int{2, 0})
	assert.Error(e)

	ai, e := NewAssignmentIter([]int{2})
	assert.NoError(e)

	// Value error
	assert.Error(ai.Val([]int{}))

	// Working single var loop with oversized slice
	vals := []int{0, 0}
	assert.NoError(ai.Val(vals))
	assert.Equal([]int{0, 0}, vals)
	assert.True(ai.Next())
	assert.NoError(ai.Val(vals))
	assert.Equal([]int{1, 0}, vals)
	assert.False(ai.Next())
}
