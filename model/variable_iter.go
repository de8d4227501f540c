package model

import (
	"github.com/pkg/errors"
)

// AssignmentIter is an iterator over every joint assignment of a set of
// variables. The last variable changes fastest.
type AssignmentIter struct {
	cards   []int
	lastVal []int
}

// NewAssignmentIter returns an iterator over variables with the given
// cardinalities
func NewAssignmentIter(cards []int) (*AssignmentIter, error) {
	if len(cards) < 1 {
		return nil, errors.Wrap(ErrInvalidArgument, "At least one variable required for iteration")
	}
	for i, c := range cards {
		if c < 1 {
			return nil, errors.Wrapf(ErrInvalidArgument, "Invalid card %d for variable %d", c, i)
		}
	}

	ai := &AssignmentIter{
		cards:   make([]int, len(cards)),
		lastVal: make([]int, len(cards)),
	}
	copy(ai.cards, cards)

	return ai, nil
}

// Val populates curr with the current assignment
func (ai *AssignmentIter) Val(curr []int) error {
	if len(curr) < len(ai.lastVal) {
		return errors.Wrapf(ErrInvalidArgument, "Dest buffer of size %d needs to be %d", len(curr), len(ai.lastVal))
	}

	copy(curr, ai.lastVal)

	return nil
}

// Next advances to the next assignment and returns True if there are still
// values to see
func (ai *AssignmentIter) Next() bool {
	for i := len(ai.cards) - 1; i >= 0; i-- {
		prop := ai.lastVal[i] + 1

		if prop < ai.cards[i] {
			ai.lastVal[i] = prop
			return true
		}

		ai.lastVal[i] = 0 // Overflow: continue to next
	}

	// Every digit wrapped back to 0
	return false
}
