package model

import (
	"github.com/pkg/errors"
)

// Factor is a function over a small set of variables as read from a UAI
// file. Table is in UAI order: the last variable changes fastest.
type Factor struct {
	Name  string    // Name for factor (just a 0-based index in UAI formats)
	Vars  []int     // Indexes of the variables in scope
	Table []float64 // len is K^len(Vars)
}

// NewFactor creates a factor over vars of cardinality card with a zeroed table
func NewFactor(name string, vars []int, card int) (*Factor, error) {
	if len(vars) < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Factor %s has no variables", name)
	}
	if card < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Factor %s has invalid card %d", name, card)
	}

	size := 1
	for range vars {
		if size > MaxTensorEntries/card {
			return nil, errors.Wrapf(ErrInvalidArgument, "Factor %s table over %d vars of card %d is too large", name, len(vars), card)
		}
		size *= card
	}

	f := &Factor{
		Name:  name,
		Vars:  make([]int, len(vars)),
		Table: make([]float64, size),
	}
	copy(f.Vars, vars)

	return f, nil
}

// Check returns an error if the table doesn't match the scope
func (f *Factor) Check(card int) error {
	expTableSize := 0
	if len(f.Vars) > 0 {
		expTableSize = 1
		for range f.Vars {
			expTableSize *= card
		}
	}

	if expTableSize != len(f.Table) {
		return errors.Wrapf(ErrFormat, "Factor %s expected table size %d, found %d", f.Name, expTableSize, len(f.Table))
	}

	for i, v := range f.Table {
		if v < 0.0 {
			return errors.Wrapf(ErrFormat, "Factor %s has negative entry %v at %d", f.Name, v, i)
		}
	}

	return nil
}

// Eval returns the table entry for the given values (in scope order)
func (f *Factor) Eval(values []int, card int) (float64, error) {
	if len(values) != len(f.Vars) {
		return 0, errors.Wrapf(ErrInvalidArgument, "Factor %s needs %d values, got %d", f.Name, len(f.Vars), len(values))
	}

	idx := 0
	for _, v := range values {
		if v < 0 || v >= card {
			return 0, errors.Wrapf(ErrInvalidArgument, "Value %d out of range for card %d in factor %s", v, card, f.Name)
		}
		idx = idx*card + v
	}

	return f.Table[idx], nil
}
