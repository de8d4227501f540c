package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// MarginalEPS is the tolerance used when checking that a row sums to 1
const MarginalEPS = 1e-8

// Marginals is an N x K matrix where row n is the distribution of X_n, so
// m[n][k] is Pr(X_n = k).
type Marginals [][]float64

// NewMarginals returns an n x k matrix of zeros
func NewMarginals(n, k int) Marginals {
	return Marginals(MakeMatrix(n, k))
}

// Uniform returns an n x k matrix with every entry 1/k
func Uniform(n, k int) Marginals {
	m := NewMarginals(n, k)
	p := 1.0 / float64(k)
	for _, row := range m {
		for i := range row {
			row[i] = p
		}
	}
	return m
}

// Vars is the number of variables (rows)
func (m Marginals) Vars() int {
	return len(m)
}

// Card is the cardinality (columns) or 0 for an empty matrix
func (m Marginals) Card() int {
	if len(m) < 1 {
		return 0
	}
	return len(m[0])
}

// Check returns an error if m is not a valid marginal matrix
func (m Marginals) Check() error {
	card := m.Card()
	if card < 1 {
		return errors.Wrap(ErrInvalidArgument, "Marginals have no values")
	}

	for n, row := range m {
		if len(row) != card {
			return errors.Wrapf(ErrInvalidArgument, "Variable %d has %d values, expected %d", n, len(row), card)
		}
		for k, p := range row {
			if p < 0.0 || p > 1.0 || math.IsNaN(p) {
				return errors.Wrapf(ErrInvalidArgument, "Variable %d has invalid probability %v for value %d", n, p, k)
			}
		}

		sum := floats.Sum(row)
		if math.Abs(sum-1.0) >= MarginalEPS {
			return errors.Wrapf(ErrInvalidArgument, "Variable %d has marginal dist with sum=%f", n, sum)
		}
	}

	return nil
}

// NormalizeRows scales every row to sum to 1. A row summing to zero can't be
// normalized and is reported as a degenerate model.
func (m Marginals) NormalizeRows() error {
	for n, row := range m {
		if err := NormalizeVector(row); err != nil {
			return errors.Wrapf(err, "Can not normalize variable %d", n)
		}
	}
	return nil
}

// NormalizeVector scales p in place to sum to 1
func NormalizeVector(p []float64) error {
	sum := floats.Sum(p)
	if sum == 0.0 {
		return errors.Wrap(ErrDegenerateModel, "Distribution has zero total mass")
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return errors.Wrapf(ErrNumericRange, "Distribution has non-finite total mass %v", sum)
	}

	// Divide rather than scale by 1/sum: p[i]/sum never rounds above 1
	for i := range p {
		p[i] /= sum
	}
	return nil
}

// Clone returns a deep copy
func (m Marginals) Clone() Marginals {
	cp := NewMarginals(m.Vars(), m.Card())
	for n, row := range m {
		copy(cp[n], row)
	}
	return cp
}
