package sampler

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/CraigKelly/chainmar/model"
)

// Categorical draws an index from the distribution given by the weights p.
// The weights need not be normalized but must be nonnegative with a
// positive total. An index with zero weight is never returned.
func Categorical(p []float64, src Source) (int, error) {
	if len(p) < 1 {
		return -1, errors.Wrap(model.ErrInvalidArgument, "Can not draw from an empty distribution")
	}
	if src == nil {
		return -1, errors.Wrap(model.ErrInvalidArgument, "A random source is required")
	}
	for i, w := range p {
		if w < 0.0 || math.IsNaN(w) {
			return -1, errors.Wrapf(model.ErrInvalidArgument, "Invalid weight %v at index %d", w, i)
		}
	}

	return categoricalInto(make([]float64, len(p)), p, src)
}

// categoricalInto is Categorical using cum as scratch space for the
// cumulative sums. It does not validate the weights.
func categoricalInto(cum []float64, p []float64, src Source) (int, error) {
	floats.CumSum(cum, p)

	total := cum[len(cum)-1]
	if total <= 0.0 {
		return -1, errors.Wrap(model.ErrDegenerateModel, "Distribution has zero total mass")
	}
	if math.IsInf(total, 0) {
		return -1, errors.Wrap(model.ErrNumericRange, "Distribution has infinite total mass")
	}

	u := src.Float64() * total
	idx := sort.Search(len(cum), func(i int) bool {
		return cum[i] > u
	})

	// u*total can round up to total: fall back to the last positive weight
	if idx >= len(cum) {
		idx = len(cum) - 1
		for idx > 0 && p[idx] <= 0.0 {
			idx--
		}
	}

	return idx, nil
}
