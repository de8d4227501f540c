package model

import (
	"math"

	"github.com/pkg/errors"
)

// ErrorSuite represents all the loss/error functions we use to judge an
// estimate against a reference marginal matrix. Errors beginning with Mean
// are the mean across all the variables while Max is the maximum value for
// all the variables. So MeanMaxAbsError is the MEAN of the Maximum Absolute
// Error for each of the marginal variables. Likewise, MaxMeanAbsError
// represents the maximum value of the mean difference between two random
// variables. MSE is the mean squared difference over every entry, which is
// the score the convergence experiment tracks.
type ErrorSuite struct {
	MSE float64

	MeanMeanAbsError float64
	MeanMaxAbsError  float64
	MeanHellinger    float64
	MeanJSDiverge    float64

	MaxMeanAbsError float64
	MaxMaxAbsError  float64
	MaxHellinger    float64
	MaxJSDiverge    float64
}

func checkShapes(m1 Marginals, m2 Marginals) error {
	if m1.Vars() != m2.Vars() {
		return errors.Wrapf(ErrInvalidArgument, "Variable count mismatch %d != %d", m1.Vars(), m2.Vars())
	}
	if m1.Vars() < 1 {
		return errors.Wrap(ErrInvalidArgument, "No variables to score")
	}
	for n, row := range m1 {
		if len(row) != len(m2[n]) {
			return errors.Wrapf(ErrInvalidArgument, "Variable %d card mismatch %d != %d", n, len(row), len(m2[n]))
		}
	}
	return nil
}

// NewErrorSuite returns an ErrorSuite with all calculated error functions
func NewErrorSuite(m1 Marginals, m2 Marginals) (*ErrorSuite, error) {
	if err := checkShapes(m1, m2); err != nil {
		return nil, err
	}

	es := ErrorSuite{}

	var d float64
	for i, v1 := range m1 {
		v2 := m2[i]

		d = MeanAbsDiff(v1, v2)
		es.MeanMeanAbsError += d
		es.MaxMeanAbsError = math.Max(d, es.MaxMeanAbsError)

		d = MaxAbsDiff(v1, v2)
		es.MeanMaxAbsError += d
		es.MaxMaxAbsError = math.Max(d, es.MaxMaxAbsError)

		d = HellingerDiff(v1, v2)
		es.MeanHellinger += d
		es.MaxHellinger = math.Max(d, es.MaxHellinger)

		d = JSDivergence(v1, v2)
		es.MeanJSDiverge += d
		es.MaxJSDiverge = math.Max(d, es.MaxJSDiverge)
	}

	fc := float64(m1.Vars())
	es.MeanMeanAbsError /= fc
	es.MeanMaxAbsError /= fc
	es.MeanHellinger /= fc
	es.MeanJSDiverge /= fc

	mse, err := MeanSquaredError(m1, m2)
	if err != nil {
		return nil, err
	}
	es.MSE = mse

	return &es, nil
}

// MeanSquaredError is the mean over all entries of the squared difference.
// Unlike the other metrics, rows are compared as given (not renormalized).
func MeanSquaredError(m1 Marginals, m2 Marginals) (float64, error) {
	if err := checkShapes(m1, m2); err != nil {
		return math.NaN(), err
	}

	sum := 0.0
	count := 0
	for n, row := range m1 {
		for k, p := range row {
			d := p - m2[n][k]
			sum += d * d
			count++
		}
	}
	if count < 1 {
		return 0.0, nil
	}

	return sum / float64(count), nil
}

// normPair returns the totals for normalizing two unnormalized distributions
func normPair(v1 []float64, v2 []float64) (float64, float64) {
	const eps = 1e-12

	tot1, tot2 := float64(0.0), float64(0.0)
	for c := range v1 {
		tot1 += v1[c]
		tot2 += v2[c]
	}
	if tot1 < eps {
		tot1 = eps
	}
	if tot2 < eps {
		tot2 = eps
	}
	return tot1, tot2
}

// MaxAbsDiff returns the maximum difference found between the two prob dists
func MaxAbsDiff(v1 []float64, v2 []float64) float64 {
	tot1, tot2 := normPair(v1, v2)

	maxErr := float64(0.0)
	for c := range v1 {
		err := math.Abs(v1[c]/tot1 - v2[c]/tot2)
		if c == 0 || err > maxErr {
			maxErr = err
		}
	}

	return maxErr
}

// MeanAbsDiff returns the mean of the differences found between the two prob dists
func MeanAbsDiff(v1 []float64, v2 []float64) float64 {
	card := len(v1)
	if card < 1 {
		return 0
	}

	tot1, tot2 := normPair(v1, v2)

	errSum := float64(0.0)
	for c := range v1 {
		errSum += math.Abs(v1[c]/tot1 - v2[c]/tot2)
	}

	return errSum / float64(card)
}

// HellingerDiff returns the Hellinger error between two distributions,
// either of which may be unnormalized (but nonnegative).
func HellingerDiff(v1 []float64, v2 []float64) float64 {
	tot1, tot2 := normPair(v1, v2)

	// Hellinger distance is similar to the Euclidean L2:
	// sqrt(sum((sqrt(p) - sqrt(q))**2)) / sqrt(2)
	errSum := float64(0.0)
	for c := range v1 {
		adjVal1 := math.Sqrt(v1[c] / tot1)
		adjVal2 := math.Sqrt(v2[c] / tot2)
		errSum += math.Pow(adjVal1-adjVal2, 2)
	}
	return math.Sqrt(errSum) / math.Sqrt2
}

// klDivergence returns the Kullback–Leibler divergence, which is
// non-symmetric! This is strictly a subroutine for JS Divergence: the
// arrays are assumed normalized and zero entries in p contribute nothing.
// klDivergence(P, Q) <==> D_{KL}(P || Q)
func klDivergence(v1 []float64, v2 []float64) float64 {
	diverge := float64(0.0)
	for i, p1 := range v1 {
		if p1 <= 0.0 {
			continue
		}
		diverge += p1 * math.Log2(p1/v2[i])
	}

	return diverge
}

// JSDivergence returns the Jensen-Shannon divergence, which is a
// symmetric generalization of the KL divergence
func JSDivergence(v1 []float64, v2 []float64) float64 {
	card := len(v1)
	tot1, tot2 := normPair(v1, v2)

	p1Norm := make([]float64, card)
	p2Norm := make([]float64, card)
	mid := make([]float64, card)
	for i, p1 := range v1 {
		p1Norm[i] = p1 / tot1
		p2Norm[i] = v2[i] / tot2
		mid[i] = (p1Norm[i] + p2Norm[i]) * 0.5
	}

	return 0.5 * (klDivergence(p1Norm, mid) + klDivergence(p2Norm, mid))
}
