package inference

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/chainmar/model"
)

// EnumerateMax is the largest joint space (K^N) we will sum over
const EnumerateMax = 1 << 22

// enumerate sums the unnormalized joint over every assignment. It is
// exponential in N and mostly useful as a check on the message passing.
func enumerate(c *model.Chain) (model.Marginals, error) {
	space := math.Pow(float64(c.K), float64(c.N))
	if space > EnumerateMax {
		return nil, errors.Wrapf(model.ErrInvalidArgument, "Joint space %.0f is too large to enumerate (max %d)", space, EnumerateMax)
	}

	cards := make([]int, c.N)
	for i := range cards {
		cards[i] = c.K
	}

	iter, err := model.NewAssignmentIter(cards)
	if err != nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, err.Error())
	}

	p := model.NewMarginals(c.N, c.K)
	vals := make([]int, c.N)
	for {
		if err := iter.Val(vals); err != nil {
			return nil, err
		}

		w := 1.0
		for n := 0; n < c.N-1 && w > 0.0; n++ {
			w *= c.Potentials[n][vals[n]][vals[n+1]]
		}
		for n, v := range vals {
			p[n][v] += w
		}

		if !iter.Next() {
			break
		}
	}

	if err := p.NormalizeRows(); err != nil {
		return nil, err
	}
	return p, nil
}
