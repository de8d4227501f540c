package sampler

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/CraigKelly/chainmar/model"
)

// Gibbs is a systematic-scan Gibbs sampler for a chain. Each sweep visits
// X0..XN-1 in order and redraws each variable from its conditional given the
// current values of its neighbors. Updates are applied immediately, so a
// variable sees its left neighbor's value from the same sweep.
//
// A Gibbs never writes to its chain, but it does own its random source: use
// one Gibbs per goroutine.
type Gibbs struct {
	pgm *model.Chain
	gen Source
	Log *zap.Logger
}

var _ Sampler = (*Gibbs)(nil)

// NewGibbs creates a new sampler
func NewGibbs(gen Source, c *model.Chain) (*Gibbs, error) {
	if gen == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "No random source supplied")
	}
	if c == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "No chain supplied")
	}
	if err := c.Check(); err != nil {
		return nil, errors.Wrap(err, "Can not sample an invalid chain")
	}

	s := &Gibbs{
		pgm: c,
		gen: gen,
		Log: zap.NewNop(),
	}
	return s, nil
}

// Chain returns the chain being sampled
func (g *Gibbs) Chain() *model.Chain {
	return g.pgm
}

// Sample runs steps sweeps from a uniformly random initial state and
// returns the empirical marginals. The state after every sweep is counted:
// there is no burn-in and no thinning.
func (g *Gibbs) Sample(steps int) (model.Marginals, error) {
	if steps < 1 {
		return nil, errors.Wrapf(model.ErrInvalidArgument, "Invalid step count %d", steps)
	}

	c := g.pgm
	state := g.InitState()
	counts := model.NewMarginals(c.N, c.K)
	buf := newScratch(c.K)

	for s := 0; s < steps; s++ {
		if err := g.sweep(state, buf); err != nil {
			return nil, errors.Wrapf(err, "Failure on sweep %d", s)
		}
		for n, v := range state {
			counts[n][v] += 1.0
		}
	}

	total := float64(steps)
	for _, row := range counts {
		for k := range row {
			row[k] /= total
		}
	}

	if g.Log != nil {
		g.Log.Debug("gibbs sample",
			zap.Int("steps", steps),
			zap.Int("vars", c.N),
			zap.Int("card", c.K),
		)
	}

	return counts, nil
}

// InitState draws an initial state, each variable uniform over 0..K-1
func (g *Gibbs) InitState() []int {
	state := make([]int, g.pgm.N)
	for i := range state {
		state[i] = g.gen.Intn(g.pgm.K)
	}
	return state
}

// Sweep performs one sweep over state in place
func (g *Gibbs) Sweep(state []int) error {
	if len(state) != g.pgm.N {
		return errors.Wrapf(model.ErrInvalidArgument, "State size %d is wrong, need %d", len(state), g.pgm.N)
	}
	for i, v := range state {
		if v < 0 || v >= g.pgm.K {
			return errors.Wrapf(model.ErrInvalidArgument, "State value %d for var %d is out of range", v, i)
		}
	}
	return g.sweep(state, newScratch(g.pgm.K))
}

// Conditional returns the normalized distribution of X_i given the values
// of its neighbors in state
func (g *Gibbs) Conditional(i int, state []int) ([]float64, error) {
	if i < 0 || i >= g.pgm.N || len(state) != g.pgm.N {
		return nil, errors.Wrapf(model.ErrInvalidArgument, "Invalid variable %d for state of size %d", i, len(state))
	}

	p := make([]float64, g.pgm.K)
	g.conditional(i, state, p)
	if err := model.NormalizeVector(p); err != nil {
		return nil, errors.Wrapf(err, "Conditional for variable %d", i)
	}
	return p, nil
}

type scratch struct {
	cond []float64
	cum  []float64
}

func newScratch(k int) *scratch {
	return &scratch{
		cond: make([]float64, k),
		cum:  make([]float64, k),
	}
}

func (g *Gibbs) sweep(state []int, buf *scratch) error {
	for i := range state {
		g.conditional(i, state, buf.cond)
		if err := model.NormalizeVector(buf.cond); err != nil {
			return errors.Wrapf(err, "Conditional for variable %d is not a distribution", i)
		}

		v, err := categoricalInto(buf.cum, buf.cond, g.gen)
		if err != nil {
			return errors.Wrapf(err, "Could not draw variable %d", i)
		}
		state[i] = v
	}
	return nil
}

// conditional fills out with the unnormalized conditional of X_i. With no
// neighbors (N=1) it is flat.
func (g *Gibbs) conditional(i int, state []int, out []float64) {
	c := g.pgm

	for k := range out {
		out[k] = 1.0
	}

	if i > 0 {
		floats.Mul(out, c.Potentials[i-1][state[i-1]])
	}

	if i < c.N-1 {
		right := c.Potentials[i]
		next := state[i+1]
		for k := range out {
			out[k] *= right[k][next]
		}
	}
}
