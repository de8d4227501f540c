package sampler

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/CraigKelly/chainmar/model"
)

// Chain is a single long-running Markov chain over a Gibbs sampler. Unlike
// Gibbs.Sample it keeps its state and counts between calls, so it can be
// advanced in pieces and several independent chains can be merged.
type Chain struct {
	Sampler     *Gibbs
	State       []int
	Counts      model.Marginals
	TotalSweeps int64

	buf *scratch
}

// NewChain returns a chain ready to go with a uniformly random state
func NewChain(samp *Gibbs) (*Chain, error) {
	if samp == nil {
		return nil, errors.Wrap(model.ErrInvalidArgument, "A sampler is required for a chain")
	}

	c := samp.Chain()
	ch := &Chain{
		Sampler:     samp,
		State:       samp.InitState(),
		Counts:      model.NewMarginals(c.N, c.K),
		TotalSweeps: 0,
		buf:         newScratch(c.K),
	}
	return ch, nil
}

// Advance runs the given number of sweeps, counting the state after each
func (ch *Chain) Advance(sweeps int) error {
	if sweeps < 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "Invalid sweep count %d", sweeps)
	}

	for s := 0; s < sweeps; s++ {
		if err := ch.Sampler.sweep(ch.State, ch.buf); err != nil {
			return errors.Wrapf(err, "Failure on sweep %d", ch.TotalSweeps)
		}
		for n, v := range ch.State {
			ch.Counts[n][v] += 1.0
		}
		ch.TotalSweeps++
	}

	return nil
}

// AdvanceChain asynchronously runs sweeps on the chain. The returned channel
// receives exactly one value (nil on success) once wg is done with it.
func (ch *Chain) AdvanceChain(wg *sync.WaitGroup, sweeps int) <-chan error {
	done := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		done <- ch.Advance(sweeps)
	}()

	return done
}

// Marginals returns the empirical marginals so far
func (ch *Chain) Marginals() (model.Marginals, error) {
	if ch.TotalSweeps < 1 {
		return nil, errors.Wrap(model.ErrInvalidArgument, "Chain has not been advanced")
	}

	m := ch.Counts.Clone()
	total := float64(ch.TotalSweeps)
	for _, row := range m {
		for k := range row {
			row[k] /= total
		}
	}
	return m, nil
}

// MergeChains pools the counts of several chains over the same model into
// a single marginal estimate. Each chain is weighted by its sweep count.
func MergeChains(chains []*Chain) (model.Marginals, error) {
	if len(chains) < 1 {
		return nil, errors.Wrap(model.ErrInvalidArgument, "Can not merge 0 chains")
	}
	if len(chains) == 1 {
		return chains[0].Marginals()
	}

	first := chains[0].Counts
	merged := model.NewMarginals(first.Vars(), first.Card())
	var total int64

	for i, ch := range chains {
		if ch.Counts.Vars() != merged.Vars() || ch.Counts.Card() != merged.Card() {
			return nil, errors.Wrapf(model.ErrInvalidArgument,
				"Cannot merge chain %d with %dx%d counts into %dx%d",
				i, ch.Counts.Vars(), ch.Counts.Card(), merged.Vars(), merged.Card())
		}
		for n, row := range ch.Counts {
			for k, cnt := range row {
				merged[n][k] += cnt
			}
		}
		total += ch.TotalSweeps
	}

	if total < 1 {
		return nil, errors.Wrap(model.ErrInvalidArgument, "No chain has been advanced")
	}

	for _, row := range merged {
		for k := range row {
			row[k] /= float64(total)
		}
	}
	return merged, nil
}
