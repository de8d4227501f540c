package cmd

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/chainmar/model"
	"github.com/CraigKelly/chainmar/rand"
	"github.com/CraigKelly/chainmar/sampler"
)

func newSampleCmd(sp *startupParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Estimate marginals with a systematic-scan Gibbs sampler",
		Long: `sample runs the given number of Gibbs sweeps from a uniformly random
state and prints the empirical marginals in UAI MAR format. Every sweep is
counted (no burn-in, no thinning).

With --chains greater than 1, independent chains seeded seed, seed+1, ...
run concurrently and their counts are pooled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sampleMarginals(sp)
		},
	}

	cmd.Flags().StringP("model", "m", "", "Model file to read (.npy or .uai)")
	cmd.Flags().IntP("steps", "s", 1000, "Number of sweeps per chain")
	cmd.Flags().Int("chains", 1, "Number of independent chains to pool")

	return cmd
}

func sampleMarginals(sp *startupParams) error {
	start := time.Now()

	c, err := loadChain(sp)
	if err != nil {
		return err
	}

	steps := sp.v.GetInt("steps")
	chainCount := sp.v.GetInt("chains")

	var m model.Marginals
	if chainCount <= 1 {
		m, err = singleChain(sp, c, steps)
	} else {
		m, err = pooledChains(sp, c, steps, chainCount)
	}
	if err != nil {
		return err
	}

	sp.log.Info("sampling complete",
		zap.Int("steps", steps),
		zap.Int("chains", chainCount),
		elapsed(start),
	)
	return model.WriteMAR(sp.out, m)
}

func singleChain(sp *startupParams, c *model.Chain, steps int) (model.Marginals, error) {
	gen, err := rand.NewGenerator(sp.seed())
	if err != nil {
		return nil, err
	}

	samp, err := sampler.NewGibbs(gen, c)
	if err != nil {
		return nil, err
	}
	samp.Log = sp.log

	return samp.Sample(steps)
}

func pooledChains(sp *startupParams, c *model.Chain, steps int, chainCount int) (model.Marginals, error) {
	if steps < 1 {
		return nil, errors.Wrapf(model.ErrInvalidArgument, "Invalid step count %d", steps)
	}

	chains := make([]*sampler.Chain, chainCount)
	for i := range chains {
		gen, err := rand.NewGenerator(sp.seed() + int64(i))
		if err != nil {
			return nil, err
		}
		samp, err := sampler.NewGibbs(gen, c)
		if err != nil {
			return nil, err
		}
		chains[i], err = sampler.NewChain(samp)
		if err != nil {
			return nil, err
		}
	}

	var wg sync.WaitGroup
	results := make([]<-chan error, chainCount)
	for i, ch := range chains {
		results[i] = ch.AdvanceChain(&wg, steps)
	}
	wg.Wait()

	for i, res := range results {
		if err := <-res; err != nil {
			return nil, errors.Wrapf(err, "Chain %d failed", i)
		}
	}

	return sampler.MergeChains(chains)
}
