package cmd

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/chainmar/buffer"
	"github.com/CraigKelly/chainmar/inference"
	"github.com/CraigKelly/chainmar/model"
	"github.com/CraigKelly/chainmar/rand"
	"github.com/CraigKelly/chainmar/sampler"
)

func newConvergeCmd(sp *startupParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "converge",
		Short: "Report Gibbs sampler error against exact marginals",
		Long: `converge computes exact marginals once, then for steps = stride, 2*stride,
... up to max-steps runs a fresh Gibbs sampler (seeded seed+run) for that many
sweeps and prints the MSE against the exact answer.

The trend column compares the mean MSE of the newer half of the last
window points to the older half: below 1 means the error is still falling.

The model is read from --model if given, otherwise a random N x K chain is
generated from the seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return converge(sp)
		},
	}

	cmd.Flags().StringP("model", "m", "", "Model file to read (.npy or .uai)")
	cmd.Flags().IntP("vars", "n", 10, "Number of variables for a generated chain")
	cmd.Flags().IntP("card", "k", 10, "Cardinality for a generated chain")
	cmd.Flags().String("mode", inference.Reference.String(), "Exact message mode: reference, scaled, log or enumerate")
	cmd.Flags().Int("max-steps", 1000, "Largest sweep count to run")
	cmd.Flags().Int("stride", 10, "Sweep count increment between runs")
	cmd.Flags().Int("window", 10, "Number of recent points in the trend")
	cmd.Flags().Int("workers", runtime.NumCPU(), "Runs to execute concurrently")
	cmd.Flags().String("monitor", "", "Serve progress over HTTP at this address (e.g. :8000)")

	return cmd
}

// convergePoint is the result of one sampler run
type convergePoint struct {
	steps int
	mse   float64
}

func converge(sp *startupParams) error {
	start := time.Now()

	maxSteps := sp.v.GetInt("max-steps")
	stride := sp.v.GetInt("stride")
	if stride < 1 || maxSteps < stride {
		return errors.Wrapf(model.ErrInvalidArgument, "Need 1 <= stride (%d) <= max-steps (%d)", stride, maxSteps)
	}

	trend, err := buffer.NewCircularFloat(sp.v.GetInt("window"))
	if err != nil {
		return errors.Wrap(model.ErrInvalidArgument, err.Error())
	}

	c, err := convergeChain(sp)
	if err != nil {
		return err
	}

	mode, err := inference.ParseMode(sp.v.GetString("mode"))
	if err != nil {
		return err
	}
	exact, err := inference.ExactMode(c, mode)
	if err != nil {
		return errors.Wrap(err, "Exact inference failed")
	}

	points := make([]convergePoint, maxSteps/stride)
	for i := range points {
		points[i].steps = (i + 1) * stride
	}

	mon := newMonitor(sp.log)
	if addr := sp.v.GetString("monitor"); addr != "" {
		if err := mon.Start(addr); err != nil {
			return err
		}
		defer mon.Stop()
	}
	mon.MaxSteps.Set(int64(maxSteps))
	mon.Stride.Set(int64(stride))
	mon.Points.Set(int64(len(points)))

	if err := runPoints(sp, c, exact, points, mon, start); err != nil {
		return err
	}

	uniform, err := model.MeanSquaredError(exact, model.Uniform(c.N, c.K))
	if err != nil {
		return err
	}

	fmt.Fprintf(sp.out, "Chain N=%d K=%d, exact mode %s, uniform guess MSE %.6e\n", c.N, c.K, mode, uniform)
	fmt.Fprintf(sp.out, "%8s %14s %8s\n", "steps", "mse", "trend")
	for _, pt := range points {
		trend.Add(pt.mse)
		ratio := "-"
		if first, second, ok := trend.HalfMeans(); ok && first > 0.0 {
			ratio = fmt.Sprintf("%.3f", second/first)
		}
		fmt.Fprintf(sp.out, "%8d %14.6e %8s\n", pt.steps, pt.mse, ratio)
	}

	if first, second, ok := trend.HalfMeans(); ok {
		fmt.Fprintf(sp.out, "Last %d points: older half mean MSE %.6e, newer half mean MSE %.6e\n",
			trend.BufSize, first, second)
	} else {
		fmt.Fprintf(sp.out, "Too few points (%d) for a %d point trend\n", trend.Count, trend.BufSize)
	}

	sp.log.Info("convergence report complete", zap.Int("points", len(points)), elapsed(start))
	return nil
}

// convergeChain loads the model file if one was given, else generates one
func convergeChain(sp *startupParams) (*model.Chain, error) {
	if sp.v.GetString("model") != "" {
		return loadChain(sp)
	}

	gen, err := rand.NewGenerator(sp.seed())
	if err != nil {
		return nil, err
	}
	return model.NewChain(gen, sp.v.GetInt("vars"), sp.v.GetInt("card"))
}

// runPoints fills in the MSE for every point. Each run gets its own
// generator and sampler so runs are independent of scheduling.
func runPoints(sp *startupParams, c *model.Chain, exact model.Marginals, points []convergePoint, mon *monitor, start time.Time) error {
	workers := sp.v.GetInt("workers")
	if workers < 1 {
		workers = 1
	}

	seed := sp.seed()
	jobs := make(chan int)
	errs := make([]error, len(points))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for run := range jobs {
				errs[run] = runPoint(sp.log, seed+int64(run), c, exact, &points[run])
				if errs[run] == nil {
					mon.Record(points[run].steps, points[run].mse, start)
				}
			}
		}()
	}

	for run := range points {
		jobs <- run
	}
	close(jobs)
	wg.Wait()

	for run, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "Run %d (%d steps) failed", run, points[run].steps)
		}
	}
	return nil
}

func runPoint(log *zap.Logger, seed int64, c *model.Chain, exact model.Marginals, pt *convergePoint) error {
	gen, err := rand.NewGenerator(seed)
	if err != nil {
		return err
	}

	samp, err := sampler.NewGibbs(gen, c)
	if err != nil {
		return err
	}

	m, err := samp.Sample(pt.steps)
	if err != nil {
		return err
	}

	pt.mse, err = model.MeanSquaredError(exact, m)
	if err != nil {
		return err
	}

	log.Debug("converge point", zap.Int64("seed", seed), zap.Int("steps", pt.steps), zap.Float64("mse", pt.mse))
	return nil
}
