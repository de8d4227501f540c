package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/chainmar/model"
)

func newScoreCmd(sp *startupParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compare two MAR solution files",
		Long: `score reads two UAI MAR files over the same variables and prints the
error between them: MSE plus mean/max absolute error, Hellinger distance and
Jensen-Shannon divergence. Each is also shown as -log2 (NLog), where bigger
is better. A uniform guess is scored against the second file as a baseline.
With --model, both files must also match the chain's shape.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return score(sp)
		},
	}

	cmd.Flags().StringP("first", "a", "", "First MAR file (the estimate)")
	cmd.Flags().StringP("second", "b", "", "Second MAR file (the reference)")
	cmd.Flags().StringP("model", "m", "", "Optional model file (.npy or .uai) the MAR files must match")

	return cmd
}

func score(sp *startupParams) error {
	readMAR := func(key string) (model.Marginals, error) {
		filename := sp.v.GetString(key)
		if filename == "" {
			return nil, errors.Wrapf(model.ErrInvalidArgument, "A MAR file is required (--%s)", key)
		}
		return model.NewSolutionFromFile(model.UAIFormat{}, filename)
	}

	estimate, err := readMAR("first")
	if err != nil {
		return err
	}
	reference, err := readMAR("second")
	if err != nil {
		return err
	}

	if sp.v.GetString("model") != "" {
		c, err := loadChain(sp)
		if err != nil {
			return err
		}
		if err := estimate.CheckAgainst(c); err != nil {
			return errors.Wrap(err, "First MAR file")
		}
		if err := reference.CheckAgainst(c); err != nil {
			return errors.Wrap(err, "Second MAR file")
		}
	}

	suite, err := model.NewErrorSuite(estimate, reference)
	if err != nil {
		return err
	}
	errorReport(sp.out, "ESTIMATE", suite)

	baseline, err := model.NewErrorSuite(model.Uniform(reference.Vars(), reference.Card()), reference)
	if err != nil {
		return err
	}
	errorReport(sp.out, "ASSUME ALL MARGINALS ARE UNIFORM", baseline)

	return nil
}

// errorReport writes one error suite as a small table
func errorReport(w io.Writer, title string, es *model.ErrorSuite) {
	nlog := func(f float64) float64 {
		return -math.Log2(f)
	}

	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "  MSE  %12.6g | NLog %7.3f\n", es.MSE, nlog(es.MSE))
	fmt.Fprintf(w, "  Mean | MeanAE:%10.6f MaxAE:%10.6f Hel:%10.6f JSD:%10.6f\n",
		es.MeanMeanAbsError, es.MeanMaxAbsError, es.MeanHellinger, es.MeanJSDiverge)
	fmt.Fprintf(w, "  Max  | MeanAE:%10.6f MaxAE:%10.6f Hel:%10.6f JSD:%10.6f\n",
		es.MaxMeanAbsError, es.MaxMaxAbsError, es.MaxHellinger, es.MaxJSDiverge)
	fmt.Fprintf(w, "  NLog | MeanAE:%10.3f MaxAE:%10.3f Hel:%10.3f JSD:%10.3f\n",
		nlog(es.MaxMeanAbsError), nlog(es.MaxMaxAbsError), nlog(es.MaxHellinger), nlog(es.MaxJSDiverge))
}
