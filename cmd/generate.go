package cmd

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/chainmar/model"
	"github.com/CraigKelly/chainmar/rand"
)

func newGenerateCmd(sp *startupParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a random chain and save it",
		Long: `generate draws every potential of an N variable chain with cardinality K
independently from U[0,1) and saves the result. The file extension picks the
format: .npy for a NumPy (N-1, K, K) float64 array or .uai for UAI MARKOV text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(sp)
		},
	}

	cmd.Flags().IntP("vars", "n", 10, "Number of variables (N)")
	cmd.Flags().IntP("card", "k", 10, "Cardinality of every variable (K)")
	cmd.Flags().StringP("out", "o", "", "Output file (.npy or .uai)")

	return cmd
}

func generate(sp *startupParams) error {
	start := time.Now()

	out := sp.v.GetString("out")
	if out == "" {
		return errors.Wrap(model.ErrInvalidArgument, "An output file is required (--out)")
	}
	f, err := formatFor(out)
	if err != nil {
		return err
	}

	gen, err := rand.NewGenerator(sp.seed())
	if err != nil {
		return err
	}

	c, err := model.NewChain(gen, sp.v.GetInt("vars"), sp.v.GetInt("card"))
	if err != nil {
		return err
	}

	if err := c.SaveToFile(f, out); err != nil {
		return err
	}

	sp.log.Info("generated chain",
		zap.String("file", out),
		zap.Int("vars", c.N),
		zap.Int("card", c.K),
		zap.Int64("seed", sp.seed()),
		elapsed(start),
	)
	return nil
}
