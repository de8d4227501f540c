package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/chainmar/inference"
	"github.com/CraigKelly/chainmar/model"
)

func newExactCmd(sp *startupParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exact",
		Short: "Exact marginals by forward/backward message passing",
		Long: `exact prints the marginals of every variable in UAI MAR format.

Modes: reference (raw message products, may over/underflow on long chains),
scaled (messages normalized at every step), log (log-domain messages) and
enumerate (brute force over the joint, tiny chains only).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exactMarginals(sp)
		},
	}

	cmd.Flags().StringP("model", "m", "", "Model file to read (.npy or .uai)")
	cmd.Flags().String("mode", inference.Reference.String(), "Message mode: reference, scaled, log or enumerate")

	return cmd
}

func exactMarginals(sp *startupParams) error {
	start := time.Now()

	c, err := loadChain(sp)
	if err != nil {
		return err
	}

	mode, err := inference.ParseMode(sp.v.GetString("mode"))
	if err != nil {
		return err
	}

	engine := inference.NewEngine(mode)
	engine.Log = sp.log

	m, err := engine.Marginals(c)
	if err != nil {
		return err
	}

	sp.log.Info("exact inference complete", zap.Stringer("mode", mode), elapsed(start))
	return model.WriteMAR(sp.out, m)
}
