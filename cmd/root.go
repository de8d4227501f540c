package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// startupParams is the state shared by every command once flags, config
// and environment have been merged
type startupParams struct {
	v   *viper.Viper
	log *zap.Logger
	out io.Writer
}

func (sp *startupParams) seed() int64 {
	return sp.v.GetInt64("seed")
}

// newRootCmd builds the command tree. Each call gets its own viper instance
// so the tree can be run more than once in a process.
func newRootCmd() *cobra.Command {
	sp := &startupParams{
		v:   viper.New(),
		log: zap.NewNop(),
		out: os.Stdout,
	}

	rootCmd := &cobra.Command{
		Use:   "chainmar",
		Short: "Exact and sampled marginals for discrete chain models",
		Long: `chainmar computes the marginal distribution of every variable in a
chain-structured pairwise Markov network.
Among other features:

  - Random chain generation, saved as NumPy .npy or UAI MARKOV files
  - Exact sum-product inference (reference, scaled and log-domain messages)
  - A systematic-scan Gibbs sampler
  - A convergence report comparing the sampler against exact inference
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(sp.v, cmd); err != nil {
				return err
			}
			sp.out = cmd.OutOrStdout()
			sp.log = newLogger(sp.v.GetBool("verbose"), cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = sp.log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.chainmar.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().Int64P("seed", "r", 1, "Random seed to use")

	rootCmd.AddCommand(
		newGenerateCmd(sp),
		newExactCmd(sp),
		newSampleCmd(sp),
		newConvergeCmd(sp),
		newScoreCmd(sp),
		newDotCmd(sp),
	)

	return rootCmd
}

// Execute builds the command tree and runs it against os.Args.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig binds the running command's flags into v, then layers the
// environment (CHAINMAR_*) and the config file on top
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("chainmar")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "Could not bind command line flags")
	}

	cfgFile := v.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil // no home means no default config
		}
		v.AddConfigPath(home)
		v.SetConfigName(".chainmar")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrapf(err, "Could not read config file")
	}

	return nil
}

// newLogger returns a console logger writing to w: info and above normally,
// debug and above when verbose
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     logTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Named("chainmar")
}

func logTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

// elapsed is a small helper for logging run times
func elapsed(start time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(start))
}
