// Command diskimp computes disk electrode impedance spectra and potential
// fields from the even Legendre modal expansion.
package main

import (
	"fmt"
	"os"

	"github.com/notargets/diskimp/params"
	"github.com/notargets/diskimp/spectral"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options shared by every subcommand
type options struct {
	verbose    bool
	configPath string
	nmax       int
	workers    int
	points     int

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "diskimp",
		Short: "Disk electrode impedance by even Legendre modes",
		Long: `diskimp solves the modal system of a disk electrode with a
distributed double layer capacitance and prints either the impedance
spectrum or the potential field around the disk.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging of every solve")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML parameter file (default: reference cell)")
	flags.IntVar(&opts.nmax, "nmax", 0, "Number of even Legendre modes (default from parameters)")
	flags.IntVar(&opts.workers, "workers", 1, "Concurrent frequency or mode solves")

	root.AddCommand(newSweepCmd(opts), newFieldCmd(opts))
	return root
}

// table loads the parameter set and applies command line overrides
func (o *options) table() (*params.Table, error) {
	t := params.Default()
	if o.configPath != "" {
		var err error
		if t, err = params.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.nmax != 0 {
		t.NMax = o.nmax
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (o *options) engine() (*spectral.Engine, error) {
	return spectral.NewEngine(spectral.Config{
		Workers: o.workers,
		Logger:  o.logger,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
