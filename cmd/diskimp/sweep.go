package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSweepCmd(opts *options) *cobra.Command {
	var faradaic float64
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Print the impedance spectrum over a log-spaced frequency sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.table()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("faradaic") {
				t.Faradaic = faradaic
				if err := t.Validate(); err != nil {
					return err
				}
			}
			freqs, err := t.Frequencies(opts.points)
			if err != nil {
				return err
			}
			e, err := opts.engine()
			if err != nil {
				return err
			}

			Z, err := e.ImpedanceContext(cmd.Context(), t.NMax, freqs,
				t.Capacitance, t.Conductivity, t.Radius, t.Faradaic)
			if err != nil {
				return err
			}
			opts.logger.Info("sweep complete",
				zap.Int("nmax", t.NMax),
				zap.Int("points", len(freqs)),
				zap.Float64("debye_length_m", t.DebyeLength()))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "freq_hz re_ohm im_ohm mag_ohm phase_deg")
			for k, z := range Z {
				fmt.Fprintf(out, "%.6g %.6g %.6g %.6g %.4f\n",
					freqs[k], real(z), imag(z), cmplx.Abs(z), cmplx.Phase(z)*180/math.Pi)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.points, "points", "n", 50, "Number of sweep frequencies")
	cmd.Flags().Float64Var(&faradaic, "faradaic", 0, "Dimensionless faradaic admittance (default from parameters)")
	return cmd
}
