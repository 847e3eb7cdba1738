package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

func newFieldCmd(opts *options) *cobra.Command {
	var (
		omega     float64
		etaPoints int
		xiMax     float64
		xiPoints  int
	)
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Print the potential field U(xi, eta) at a dimensionless frequency",
		Long: `field reconstructs the potential in oblate spheroidal coordinates,
xi from 0 on the disk plane to --xi-max and eta from 0 to 1, with the
far boundary held at zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if etaPoints < 1 || xiPoints < 2 || !(xiMax > 0) {
				return fmt.Errorf("grid needs eta-points >= 1, xi-points >= 2 and xi-max > 0")
			}
			t, err := opts.table()
			if err != nil {
				return err
			}
			e, err := opts.engine()
			if err != nil {
				return err
			}

			eta := []float64{0}
			if etaPoints > 1 {
				eta = floats.Span(make([]float64, etaPoints), 0, 1)
			}
			xi := floats.Span(make([]float64, xiPoints), 0, xiMax)
			U, err := e.PotentialFieldContext(cmd.Context(), t.NMax, omega, eta, xi)
			if err != nil {
				return err
			}
			opts.logger.Info("field complete",
				zap.Int("nmax", t.NMax),
				zap.Float64("omega", omega))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "xi eta re im")
			for i, x := range xi {
				for j, y := range eta {
					u := U.At(i, j)
					fmt.Fprintf(out, "%.6g %.6g %.8g %.8g\n", x, y, real(u), imag(u))
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&omega, "omega", 0, "Dimensionless angular frequency ω = 2πfCr₀/σ")
	cmd.Flags().IntVar(&etaPoints, "eta-points", 11, "Samples of eta on [0, 1]")
	cmd.Flags().Float64Var(&xiMax, "xi-max", 3, "Far boundary in xi")
	cmd.Flags().IntVar(&xiPoints, "xi-points", 31, "Samples of xi on [0, xi-max]")
	_ = cmd.MarkFlagRequired("omega")
	return cmd
}
