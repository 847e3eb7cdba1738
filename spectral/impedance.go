package spectral

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AngularFrequency converts a frequency in Hz to the dimensionless
// ω = 2π f C r₀ / σ
func AngularFrequency(freq, capacitance, conductivity, radius float64) float64 {
	return 2 * math.Pi * freq * capacitance * radius / conductivity
}

// Impedance returns one complex impedance (Ω) per frequency (Hz), in input
// order. capacitance is the double layer capacitance per area (F/m²),
// conductivity the electrolyte conductivity (S/m), radius the disk radius (m)
// and faradaic the dimensionless charge transfer term added to jω.
func (e *Engine) Impedance(nmax int, frequencies []float64, capacitance, conductivity, radius,
	faradaic float64) ([]complex128, error) {
	return e.ImpedanceContext(context.Background(), nmax, frequencies, capacitance, conductivity,
		radius, faradaic)
}

// ImpedanceContext is Impedance with cancellation between frequencies
func (e *Engine) ImpedanceContext(ctx context.Context, nmax int, frequencies []float64,
	capacitance, conductivity, radius, faradaic float64) ([]complex128, error) {
	if err := checkMaterial(capacitance, conductivity, radius); err != nil {
		return nil, err
	}
	for k, f := range frequencies {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: frequency %d is %g", ErrInvalidInput, k, f)
		}
	}

	sys, err := e.Assemble(nmax)
	if err != nil {
		return nil, err
	}

	Z := make([]complex128, len(frequencies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for k, f := range frequencies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			omega := AngularFrequency(f, capacitance, conductivity, radius)
			B0, err := e.LeadingCoefficient(sys, omega, faradaic)
			if err != nil {
				return fmt.Errorf("frequency %d (%g Hz): %w", k, f, err)
			}
			Z[k] = 1 / (complex(4*radius*conductivity, 0) * B0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.Debug("impedance sweep complete",
		zap.Int("nmax", nmax),
		zap.Int("frequencies", len(frequencies)),
		zap.Int("workers", e.cfg.Workers))
	return Z, nil
}

// Impedance computes a sweep on a default Engine
func Impedance(nmax int, frequencies []float64, capacitance, conductivity, radius,
	faradaic float64) ([]complex128, error) {
	e, err := defaultEngine()
	if err != nil {
		return nil, err
	}
	return e.Impedance(nmax, frequencies, capacitance, conductivity, radius, faradaic)
}

func checkMaterial(capacitance, conductivity, radius float64) error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"capacitance", capacitance},
		{"conductivity", conductivity},
		{"radius", radius},
	} {
		if !(v.value > 0) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidInput, v.name, v.value)
		}
	}
	return nil
}
