package spectral

import (
	"fmt"
	"math/cmplx"

	"go.uber.org/zap"
)

// Coefficients solves (C(ω, f) + M)·B = b and returns the full vector B
func (e *Engine) Coefficients(sys *System, omega, faradaic float64) ([]complex128, error) {
	diag, err := sys.Prefactor(omega, faradaic)
	if err != nil {
		return nil, err
	}
	rhs := make([]complex128, sys.NMax)
	for i, v := range sys.Moment {
		rhs[i] = complex(v, 0)
	}

	B, err := e.linear.Solve(sys.Matrix(diag), rhs)
	if err != nil {
		return nil, fmt.Errorf("nmax=%d omega=%g: %w: %w", sys.NMax, omega, ErrSingularSystem, err)
	}
	if len(B) != sys.NMax {
		return nil, fmt.Errorf("nmax=%d omega=%g: %w: solver returned %d coefficients",
			sys.NMax, omega, ErrSingularSystem, len(B))
	}
	for n, v := range B {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return nil, fmt.Errorf("nmax=%d omega=%g: %w: coefficient %d is %v",
				sys.NMax, omega, ErrSingularSystem, n, v)
		}
	}

	e.log.Debug("solved modal system",
		zap.Int("nmax", sys.NMax),
		zap.Float64("omega", omega),
		zap.Float64("faradaic", faradaic),
		zap.Complex128("B0", B[0]))
	return B, nil
}

// LeadingCoefficient returns B[0], the only coefficient impedance needs
func (e *Engine) LeadingCoefficient(sys *System, omega, faradaic float64) (complex128, error) {
	B, err := e.Coefficients(sys, omega, faradaic)
	if err != nil {
		return 0, err
	}
	return B[0], nil
}
