package spectral

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/notargets/diskimp/bvp"
	"github.com/notargets/diskimp/legendre"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// GeneralizedLegendre returns M_k(ξ) sampled on xi: the solution of
//
//	d/dξ[(1+ξ²) dy/dξ] = k(k+1) y,  y(ξ_first) = 1,  y(ξ_last) = 0
//
// solved as the pair y₀' = y₁/(1+ξ²), y₁' = k(k+1) y₀. The initial guess is
// the straight line between the boundary values, so results are repeatable.
func (e *Engine) GeneralizedLegendre(order int, xi []float64) ([]float64, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: negative order %d", ErrInvalidInput, order)
	}
	if err := checkGrid("xi", xi, 2, true); err != nil {
		return nil, err
	}
	kk := float64(order) * float64(order+1)
	p := bvp.Problem{
		Dim:     2,
		NumLeft: 1,
		Func: func(x float64, y, dydx []float64) {
			dydx[0] = y[1] / (1 + x*x)
			dydx[1] = kk * y[0]
		},
		Left:  func(y, res []float64) { res[0] = y[0] - 1 },
		Right: func(y, res []float64) { res[0] = y[0] },
	}

	N := len(xi)
	L := xi[N-1] - xi[0]
	guess := mat.NewDense(2, N, nil)
	for i, x := range xi {
		guess.Set(0, i, 1-(x-xi[0])/L)
		guess.Set(1, i, -(1+x*x)/L)
	}

	sol, err := e.bvp.Solve(p, xi, guess)
	if err != nil {
		if errors.Is(err, bvp.ErrInvalidMesh) {
			return nil, fmt.Errorf("mode order %d: %w: %w", order, ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("mode order %d: %w: %w", order, ErrConvergence, err)
	}
	y := sol.Component(0)
	if len(y) != N {
		return nil, fmt.Errorf("mode order %d: %w: solver returned %d samples for %d points",
			order, ErrConvergence, len(y), N)
	}

	e.log.Debug("generalized legendre solved",
		zap.Int("order", order),
		zap.Int("nodes", len(sol.X)),
		zap.Int("iterations", sol.Iterations),
		zap.Float64("residual", sol.Residual))
	return y, nil
}

// PotentialField returns U(ξ, η) = Σ_n B[n] P_2n(η) M_2n(ξ) as a
// len(xi) x len(eta) matrix, with B solved at omega and no faradaic term.
func (e *Engine) PotentialField(nmax int, omega float64, eta, xi []float64) (*mat.CDense, error) {
	return e.PotentialFieldContext(context.Background(), nmax, omega, eta, xi)
}

// PotentialFieldContext is PotentialField with cancellation between modes
func (e *Engine) PotentialFieldContext(ctx context.Context, nmax int, omega float64,
	eta, xi []float64) (*mat.CDense, error) {
	if err := checkGrid("eta", eta, 1, false); err != nil {
		return nil, err
	}
	if err := checkGrid("xi", xi, 2, true); err != nil {
		return nil, err
	}

	sys, err := e.Assemble(nmax)
	if err != nil {
		return nil, err
	}
	B, err := e.Coefficients(sys, omega, 0)
	if err != nil {
		return nil, err
	}

	modes := make([][]float64, nmax)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for n := range modes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := e.GeneralizedLegendre(2*n, xi)
			if err != nil {
				return fmt.Errorf("nmax=%d mode %d: %w", nmax, n, err)
			}
			modes[n] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// accumulate in mode order so the sum does not depend on scheduling
	P := legendre.EvenTable(eta, nmax)
	U := mat.NewCDense(len(xi), len(eta), nil)
	for n := 0; n < nmax; n++ {
		pn := P.RawRowView(n)
		for i, m := range modes[n] {
			for j, p := range pn {
				U.Set(i, j, U.At(i, j)+complex(p*m, 0)*B[n])
			}
		}
	}
	return U, nil
}

// PotentialField evaluates the field on a default Engine
func PotentialField(nmax int, omega float64, eta, xi []float64) (*mat.CDense, error) {
	e, err := defaultEngine()
	if err != nil {
		return nil, err
	}
	return e.PotentialField(nmax, omega, eta, xi)
}

func checkGrid(name string, x []float64, minLen int, increasing bool) error {
	if len(x) < minLen {
		return fmt.Errorf("%w: %s needs at least %d points, got %d", ErrInvalidInput, name, minLen, len(x))
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] is %g", ErrInvalidInput, name, i, v)
		}
		if increasing && i > 0 && !(v > x[i-1]) {
			return fmt.Errorf("%w: %s must be strictly increasing at index %d", ErrInvalidInput, name, i)
		}
	}
	return nil
}
