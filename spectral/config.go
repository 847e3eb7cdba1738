// Package spectral computes disk electrode impedance and potential fields by
// expanding the potential in even Legendre modes.
//
// For nmax modes the frequency-independent part of the problem is the moment
// vector b[n] = ∫₀¹ η P_2n dη and the symmetric coupling matrix
// M[i,j] = ∫₀¹ η P_2i P_2j dη. Each angular frequency ω adds the diagonal
// prefactor C(ω) and the modal coefficients solve (C + M)·B = b.
package spectral

import (
	"fmt"

	"github.com/notargets/diskimp/bvp"
	"github.com/notargets/diskimp/legendre"
	"github.com/notargets/diskimp/linsolve"
	"go.uber.org/zap"
)

const (
	DefaultIntegrationPoints = 1000
	DefaultMaxCondition      = linsolve.DefaultMaxCondition
	DefaultBVPTolerance      = bvp.DefaultTolerance
	DefaultBVPMaxNodes       = bvp.DefaultMaxNodes
)

// Config holds configuration for creating an Engine. Zero values select
// defaults.
type Config struct {
	// Quadrature used for b and M
	IntegrationPoints int
	Quadrature        legendre.Rule

	// Condition number above which (C + M) is rejected, used when
	// LinearSolver is nil
	MaxCondition float64

	// Residual tolerance and node cap of the default collocation solver,
	// used when BVPSolver is nil
	BVPTolerance float64
	BVPMaxNodes  int

	// Concurrent frequencies or mode solves; <= 1 runs sequentially
	Workers int

	Logger *zap.Logger

	// Substitute numerical backends
	LinearSolver linsolve.Solver
	BVPSolver    bvp.Solver
}

// Engine evaluates the modal system. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	cfg    Config
	integ  *legendre.Integrator
	linear linsolve.Solver
	bvp    bvp.Solver
	log    *zap.Logger
}

// NewEngine creates an Engine, filling defaults for unset fields
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.IntegrationPoints == 0 {
		cfg.IntegrationPoints = DefaultIntegrationPoints
	}
	if cfg.MaxCondition == 0 {
		cfg.MaxCondition = DefaultMaxCondition
	}
	if cfg.BVPTolerance == 0 {
		cfg.BVPTolerance = DefaultBVPTolerance
	}
	if cfg.BVPMaxNodes == 0 {
		cfg.BVPMaxNodes = DefaultBVPMaxNodes
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxCondition < 0 || cfg.BVPTolerance < 0 || cfg.BVPMaxNodes < 0 {
		return nil, fmt.Errorf("%w: negative solver limits", ErrInvalidInput)
	}

	integ, err := legendre.NewIntegrator(cfg.IntegrationPoints, cfg.Quadrature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	e := &Engine{
		cfg:    cfg,
		integ:  integ,
		linear: cfg.LinearSolver,
		bvp:    cfg.BVPSolver,
		log:    cfg.Logger,
	}
	if e.linear == nil {
		e.linear = linsolve.LU{MaxCondition: cfg.MaxCondition}
	}
	if e.bvp == nil {
		e.bvp = bvp.NewCollocation(bvp.Config{
			Tolerance: cfg.BVPTolerance,
			MaxNodes:  cfg.BVPMaxNodes,
		})
	}
	return e, nil
}

// Config returns the effective configuration, defaults included
func (e *Engine) Config() Config {
	return e.cfg
}

func defaultEngine() (*Engine, error) {
	return NewEngine(Config{})
}
