// Package bvp solves two-point boundary value problems for first order
// systems y' = f(x, y) with separated boundary conditions.
package bvp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoConvergence is returned when Newton iteration stalls or the
	// residual tolerance cannot be met within the node budget.
	ErrNoConvergence = errors.New("bvp: no convergence")

	// ErrInvalidMesh is returned for meshes with fewer than two points or
	// that are not strictly increasing.
	ErrInvalidMesh = errors.New("bvp: invalid mesh")

	// ErrInvalidProblem is returned for inconsistent problem definitions.
	ErrInvalidProblem = errors.New("bvp: invalid problem")
)

// Func evaluates the right hand side, writing f(x, y) into dydx
type Func func(x float64, y, dydx []float64)

// Boundary writes the boundary residuals for the end state y into res
type Boundary func(y, res []float64)

// Problem describes y' = Func(x, y) on [x_first, x_last] with NumLeft
// conditions imposed at x_first and Dim-NumLeft at x_last.
type Problem struct {
	Dim     int
	NumLeft int
	Func    Func
	Left    Boundary
	Right   Boundary
}

func (p Problem) validate() error {
	switch {
	case p.Dim < 1:
		return fmt.Errorf("%w: dimension %d", ErrInvalidProblem, p.Dim)
	case p.NumLeft < 0 || p.NumLeft > p.Dim:
		return fmt.Errorf("%w: %d left conditions for dimension %d", ErrInvalidProblem, p.NumLeft, p.Dim)
	case p.Func == nil:
		return fmt.Errorf("%w: nil right hand side", ErrInvalidProblem)
	case p.NumLeft > 0 && p.Left == nil:
		return fmt.Errorf("%w: nil left boundary", ErrInvalidProblem)
	case p.NumLeft < p.Dim && p.Right == nil:
		return fmt.Errorf("%w: nil right boundary", ErrInvalidProblem)
	}
	return nil
}

// Solution holds the converged state on the (possibly refined) mesh
type Solution struct {
	X []float64
	Y *mat.Dense // Dim x len(X)

	// Index locates the caller's mesh points in X. Nil means X is the
	// caller's mesh.
	Index []int

	Residual   float64 // largest relative RMS residual over all intervals
	Iterations int     // Newton iterations summed over refinement passes
}

// Component returns component c sampled on the caller's mesh
func (s *Solution) Component(c int) []float64 {
	row := s.Y.RawRowView(c)
	if s.Index == nil {
		out := make([]float64, len(row))
		copy(out, row)
		return out
	}
	out := make([]float64, len(s.Index))
	for i, idx := range s.Index {
		out[i] = row[idx]
	}
	return out
}

// Solver solves p on mesh x starting from guess (Dim x len(x))
type Solver interface {
	Solve(p Problem, x []float64, guess *mat.Dense) (*Solution, error)
}

func checkMesh(x []float64) error {
	if len(x) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidMesh, len(x))
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return fmt.Errorf("%w: not strictly increasing at index %d", ErrInvalidMesh, i)
		}
	}
	return nil
}
