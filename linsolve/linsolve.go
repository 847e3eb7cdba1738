// Package linsolve provides the dense complex linear solve used by the modal
// system. Solver is an interface so callers can substitute their own backend.
package linsolve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingular is returned when the matrix is singular or its condition
	// number exceeds the configured bound.
	ErrSingular = errors.New("linsolve: matrix is singular or ill-conditioned")

	// ErrDimensionMismatch is returned for non-square matrices or a right hand
	// side of the wrong length.
	ErrDimensionMismatch = errors.New("linsolve: dimension mismatch")
)

// DefaultMaxCondition is used by LU when MaxCondition is zero
const DefaultMaxCondition = 1e12

// Solver solves a·x = b for square complex a
type Solver interface {
	Solve(a *mat.CDense, b []complex128) ([]complex128, error)
}

// LU solves complex systems with gonum's real LU factorization applied to
// the equivalent real system
//
//	[ Re(a) -Im(a) ] [ Re(x) ]   [ Re(b) ]
//	[ Im(a)  Re(a) ] [ Im(x) ] = [ Im(b) ]
//
// whose singular values are those of a, each repeated twice, so the
// condition number is unchanged.
type LU struct {
	MaxCondition float64
}

func (s LU) Solve(a *mat.CDense, b []complex128) ([]complex128, error) {
	r, c := a.Dims()
	if r != c || len(b) != r {
		return nil, fmt.Errorf("%w: matrix %dx%d, rhs %d", ErrDimensionMismatch, r, c, len(b))
	}
	n := r

	A := mat.NewDense(2*n, 2*n, nil)
	rhs := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			A.Set(i, j, real(v))
			A.Set(i, j+n, -imag(v))
			A.Set(i+n, j, imag(v))
			A.Set(i+n, j+n, real(v))
		}
		rhs.SetVec(i, real(b[i]))
		rhs.SetVec(i+n, imag(b[i]))
	}

	var lu mat.LU
	lu.Factorize(A)

	maxCond := s.MaxCondition
	if maxCond == 0 {
		maxCond = DefaultMaxCondition
	}
	cond := lu.Cond()
	if math.IsInf(cond, 0) || math.IsNaN(cond) || cond > maxCond {
		return nil, fmt.Errorf("%w: condition number %.3e exceeds %.3e", ErrSingular, cond, maxCond)
	}

	var X mat.VecDense
	if err := lu.SolveVecTo(&X, false, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(X.AtVec(i), X.AtVec(i+n))
	}
	return x, nil
}
