package spectral

import (
	"errors"
	"math"
	"math/cmplx"
	"sync/atomic"
	"testing"

	"github.com/notargets/diskimp/linsolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stubLinear records calls and returns a canned answer or error
type stubLinear struct {
	calls  atomic.Int64
	result func(n int) []complex128
	err    error
}

func (s *stubLinear) Solve(a *mat.CDense, b []complex128) ([]complex128, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.result(len(b)), nil
}

func constant(v complex128) func(n int) []complex128 {
	return func(n int) []complex128 {
		x := make([]complex128, n)
		for i := range x {
			x[i] = v
		}
		return x
	}
}

func TestCoefficientsSolveSystem(t *testing.T) {
	e := newTestEngine(t, Config{})
	nmax := 8
	sys, err := e.Assemble(nmax)
	require.NoError(t, err)

	omega, faradaic := 1.3, 0.2
	B, err := e.Coefficients(sys, omega, faradaic)
	require.NoError(t, err)
	require.Len(t, B, nmax)

	diag, err := sys.Prefactor(omega, faradaic)
	require.NoError(t, err)
	A := sys.Matrix(diag)
	for i := 0; i < nmax; i++ {
		var r complex128
		for j := 0; j < nmax; j++ {
			r += A.At(i, j) * B[j]
		}
		assert.InDelta(t, 0, cmplx.Abs(r-complex(sys.Moment[i], 0)), 1e-12, "row %d", i)
	}

	B0, err := e.LeadingCoefficient(sys, omega, faradaic)
	require.NoError(t, err)
	assert.Equal(t, B[0], B0)
}

func TestCoefficientsZeroAdmittance(t *testing.T) {
	stub := &stubLinear{result: constant(1)}
	e := newTestEngine(t, Config{LinearSolver: stub})
	sys, err := e.Assemble(4)
	require.NoError(t, err)

	_, err = e.Coefficients(sys, 0, 0)
	assert.ErrorIs(t, err, ErrDomain)
	assert.Zero(t, stub.calls.Load(), "solver must not run on an undefined prefactor")
}

func TestCoefficientsUsesInjectedSolver(t *testing.T) {
	stub := &stubLinear{result: constant(2 + 1i)}
	e := newTestEngine(t, Config{LinearSolver: stub})
	sys, err := e.Assemble(3)
	require.NoError(t, err)

	B0, err := e.LeadingCoefficient(sys, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2+1i, B0)
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestCoefficientsSingularSystem(t *testing.T) {
	boom := errors.New("factorization failed")
	tests := []struct {
		name   string
		solver linsolve.Solver
		target error
	}{
		{"solver error", &stubLinear{err: boom}, boom},
		{"nan result", &stubLinear{result: constant(complex(math.NaN(), 0))}, ErrSingularSystem},
		{"short result", &stubLinear{result: func(int) []complex128 { return []complex128{1} }}, ErrSingularSystem},
		{"condition bound", linsolve.LU{MaxCondition: 1}, linsolve.ErrSingular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, Config{LinearSolver: tt.solver})
			sys, err := e.Assemble(5)
			require.NoError(t, err)
			_, err = e.Coefficients(sys, 0.7, 0)
			assert.ErrorIs(t, err, ErrSingularSystem)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), "nmax=5")
			assert.Contains(t, err.Error(), "omega=0.7")
		})
	}
}
