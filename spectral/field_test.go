package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/notargets/diskimp/bvp"
	"github.com/notargets/diskimp/legendre"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type failingBVP struct{ err error }

func (f failingBVP) Solve(bvp.Problem, []float64, *mat.Dense) (*bvp.Solution, error) {
	return nil, f.err
}

func testXi() []float64 {
	return floats.Span(make([]float64, 31), 0, 3)
}

func TestGeneralizedLegendreBoundaryValues(t *testing.T) {
	e := newTestEngine(t, Config{})
	xi := testXi()
	for order := 0; order <= 8; order += 2 {
		t.Run(fmt.Sprintf("order=%d", order), func(t *testing.T) {
			y, err := e.GeneralizedLegendre(order, xi)
			require.NoError(t, err)
			require.Len(t, y, len(xi))
			assert.InDelta(t, 1, y[0], 1e-6)
			assert.InDelta(t, 0, y[len(y)-1], 1e-6)
			// monotone decay between the boundary values
			for i := 1; i < len(y); i++ {
				assert.LessOrEqual(t, y[i], y[i-1]+1e-9, "index %d", i)
			}
		})
	}
}

func TestGeneralizedLegendreOrderZero(t *testing.T) {
	// (1+ξ²)y' is constant, so y = 1 - atan(ξ)/atan(ξ_last)
	e := newTestEngine(t, Config{})
	xi := testXi()
	y, err := e.GeneralizedLegendre(0, xi)
	require.NoError(t, err)
	for i, x := range xi {
		assert.InDelta(t, 1-math.Atan(x)/math.Atan(3), y[i], 1e-4, "xi=%g", x)
	}
}

func TestGeneralizedLegendreErrors(t *testing.T) {
	e := newTestEngine(t, Config{})
	_, err := e.GeneralizedLegendre(-1, testXi())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.GeneralizedLegendre(2, []float64{0, 2, 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.GeneralizedLegendre(2, []float64{0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	stuck := newTestEngine(t, Config{BVPSolver: failingBVP{err: bvp.ErrNoConvergence}})
	_, err = stuck.GeneralizedLegendre(4, testXi())
	assert.ErrorIs(t, err, ErrConvergence)
	assert.ErrorIs(t, err, bvp.ErrNoConvergence)
	assert.Contains(t, err.Error(), "mode order 4")
}

func TestPotentialFieldShapeAndBoundaries(t *testing.T) {
	e := newTestEngine(t, Config{})
	nmax, omega := 4, 1.0
	eta := floats.Span(make([]float64, 11), 0, 1)
	xi := testXi()

	U, err := e.PotentialField(nmax, omega, eta, xi)
	require.NoError(t, err)
	r, c := U.Dims()
	require.Equal(t, len(xi), r)
	require.Equal(t, len(eta), c)

	sys, err := e.Assemble(nmax)
	require.NoError(t, err)
	B, err := e.Coefficients(sys, omega, 0)
	require.NoError(t, err)

	// M_2n = 1 on the disk plane, so the first row is the surface expansion
	P := legendre.EvenTable(eta, nmax)
	for j := range eta {
		var want complex128
		for n := 0; n < nmax; n++ {
			want += complex(P.At(n, j), 0) * B[n]
		}
		assert.InDelta(t, 0, cmplx.Abs(U.At(0, j)-want), 1e-6, "eta=%g", eta[j])
		assert.InDelta(t, 0, cmplx.Abs(U.At(r-1, j)), 1e-6, "far row eta=%g", eta[j])
	}
}

func TestPotentialFieldDeterministic(t *testing.T) {
	eta := floats.Span(make([]float64, 6), 0, 1)
	xi := testXi()

	seq := newTestEngine(t, Config{})
	want, err := seq.PotentialField(5, 0.8, eta, xi)
	require.NoError(t, err)
	again, err := seq.PotentialField(5, 0.8, eta, xi)
	require.NoError(t, err)
	if diff := cmp.Diff(cdenseRows(want), cdenseRows(again)); diff != "" {
		t.Errorf("repeated field differs (-want +got):\n%s", diff)
	}

	par := newTestEngine(t, Config{Workers: 3})
	got, err := par.PotentialField(5, 0.8, eta, xi)
	require.NoError(t, err)
	if diff := cmp.Diff(cdenseRows(want), cdenseRows(got)); diff != "" {
		t.Errorf("concurrent field differs (-want +got):\n%s", diff)
	}
}

func TestPotentialFieldErrors(t *testing.T) {
	e := newTestEngine(t, Config{})
	eta := []float64{0, 0.5, 1}

	_, err := e.PotentialField(3, 0, eta, testXi())
	assert.ErrorIs(t, err, ErrDomain)

	_, err = e.PotentialField(3, 1, eta, []float64{3, 2, 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.PotentialField(3, 1, nil, testXi())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.PotentialField(0, 1, eta, testXi())
	assert.ErrorIs(t, err, ErrInvalidInput)

	boom := errors.New("diverged")
	stuck := newTestEngine(t, Config{BVPSolver: failingBVP{err: boom}, Workers: 2})
	_, err = stuck.PotentialField(3, 1, eta, testXi())
	assert.ErrorIs(t, err, ErrConvergence)
	assert.ErrorIs(t, err, boom)
}

func TestPotentialFieldDefaultEngine(t *testing.T) {
	U, err := PotentialField(2, 1, []float64{0, 1}, []float64{0, 1, 2})
	require.NoError(t, err)
	r, c := U.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
}

func cdenseRows(m *mat.CDense) [][]complex128 {
	r, c := m.Dims()
	out := make([][]complex128, r)
	for i := range out {
		out[i] = make([]complex128, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
