package linsolve

import (
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLUSolveKnownSolution(t *testing.T) {
	// diagonally dominant complex matrix with a chosen solution
	sizes := []int{1, 2, 5, 12}
	for _, n := range sizes {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a := mat.NewCDense(n, n, nil)
			want := make([]complex128, n)
			for i := 0; i < n; i++ {
				want[i] = complex(float64(i+1), -0.5*float64(i))
				for j := 0; j < n; j++ {
					v := complex(1/float64(i+j+1), 0.1*float64(i-j))
					if i == j {
						v += complex(float64(n), 2)
					}
					a.Set(i, j, v)
				}
			}
			b := make([]complex128, n)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					b[i] += a.At(i, j) * want[j]
				}
			}

			x, err := LU{}.Solve(a, b)
			require.NoError(t, err)
			for i := range x {
				assert.InDelta(t, 0, cmplx.Abs(x[i]-want[i]), 1e-12, "component %d", i)
			}
		})
	}
}

func TestLURejectsSingular(t *testing.T) {
	a := mat.NewCDense(2, 2, []complex128{
		1 + 1i, 2 + 2i,
		2 + 2i, 4 + 4i,
	})
	_, err := LU{}.Solve(a, []complex128{1, 1})
	assert.ErrorIs(t, err, ErrSingular)

	// well posed but above a tight condition bound
	b := mat.NewCDense(2, 2, []complex128{
		1, 0,
		0, 1e-6,
	})
	_, err = LU{MaxCondition: 1e3}.Solve(b, []complex128{1, 1})
	assert.ErrorIs(t, err, ErrSingular)
	_, err = LU{}.Solve(b, []complex128{1, 1})
	assert.NoError(t, err)
}

func TestLUDimensionMismatch(t *testing.T) {
	a := mat.NewCDense(2, 3, nil)
	_, err := LU{}.Solve(a, []complex128{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	sq := mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})
	_, err = LU{}.Solve(sq, []complex128{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
