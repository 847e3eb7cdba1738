package bvp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// newBandSystem allocates storage for an n x n matrix with kl sub- and ku
// super-diagonals plus kl extra super-diagonals for pivoting fill-in.
func newBandSystem(n, kl, ku int) *mat.BandDense {
	return mat.NewBandDense(n, n, kl, kl+ku, nil)
}

// bandSolve solves A x = b in place by Gaussian elimination with partial
// pivoting, overwriting A with U and b with x. A must come from
// newBandSystem(n, kl, ku).
func bandSolve(A *mat.BandDense, kl, ku int, b []float64) error {
	n, _ := A.Dims()
	if len(b) != n {
		panic("bvp: band system size mismatch")
	}
	width := kl + ku

	for j := 0; j < n; j++ {
		last := min(n-1, j+kl)
		p := j
		for i := j + 1; i <= last; i++ {
			if math.Abs(A.At(i, j)) > math.Abs(A.At(p, j)) {
				p = i
			}
		}
		if A.At(p, j) == 0 {
			return fmt.Errorf("%w: singular Jacobian at column %d", ErrNoConvergence, j)
		}
		cmax := min(n-1, j+width)
		if p != j {
			for c := j; c <= cmax; c++ {
				vj, vp := A.At(j, c), A.At(p, c)
				A.SetBand(j, c, vp)
				A.SetBand(p, c, vj)
			}
			b[j], b[p] = b[p], b[j]
		}
		pivot := A.At(j, j)
		for i := j + 1; i <= last; i++ {
			f := A.At(i, j) / pivot
			if f == 0 {
				continue
			}
			A.SetBand(i, j, 0)
			for c := j + 1; c <= cmax; c++ {
				A.SetBand(i, c, A.At(i, c)-f*A.At(j, c))
			}
			b[i] -= f * b[j]
		}
	}

	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for c := i + 1; c <= min(n-1, i+width); c++ {
			s -= A.At(i, c) * b[c]
		}
		b[i] = s / A.At(i, i)
	}
	return nil
}
