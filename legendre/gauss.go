package legendre

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussLegendreNodes computes the N-point Gauss-Legendre rule on [-1,1]
// using Golub-Welsch: the nodes are the eigenvalues of the symmetric
// tridiagonal Jacobi matrix, the weights are 2*v0^2 from its eigenvectors.
func GaussLegendreNodes(N int) (X, W []float64, err error) {
	if N < 1 {
		return nil, nil, errors.New("legendre: gauss rule needs at least one point")
	}
	if N == 1 {
		return []float64{0.}, []float64{2.}, nil
	}

	// Legendre recurrence has a zero main diagonal
	d0 := make([]float64, N)
	d1 := make([]float64, N-1)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		d1[i] = ip1 / math.Sqrt(4*ip1*ip1-1)
	}
	JJ := newSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		return nil, nil, errors.New("legendre: eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	VVr := mat.NewDense(N, N, nil)
	eig.VectorsTo(VVr)
	W = make([]float64, N)
	for i := range W {
		v := VVr.At(0, i)
		W[i] = 2 * v * v
	}
	return X, W, nil
}

func newSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	Tri := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		Tri.SetSym(i, i, d0[i])
		if i < n-1 {
			Tri.SetSym(i, i+1, d1[i])
		}
	}
	return Tri
}
