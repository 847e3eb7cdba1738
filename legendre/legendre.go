package legendre

import (
	"gonum.org/v1/gonum/mat"
)

// P evaluates the Legendre polynomial of order n at points x.
// Uses the Bonnet recurrence (k+1)P_{k+1} = (2k+1)xP_k - kP_{k-1}, which
// stays accurate for orders where expanding the monomial coefficients does not.
func P(x []float64, n int) []float64 {
	Np := len(x)
	P := make([]float64, Np)
	for i := range P {
		P[i] = 1.0
	}
	if n == 0 {
		return P
	}

	Pold := make([]float64, Np)
	copy(Pold, P)
	copy(P, x)

	for k := 1; k < n; k++ {
		fk := float64(k)
		for i := range P {
			Pnew := ((2*fk+1)*x[i]*P[i] - fk*Pold[i]) / (fk + 1)
			Pold[i] = P[i]
			P[i] = Pnew
		}
	}
	return P
}

// PSingle evaluates the Legendre polynomial of order n at a single point
func PSingle(x float64, n int) float64 {
	return P([]float64{x}, n)[0]
}

// EvenTable tabulates the even-order polynomials P_0, P_2, ..., P_{2(nmax-1)}
// at points x. Row n holds P_{2n}; x must be non-empty.
// All rows come out of a single pass of the recurrence.
func EvenTable(x []float64, nmax int) *mat.Dense {
	Np := len(x)
	T := mat.NewDense(nmax, Np, nil)

	Pold := make([]float64, Np)
	P := make([]float64, Np)
	for i := range P {
		P[i] = 1.0
	}
	T.SetRow(0, P)

	for k := 0; k < 2*(nmax-1); k++ {
		fk := float64(k)
		for i := range P {
			Pnew := ((2*fk+1)*x[i]*P[i] - fk*Pold[i]) / (fk + 1)
			Pold[i] = P[i]
			P[i] = Pnew
		}
		if (k+1)%2 == 0 {
			T.SetRow((k+1)/2, P)
		}
	}
	return T
}
