package spectral

import (
	"fmt"
	"math"

	"github.com/notargets/diskimp/legendre"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// System is the frequency-independent part of the modal problem for nmax
// modes. It is immutable after Assemble and may be shared across a sweep.
type System struct {
	NMax     int
	Moment   []float64     // b[n] = ∫₀¹ η P_2n dη
	Coupling *mat.SymDense // M[i,j] = ∫₀¹ η P_2i P_2j dη

	// kappa[n] = -2/π (2ⁿ n!)⁴ / ((2n)!)², the slope M'_2n(0) of the
	// generalized Legendre function at the disk surface
	kappa []float64
}

// Assemble builds b, M and the scale factors for nmax modes. Only the
// entries with j >= i are integrated; M is symmetric by construction.
func (e *Engine) Assemble(nmax int) (*System, error) {
	if nmax < 1 {
		return nil, fmt.Errorf("%w: nmax must be positive, got %d", ErrInvalidInput, nmax)
	}

	kappa := make([]float64, nmax)
	for n := range kappa {
		k, err := scaleFactor(n)
		if err != nil {
			return nil, fmt.Errorf("nmax=%d: %w", nmax, err)
		}
		kappa[n] = k
	}

	eta := e.integ.Nodes()
	P := legendre.EvenTable(eta, nmax)
	weighted := make([]float64, len(eta))
	f := make([]float64, len(eta))

	b := make([]float64, nmax)
	M := mat.NewSymDense(nmax, nil)
	for i := 0; i < nmax; i++ {
		floats.MulTo(weighted, eta, P.RawRowView(i))
		b[i] = e.integ.Integrate(weighted)
		for j := i; j < nmax; j++ {
			floats.MulTo(f, weighted, P.RawRowView(j))
			M.SetSym(i, j, e.integ.Integrate(f))
		}
	}

	e.log.Debug("assembled modal system",
		zap.Int("nmax", nmax),
		zap.Int("points", e.integ.Points),
		zap.Stringer("rule", e.integ.Rule))

	return &System{
		NMax:     nmax,
		Moment:   b,
		Coupling: M,
		kappa:    kappa,
	}, nil
}

// scaleFactor returns κ_n computed from factorials; large n overflows float64
func scaleFactor(n int) (float64, error) {
	num := math.Pow(math.Pow(2, float64(n))*math.Gamma(float64(n)+1), 4)
	den := math.Gamma(float64(2*n) + 1)
	den *= den
	k := -2 / math.Pi * num / den
	if math.IsInf(num, 0) || math.IsInf(den, 0) || math.IsNaN(k) || math.IsInf(k, 0) || k == 0 {
		return 0, fmt.Errorf("%w: mode %d (order %d)", ErrRangeOverflow, n, 2*n)
	}
	return k, nil
}

// Prefactor returns the diagonal of C(ω, f): 1/((jω + f)·(-(4n+1)/κ_n))
func (s *System) Prefactor(omega, faradaic float64) ([]complex128, error) {
	if math.IsNaN(omega) || math.IsInf(omega, 0) || math.IsNaN(faradaic) || math.IsInf(faradaic, 0) {
		return nil, fmt.Errorf("%w: omega=%g faradaic=%g", ErrInvalidInput, omega, faradaic)
	}
	admittance := complex(faradaic, omega)
	if admittance == 0 {
		return nil, fmt.Errorf("nmax=%d omega=%g faradaic=%g: %w", s.NMax, omega, faradaic, ErrDomain)
	}
	diag := make([]complex128, s.NMax)
	for n, k := range s.kappa {
		diag[n] = 1 / (admittance * complex(-float64(4*n+1)/k, 0))
	}
	return diag, nil
}

// Matrix returns C + M for the prefactor diagonal
func (s *System) Matrix(diag []complex128) *mat.CDense {
	if len(diag) != s.NMax {
		panic("spectral: prefactor length does not match nmax")
	}
	A := mat.NewCDense(s.NMax, s.NMax, nil)
	for i := 0; i < s.NMax; i++ {
		for j := 0; j < s.NMax; j++ {
			A.Set(i, j, complex(s.Coupling.At(i, j), 0))
		}
		A.Set(i, i, A.At(i, i)+diag[i])
	}
	return A
}

// ScaleFactor returns κ_n for mode n < NMax
func (s *System) ScaleFactor(n int) float64 {
	return s.kappa[n]
}
