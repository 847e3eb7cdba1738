package legendre

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Rule selects the quadrature used over [0,1]
type Rule uint8

const (
	// Trapezoid samples a uniform grid, matching the reference sweep results
	Trapezoid Rule = iota
	// GaussLegendre is exact for the polynomial integrands once Points >= 2*nmax
	GaussLegendre
)

func (r Rule) String() string {
	switch r {
	case Trapezoid:
		return "trapezoid"
	case GaussLegendre:
		return "gauss-legendre"
	default:
		return fmt.Sprintf("Rule(%d)", uint8(r))
	}
}

// Integrator evaluates weighted integrals of even Legendre polynomials on
// [0,1]: Moment(n) = ∫ η P_2n(η) dη and Product(n,m) = ∫ η P_2n P_2m dη.
type Integrator struct {
	Points int
	Rule   Rule

	eta     []float64
	weights []float64 // GaussLegendre only
}

// NewIntegrator builds the node set once; the Integrator is read-only after
// construction and safe for concurrent use.
func NewIntegrator(points int, rule Rule) (*Integrator, error) {
	if points < 2 {
		return nil, fmt.Errorf("legendre: integration needs at least 2 points, got %d", points)
	}
	in := &Integrator{Points: points, Rule: rule}
	switch rule {
	case Trapezoid:
		in.eta = floats.Span(make([]float64, points), 0, 1)
	case GaussLegendre:
		x, w, err := GaussLegendreNodes(points)
		if err != nil {
			return nil, err
		}
		// map [-1,1] onto [0,1]
		for i := range x {
			x[i] = (x[i] + 1) / 2
			w[i] /= 2
		}
		in.eta, in.weights = x, w
	default:
		return nil, fmt.Errorf("legendre: unknown quadrature rule %v", rule)
	}
	return in, nil
}

// Nodes returns the sample points in [0,1]. The slice must not be modified.
func (in *Integrator) Nodes() []float64 {
	return in.eta
}

// Integrate applies the rule to f sampled at Nodes()
func (in *Integrator) Integrate(f []float64) float64 {
	if len(f) != len(in.eta) {
		panic(fmt.Sprintf("legendre: integrand has %d samples, rule has %d", len(f), len(in.eta)))
	}
	if in.Rule == GaussLegendre {
		return floats.Dot(in.weights, f)
	}
	return integrate.Trapezoidal(in.eta, f)
}

// Moment returns ∫₀¹ η P_2n(η) dη
func (in *Integrator) Moment(n int) float64 {
	p := P(in.eta, 2*n)
	floats.Mul(p, in.eta)
	return in.Integrate(p)
}

// Product returns ∫₀¹ η P_2n(η) P_2m(η) dη
func (in *Integrator) Product(n, m int) float64 {
	p := P(in.eta, 2*n)
	floats.Mul(p, in.eta)
	floats.Mul(p, P(in.eta, 2*m))
	return in.Integrate(p)
}
