package bvp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultTolerance     = 1e-6
	DefaultMaxNodes      = 5000
	DefaultMaxIterations = 10
)

// Config holds the collocation controls. Zero values select the defaults.
type Config struct {
	Tolerance     float64 // bound on the relative RMS residual of every interval
	MaxNodes      int     // refinement gives up beyond this many mesh points
	MaxIterations int     // Newton iterations allowed per refinement pass
}

// Collocation is a fourth order Lobatto IIIA collocation solver. Between
// mesh points the solution is the cubic Hermite interpolant of the node
// values and slopes, required to satisfy the ODE at the interval midpoint
// (Simpson's rule). The nonlinear system is solved by Newton iteration with
// central-difference block Jacobians and a banded LU. Intervals whose
// residual exceeds Tolerance are split and the solve repeats; mesh points are
// only ever inserted, so the caller's points stay part of the mesh.
type Collocation struct {
	cfg Config
}

func NewCollocation(cfg Config) *Collocation {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = DefaultMaxNodes
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Collocation{cfg: cfg}
}

func (c *Collocation) Config() Config {
	return c.cfg
}

func (c *Collocation) Solve(p Problem, x []float64, guess *mat.Dense) (*Solution, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := checkMesh(x); err != nil {
		return nil, err
	}
	if guess == nil {
		return nil, fmt.Errorf("%w: nil initial guess", ErrInvalidProblem)
	}
	m, N := p.Dim, len(x)
	if r, cols := guess.Dims(); r != m || cols != N {
		return nil, fmt.Errorf("%w: guess is %dx%d, want %dx%d", ErrInvalidProblem, r, cols, m, N)
	}

	mesh := make([]float64, N)
	copy(mesh, x)
	y := make([]float64, m*N)
	caller := make([]bool, N)
	for i := 0; i < N; i++ {
		for k := 0; k < m; k++ {
			y[i*m+k] = guess.At(k, i)
		}
		caller[i] = true
	}

	tol := c.cfg.Tolerance
	w := newWorkspace(m)
	var iterations int
	for {
		it, err := c.newton(p, mesh, y, w)
		iterations += it
		if err != nil {
			return nil, fmt.Errorf("%d nodes: %w", len(mesh), err)
		}

		rms := w.residuals(p, mesh, y)
		worst := floats.Max(rms)
		bc := w.boundaryError(p, y)
		if worst <= tol {
			if bc > tol {
				return nil, fmt.Errorf("%w: boundary residual %.3e above tolerance %.3e",
					ErrNoConvergence, bc, tol)
			}
			return newSolution(m, mesh, y, caller, worst, iterations), nil
		}

		mesh, y, caller = w.refine(p, mesh, y, caller, rms, tol)
		if len(mesh) > c.cfg.MaxNodes {
			return nil, fmt.Errorf("%w: residual %.3e above tolerance %.3e, refinement needs %d nodes (max %d)",
				ErrNoConvergence, worst, tol, len(mesh), c.cfg.MaxNodes)
		}
	}
}

// newton iterates on the collocation system in place. Unknowns are ordered
// node by node; rows are the left conditions, m collocation residuals per
// interval, then the right conditions, which keeps the Jacobian banded.
func (c *Collocation) newton(p Problem, mesh, y []float64, w *workspace) (int, error) {
	m, N, nl := p.Dim, len(mesh), p.NumLeft
	n := m * N
	kl, ku := nl+m-1, 2*m-1-nl

	R := make([]float64, n)
	u := make([]float64, 2*m)
	local := mat.NewDense(m, 2*m, nil)
	var left, right *mat.Dense
	if nl > 0 {
		left = mat.NewDense(nl, m, nil)
	}
	if nl < m {
		right = mat.NewDense(m-nl, m, nil)
	}
	settings := &fd.JacobianSettings{Formula: fd.Central}

	for it := 1; it <= c.cfg.MaxIterations; it++ {
		J := newBandSystem(n, kl, ku)

		if nl > 0 {
			ya := y[:m]
			p.Left(ya, R[:nl])
			fd.Jacobian(left, func(res, s []float64) { p.Left(s, res) }, ya, settings)
			for r := 0; r < nl; r++ {
				for k := 0; k < m; k++ {
					J.SetBand(r, k, left.At(r, k))
				}
			}
		}

		for i := 0; i < N-1; i++ {
			x0, h := mesh[i], mesh[i+1]-mesh[i]
			f := func(res, u []float64) { w.collocate(p, x0, h, u[:m], u[m:], res) }
			copy(u, y[i*m:(i+2)*m])
			row := nl + i*m
			f(R[row:row+m], u)
			fd.Jacobian(local, f, u, settings)
			for r := 0; r < m; r++ {
				for k := 0; k < 2*m; k++ {
					J.SetBand(row+r, i*m+k, local.At(r, k))
				}
			}
		}

		if nl < m {
			row := nl + (N-1)*m
			yb := y[(N-1)*m:]
			p.Right(yb, R[row:])
			fd.Jacobian(right, func(res, s []float64) { p.Right(s, res) }, yb, settings)
			for r := 0; r < m-nl; r++ {
				for k := 0; k < m; k++ {
					J.SetBand(row+r, (N-1)*m+k, right.At(r, k))
				}
			}
		}

		floats.Scale(-1, R)
		if err := bandSolve(J, kl, ku, R); err != nil {
			return it, err
		}

		var step, scale float64
		for i := range y {
			y[i] += R[i]
			step = math.Max(step, math.Abs(R[i]))
			scale = math.Max(scale, math.Abs(y[i]))
		}
		if step <= 1e-3*c.cfg.Tolerance*(1+scale) {
			return it, nil
		}
	}
	return c.cfg.MaxIterations, fmt.Errorf("%w: Newton update still changing after %d iterations",
		ErrNoConvergence, c.cfg.MaxIterations)
}

type workspace struct {
	fi, fj, ym, fm []float64
	s, ds, fx      []float64
	bc             []float64
}

func newWorkspace(m int) *workspace {
	buf := make([]float64, 8*m)
	return &workspace{
		fi: buf[0:m], fj: buf[m : 2*m], ym: buf[2*m : 3*m], fm: buf[3*m : 4*m],
		s: buf[4*m : 5*m], ds: buf[5*m : 6*m], fx: buf[6*m : 7*m], bc: buf[7*m : 8*m],
	}
}

// collocate writes the Simpson residual of one interval into res
func (w *workspace) collocate(p Problem, x0, h float64, yi, yj, res []float64) {
	p.Func(x0, yi, w.fi)
	p.Func(x0+h, yj, w.fj)
	for k := range w.ym {
		w.ym[k] = (yi[k]+yj[k])/2 - h/8*(w.fj[k]-w.fi[k])
	}
	p.Func(x0+h/2, w.ym, w.fm)
	for k := range res {
		res[k] = yj[k] - yi[k] - h/6*(w.fi[k]+4*w.fm[k]+w.fj[k])
	}
}

// residuals estimates, per interval, the RMS of (S' - f(x, S))/(1 + |f|) for
// the Hermite interpolant S, by 5-point Lobatto quadrature (end terms vanish).
func (w *workspace) residuals(p Problem, mesh, y []float64) []float64 {
	m := p.Dim
	s := 0.5 * math.Sqrt(3.0/7)
	nodes := [3]float64{0.5, 0.5 - s, 0.5 + s}
	weights := [3]float64{32.0 / 45, 49.0 / 90, 49.0 / 90}

	rms := make([]float64, len(mesh)-1)
	for i := range rms {
		x0, h := mesh[i], mesh[i+1]-mesh[i]
		yi, yj := y[i*m:(i+1)*m], y[(i+1)*m:(i+2)*m]
		p.Func(x0, yi, w.fi)
		p.Func(x0+h, yj, w.fj)

		var sum float64
		for q, t := range nodes {
			hermite(t, h, yi, yj, w.fi, w.fj, w.s, w.ds)
			p.Func(x0+t*h, w.s, w.fx)
			for k := 0; k < m; k++ {
				r := (w.ds[k] - w.fx[k]) / (1 + math.Abs(w.fx[k]))
				sum += weights[q] * r * r
			}
		}
		rms[i] = math.Sqrt(0.5 * sum)
	}
	return rms
}

func (w *workspace) boundaryError(p Problem, y []float64) float64 {
	m, nl := p.Dim, p.NumLeft
	var worst float64
	if nl > 0 {
		p.Left(y[:m], w.bc[:nl])
		for _, r := range w.bc[:nl] {
			worst = math.Max(worst, math.Abs(r))
		}
	}
	if nl < m {
		p.Right(y[len(y)-m:], w.bc[:m-nl])
		for _, r := range w.bc[:m-nl] {
			worst = math.Max(worst, math.Abs(r))
		}
	}
	return worst
}

// refine splits every interval above tol in two, or in three when the
// residual is at least 100*tol. New node values come from the interpolant.
func (w *workspace) refine(p Problem, mesh, y []float64, caller []bool, rms []float64,
	tol float64) ([]float64, []float64, []bool) {
	m := p.Dim
	nMesh := make([]float64, 0, 2*len(mesh))
	nY := make([]float64, 0, 2*len(y))
	nCaller := make([]bool, 0, 2*len(mesh))

	for i := 0; i < len(mesh)-1; i++ {
		nMesh = append(nMesh, mesh[i])
		nY = append(nY, y[i*m:(i+1)*m]...)
		nCaller = append(nCaller, caller[i])
		if rms[i] <= tol {
			continue
		}
		parts := 2
		if rms[i] >= 100*tol {
			parts = 3
		}
		x0, h := mesh[i], mesh[i+1]-mesh[i]
		yi, yj := y[i*m:(i+1)*m], y[(i+1)*m:(i+2)*m]
		p.Func(x0, yi, w.fi)
		p.Func(x0+h, yj, w.fj)
		for q := 1; q < parts; q++ {
			t := float64(q) / float64(parts)
			hermite(t, h, yi, yj, w.fi, w.fj, w.s, w.ds)
			nMesh = append(nMesh, x0+t*h)
			nY = append(nY, w.s...)
			nCaller = append(nCaller, false)
		}
	}
	last := len(mesh) - 1
	nMesh = append(nMesh, mesh[last])
	nY = append(nY, y[last*m:]...)
	nCaller = append(nCaller, caller[last])
	return nMesh, nY, nCaller
}

// hermite evaluates the cubic Hermite interpolant and its derivative at the
// fraction t of an interval of width h.
func hermite(t, h float64, y0, y1, f0, f1, s, ds []float64) {
	t2, t3 := t*t, t*t*t
	h00, h10 := 2*t3-3*t2+1, t3-2*t2+t
	h01, h11 := -2*t3+3*t2, t3-t2
	d00, d10 := 6*t2-6*t, 3*t2-4*t+1
	d01, d11 := -6*t2+6*t, 3*t2-2*t
	for k := range s {
		s[k] = h00*y0[k] + h*h10*f0[k] + h01*y1[k] + h*h11*f1[k]
		ds[k] = (d00*y0[k]+d01*y1[k])/h + d10*f0[k] + d11*f1[k]
	}
}

func newSolution(m int, mesh, y []float64, caller []bool, residual float64, iterations int) *Solution {
	N := len(mesh)
	Y := mat.NewDense(m, N, nil)
	index := make([]int, 0, N)
	for i := 0; i < N; i++ {
		for k := 0; k < m; k++ {
			Y.Set(k, i, y[i*m+k])
		}
		if caller[i] {
			index = append(index, i)
		}
	}
	return &Solution{
		X:          mesh,
		Y:          Y,
		Index:      index,
		Residual:   residual,
		Iterations: iterations,
	}
}
