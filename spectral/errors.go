package spectral

import "errors"

// Sentinel errors. Every error returned by the engine wraps one of these
// together with the nmax, angular frequency, frequency index or mode order
// that failed; match them with errors.Is.
var (
	// ErrDomain: the prefactor is undefined at zero total admittance
	// (omega = 0 and faradaic = 0).
	ErrDomain = errors.New("spectral: undefined prefactor at zero total admittance")

	// ErrSingularSystem: (C + M) is singular or ill-conditioned.
	ErrSingularSystem = errors.New("spectral: singular or ill-conditioned modal system")

	// ErrConvergence: the generalized Legendre boundary value solve failed.
	ErrConvergence = errors.New("spectral: boundary value solve did not converge")

	// ErrRangeOverflow: the factorial scale factors overflow float64.
	ErrRangeOverflow = errors.New("spectral: mode scale factor overflows float64")

	// ErrInvalidInput: non-physical parameters, empty grids or bad mode counts.
	ErrInvalidInput = errors.New("spectral: invalid input")
)
