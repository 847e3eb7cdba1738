package legendre

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegratorMoments(t *testing.T) {
	in, err := NewIntegrator(1000, Trapezoid)
	require.NoError(t, err)

	// ∫ η dη and ∫ η P_2 dη = 1/8, ∫ η P_4 dη = -1/48
	assert.InDelta(t, 0.5, in.Moment(0), 1e-12)
	assert.InDelta(t, 0.125, in.Moment(1), 1e-5)
	assert.InDelta(t, -1.0/48, in.Moment(2), 1e-5)
	assert.InDelta(t, in.Moment(0), in.Product(0, 0), 1e-15)
}

func TestIntegratorRulesAgree(t *testing.T) {
	trap, err := NewIntegrator(1000, Trapezoid)
	require.NoError(t, err)
	gauss, err := NewIntegrator(40, GaussLegendre)
	require.NoError(t, err)

	for n := 0; n < 10; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			assert.InDelta(t, gauss.Moment(n), trap.Moment(n), 1e-4)
			for m := n; m < 10; m++ {
				assert.InDelta(t, gauss.Product(n, m), trap.Product(n, m), 1e-4)
				assert.InDelta(t, trap.Product(n, m), trap.Product(m, n), 1e-14)
			}
		})
	}
}

func TestIntegratorGaussExact(t *testing.T) {
	gauss, err := NewIntegrator(12, GaussLegendre)
	require.NoError(t, err)
	// η P_2² = (9η⁵ - 6η³ + η)/4
	assert.InDelta(t, 1.0/8, gauss.Product(1, 1), 1e-14)
	assert.InDelta(t, 0.5, gauss.Moment(0), 1e-14)
}

func TestNewIntegratorRejectsBadInput(t *testing.T) {
	_, err := NewIntegrator(1, Trapezoid)
	assert.Error(t, err)
	_, err = NewIntegrator(10, Rule(9))
	assert.Error(t, err)
	assert.Panics(t, func() {
		in, _ := NewIntegrator(10, Trapezoid)
		in.Integrate(make([]float64, 3))
	})
}
