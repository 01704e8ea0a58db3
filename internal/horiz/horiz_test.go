package horiz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultProfile(t *testing.T) {
	res, err := Validate(Params{T: 1e12, C: 0.25, Kappa: 2.0})
	require.NoError(t, err)

	// At T = 1e12 the envelope is dominated by the log|s| term, about
	// log(1e12) ~ 27.6, so the refined bound is roughly h * 27.6.
	assert.InDelta(t, math.Log(1e12), res.MaxDerivative, 0.1)
	assert.InDelta(t, res.H*res.MaxDerivative, res.RefinedBound, 1e-12)
	assert.Less(t, res.RefinedBound, math.Pi/2)
	assert.True(t, res.OK)
	assert.InDelta(t, res.RefinedBound/math.Pi, res.BoundOverPi, 1e-15)
	assert.InDelta(t, res.MaxDerivative*1e12, res.CHoriz, 1e-3*res.CHoriz)
}

func TestBoundShrinksWithHeight(t *testing.T) {
	results, err := ValidateHeights(DefaultHeights(), 0.25, 2.0)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i].RefinedBound, results[i-1].RefinedBound,
			"bound should shrink from T=%g to T=%g", results[i-1].T, results[i].T)
		assert.True(t, results[i].OK)
	}
}

func TestPhaseDerivBoundRegimes(t *testing.T) {
	const tHeight = 1e12

	// Dirichlet regime decays like 2/sigma^2.
	assert.InDelta(t, 0.5, phaseDerivBound(2.0, tHeight), 1e-12)
	assert.InDelta(t, 2.0/(1.6*1.6), phaseDerivBound(1.6, tHeight), 1e-12)

	// Reflection regime tracks log|s|.
	assert.InDelta(t, math.Log(tHeight), phaseDerivBound(0.6, tHeight), 0.01)

	// Blend is continuous-ish: between the regime values at 1.1.
	mid := phaseDerivBound(1.1, tHeight)
	assert.Greater(t, mid, phaseDerivBound(1.6, tHeight))
	assert.Less(t, mid, phaseDerivBound(0.6, tHeight))
}

func TestStirlingSmallArgumentFallback(t *testing.T) {
	assert.InDelta(t, math.Log(5), stirlingLogGammaDeriv(3, 4), 1e-12)
	big := stirlingLogGammaDeriv(0, 1e6)
	assert.InDelta(t, math.Log(1e6), big, 1e-6)
}

func TestValidateRejectsBadParams(t *testing.T) {
	cases := []Params{
		{T: 0.5, C: 0.25, Kappa: 2},
		{T: math.Inf(1), C: 0.25, Kappa: 2},
		{T: 1e12, C: 0, Kappa: 2},
		{T: 1e12, C: 0.25, Kappa: -1},
		{T: 3, C: 0.25, Kappa: 5}, // delta too wide for the strip
		{T: 1e12, C: 0.25, Kappa: 2, SigmaSamples: 1},
	}
	for _, p := range cases {
		_, err := Validate(p)
		assert.ErrorIs(t, err, ErrParameter, "params %+v", p)
	}
}
