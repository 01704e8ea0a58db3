package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/rightedge"
	"github.com/specator-tlca/RN/internal/strip"
)

func cRight(t *testing.T, ctx interval.Context) interval.Bound {
	t.Helper()
	res, err := rightedge.Compute(ctx, 100000)
	require.NoError(t, err)
	return res.Bound
}

func TestComputeTunedProfile(t *testing.T) {
	ctx := interval.MustContext(96)
	_, cThin, err := strip.CThinStar(ctx, strip.ExponentCurrent, 0.10)
	require.NoError(t, err)

	res, err := Compute(ctx, Profile{C: 0.35, Kappa: 0.8, R0: 0.10}, cRight(t, ctx), cThin)
	require.NoError(t, err)

	assert.InDelta(t, 3.90, res.LogT0Upper, 0.01)
	assert.InDelta(t, math.Exp(res.LogT0Upper), res.T0Upper, 1e-6*res.T0Upper)
	assert.True(t, res.Covered())
	assert.Greater(t, res.SafetyFactor, 1e10)
}

func TestComputePaperDefaults(t *testing.T) {
	ctx := interval.MustContext(96)
	_, cThin, err := strip.CThinStar(ctx, strip.ExponentCurrent, 0.125)
	require.NoError(t, err)

	res, err := Compute(ctx, Profile{C: 0.25, Kappa: 2.0, R0: 0.125}, cRight(t, ctx), cThin)
	require.NoError(t, err)

	// log T0 = (2*0.25/pi) * (C_right + 2*18.536...)
	assert.InDelta(t, 5.99, res.LogT0Upper, 0.02)
	assert.True(t, res.Covered())
}

func TestLogT0EnclosureSpansConstantUncertainty(t *testing.T) {
	ctx := interval.MustContext(96)
	// A small cutoff leaves a wide right-edge tail, so the threshold
	// enclosure must open up accordingly rather than collapse onto the
	// worst-case endpoint.
	re, err := rightedge.Compute(ctx, 1000)
	require.NoError(t, err)
	_, cThin, err := strip.CThinStar(ctx, strip.ExponentCurrent, 0.10)
	require.NoError(t, err)

	prof := Profile{C: 0.35, Kappa: 0.8, R0: 0.10}
	res, err := Compute(ctx, prof, re.Bound, cThin)
	require.NoError(t, err)

	assert.Positive(t, res.LogT0.WidthFloat64())
	assert.InDelta(t, res.LogT0Upper, res.LogT0.UpperFloat64(), 1e-15)

	mid := (2 * prof.C / math.Pi) * (re.Bound.MidFloat64() + prof.Kappa*cThin.MidFloat64())
	assert.True(t, res.LogT0.ContainsFloat64(mid))
	assert.True(t, res.T0.ContainsFloat64(math.Exp(mid)))
}

func TestBoundAtThresholdIsHalfPi(t *testing.T) {
	ctx := interval.MustContext(96)
	_, cThin, err := strip.CThinStar(ctx, strip.ExponentBourgain, 0.2)
	require.NoError(t, err)

	res, err := Compute(ctx, Profile{C: 0.4, Kappa: 1.5, R0: 0.2}, cRight(t, ctx), cThin)
	require.NoError(t, err)

	assert.InDelta(t, math.Pi/2, res.BoundAtT0, 1e-9)
	assert.InDelta(t, 0.5, res.BoundOverPi, 1e-9)
	assert.InDelta(t, res.Profile.C/res.LogT0Upper, res.HAtT0, 1e-15)
}

func TestThresholdGrowsWithKappa(t *testing.T) {
	ctx := interval.MustContext(96)
	cr := cRight(t, ctx)
	_, cThin, err := strip.CThinStar(ctx, strip.ExponentCurrent, 0.125)
	require.NoError(t, err)

	small, err := Compute(ctx, Profile{C: 0.25, Kappa: 0.5, R0: 0.125}, cr, cThin)
	require.NoError(t, err)
	large, err := Compute(ctx, Profile{C: 0.25, Kappa: 4.0, R0: 0.125}, cr, cThin)
	require.NoError(t, err)
	assert.Less(t, small.LogT0Upper, large.LogT0Upper)
}

func TestComputeRejectsBadProfiles(t *testing.T) {
	ctx := interval.MustContext(96)
	cr := cRight(t, ctx)
	_, cThin, err := strip.CThinStar(ctx, strip.ExponentCurrent, 0.125)
	require.NoError(t, err)

	for _, prof := range []Profile{
		{C: 0, Kappa: 2, R0: 0.125},
		{C: -0.25, Kappa: 2, R0: 0.125},
		{C: 0.25, Kappa: 0, R0: 0.125},
		{C: 0.25, Kappa: 2, R0: -1},
		{C: math.Inf(1), Kappa: 2, R0: 0.125},
		{C: 0.25, Kappa: math.NaN(), R0: 0.125},
	} {
		_, err := Compute(ctx, prof, cr, cThin)
		assert.ErrorIs(t, err, ErrParameter, "profile %+v", prof)
	}
}
