package optimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/rightedge"
	"github.com/specator-tlca/RN/internal/strip"
	"github.com/specator-tlca/RN/internal/threshold"
)

func TestRangeValues(t *testing.T) {
	vals := Range{Min: 0.1, Max: 0.3, Steps: 5}.Values()
	require.Len(t, vals, 5)
	assert.Equal(t, 0.1, vals[0])
	assert.Equal(t, 0.3, vals[4])
	assert.InDelta(t, 0.2, vals[2], 1e-15)

	assert.Equal(t, []float64{0.25}, Range{Min: 0.25, Max: 0.45, Steps: 1}.Values())
	assert.Equal(t, []float64{0.25}, Range{Min: 0.25}.Values())
}

func TestEvaluateMatchesComponents(t *testing.T) {
	ctx := interval.MustContext(96)
	re, err := rightedge.Compute(ctx, 10000)
	require.NoError(t, err)

	prof := threshold.Profile{C: 0.35, Kappa: 0.8, R0: 0.10}
	rec, err := Evaluate(ctx, re.Bound, prof, Options{Model: strip.ModelRealistic, MinMargin: 30})
	require.NoError(t, err)
	assert.InDelta(t, 44.5, rec.MarginPct, 0.2)
	assert.InDelta(t, 3.90, rec.LogT0, 0.01)
	assert.True(t, rec.Feasible)

	rec, err = Evaluate(ctx, re.Bound, prof, Options{Model: strip.ModelRealistic, MinMargin: 50})
	require.NoError(t, err)
	assert.False(t, rec.Feasible)
}

func TestSearchFindsFeasibleProfile(t *testing.T) {
	grid := Grid{
		R0:    Range{Min: 0.05, Max: 0.15, Steps: 3},
		C:     Range{Min: 0.25, Max: 0.45, Steps: 3},
		Kappa: Range{Min: 0.5, Max: 1.5, Steps: 3},
	}
	out, err := Search(context.Background(), grid, Options{
		Cutoff:    10000,
		MinMargin: 30,
		Model:     strip.ModelRealistic,
	})
	require.NoError(t, err)

	assert.Equal(t, strip.StatusPass, out.Status)
	require.NotNil(t, out.Best)
	assert.Len(t, out.Records, 27)
	assert.Positive(t, out.Feasible)
	assert.GreaterOrEqual(t, out.Best.MarginPct, 30.0)
	assert.Same(t, out.Best, out.Chosen())

	// Best really is minimal over the feasible set.
	for _, rec := range out.Records {
		if rec.Feasible {
			assert.LessOrEqual(t, out.Best.LogT0, rec.LogT0)
		}
	}
}

func TestSearchInfeasibleReportsClosestMiss(t *testing.T) {
	grid := Grid{
		R0:    Range{Min: 0.1, Max: 0.15, Steps: 2},
		C:     Range{Min: 0.25, Max: 0.35, Steps: 2},
		Kappa: Range{Min: 0.5, Max: 1.0, Steps: 2},
	}
	out, err := Search(context.Background(), grid, Options{
		Cutoff:    10000,
		MinMargin: 99.9,
		Model:     strip.ModelRealistic,
	})
	require.NoError(t, err)

	assert.Equal(t, strip.StatusFail, out.Status)
	assert.Nil(t, out.Best)
	require.NotNil(t, out.Fallback)
	assert.Same(t, out.Fallback, out.Chosen())
	assert.Zero(t, out.Feasible)

	for _, rec := range out.Records {
		assert.GreaterOrEqual(t, out.Fallback.MarginPct, rec.MarginPct)
	}
}

func TestSearchDeterministicAcrossWorkerCounts(t *testing.T) {
	grid := Grid{
		R0:    Range{Min: 0.05, Max: 0.25, Steps: 3},
		C:     Range{Min: 0.2, Max: 0.4, Steps: 3},
		Kappa: Range{Min: 0.5, Max: 2.0, Steps: 3},
	}
	opts := Options{Cutoff: 10000, MinMargin: 20, Model: strip.ModelRealistic}

	opts.Parallelism = 1
	serial, err := Search(context.Background(), grid, opts)
	require.NoError(t, err)
	opts.Parallelism = 8
	parallel, err := Search(context.Background(), grid, opts)
	require.NoError(t, err)

	assert.Equal(t, serial.Records, parallel.Records)
	require.NotNil(t, serial.Best)
	require.NotNil(t, parallel.Best)
	assert.Equal(t, *serial.Best, *parallel.Best)
}

func TestSearchSkipsInadmissibleRadii(t *testing.T) {
	// R0 values at and above the 2/3 ceiling are skipped, not fatal.
	grid := Grid{
		R0:    Range{Min: 0.5, Max: 0.9, Steps: 3},
		C:     Range{Min: 0.25, Steps: 1},
		Kappa: Range{Min: 2.0, Steps: 1},
	}
	out, err := Search(context.Background(), grid, Options{Cutoff: 200, Model: strip.ModelToy})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Skipped)
	assert.Len(t, out.Records, 1)
}

func TestSearchReusesProvidedEnclosure(t *testing.T) {
	grid := Grid{
		R0:    Range{Min: 0.05, Max: 0.15, Steps: 2},
		C:     Range{Min: 0.25, Max: 0.45, Steps: 2},
		Kappa: Range{Min: 0.5, Max: 1.5, Steps: 2},
	}
	opts := Options{Cutoff: 10000, MinMargin: 20, Model: strip.ModelRealistic}

	fresh, err := Search(context.Background(), grid, opts)
	require.NoError(t, err)

	ctx := interval.MustContext(96)
	re, err := rightedge.Compute(ctx, 10000)
	require.NoError(t, err)
	opts.CRight = &re.Bound
	reused, err := Search(context.Background(), grid, opts)
	require.NoError(t, err)

	assert.Equal(t, fresh.Records, reused.Records)
	require.NotNil(t, reused.Best)
	assert.Equal(t, *fresh.Best, *reused.Best)
}

func TestSearchRejectsMismatchedEnclosurePrecision(t *testing.T) {
	ctx := interval.MustContext(128)
	re, err := rightedge.Compute(ctx, 1000)
	require.NoError(t, err)

	_, err = Search(context.Background(), DefaultGrid(), Options{
		Precision: 96,
		Cutoff:    1000,
		CRight:    &re.Bound,
	})
	assert.ErrorIs(t, err, ErrPrecisionMismatch)
}

func TestSearchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, DefaultGrid(), Options{Cutoff: 10000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBetterIsTotalOverDistinctProfiles(t *testing.T) {
	a := Record{Profile: threshold.Profile{C: 0.25, Kappa: 2, R0: 0.1}, LogT0: 5.0}
	b := Record{Profile: threshold.Profile{C: 0.25, Kappa: 2, R0: 0.2}, LogT0: 5.0}
	assert.True(t, better(a, b)) // smaller R0 wins the tie
	assert.False(t, better(b, a))

	c := Record{Profile: threshold.Profile{C: 0.25, Kappa: 3, R0: 0.2}, LogT0: 5.0}
	assert.True(t, better(b, c)) // then smaller kappa

	d := Record{Profile: threshold.Profile{C: 0.30, Kappa: 2, R0: 0.2}, LogT0: 4.0}
	assert.True(t, better(d, a)) // threshold dominates everything
}

func TestCompareProfilesTable(t *testing.T) {
	ctx := interval.MustContext(96)
	re, err := rightedge.Compute(ctx, 10000)
	require.NoError(t, err)

	recs, err := CompareProfiles(ctx, re.Bound, DefaultComparison(), Options{Model: strip.ModelRealistic})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Paper default", recs[0].Name)
	assert.InDelta(t, 5.6, recs[0].MarginPct, 0.3)
	assert.Equal(t, "Optimized", recs[1].Name)
	assert.InDelta(t, 44.5, recs[1].MarginPct, 0.2)
	assert.Less(t, recs[1].LogT0, recs[0].LogT0)

	lit, err := CompareProfiles(ctx, re.Bound, LiteratureSets(), Options{Model: strip.ModelRealistic})
	require.NoError(t, err)
	require.Len(t, lit, 5)
	// Bourgain's sharper exponent lowers the threshold of the same
	// profile.
	assert.Equal(t, "With Bourgain", lit[4].Name)
	assert.Less(t, lit[4].LogT0, lit[0].LogT0)
}

func TestCompareExponentsOrdering(t *testing.T) {
	ctx := interval.MustContext(96)
	re, err := rightedge.Compute(ctx, 10000)
	require.NoError(t, err)

	recs, err := CompareExponents(ctx, re.Bound, threshold.Profile{C: 0.25, Kappa: 2.0, R0: 0.125}, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 4)

	// Sharper exponents lower C_thin and with it the threshold.
	assert.Equal(t, "current", recs[0].Name)
	assert.Equal(t, "hypothetical", recs[3].Name)
	for i := 1; i < len(recs); i++ {
		assert.Less(t, recs[i].Theta, recs[i-1].Theta)
		assert.Less(t, recs[i].CThin, recs[i-1].CThin)
		assert.Less(t, recs[i].LogT0, recs[i-1].LogT0)
	}
	assert.InDelta(t, 16.0, recs[3].CThin, 1e-9)
}
