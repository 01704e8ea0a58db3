package interval

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctx96(t *testing.T) Context {
	t.Helper()
	ctx, err := NewContext(96)
	require.NoError(t, err)
	return ctx
}

// assertEncloses checks that the bound contains want up to float64
// representation error: want is a double approximation of the true
// value, which may sit a few 1e-16 outside an extremely tight bound.
func assertEncloses(t *testing.T, b Bound, want float64) {
	t.Helper()
	tol := 1e-12 * math.Max(1, math.Abs(want))
	assert.LessOrEqual(t, b.LowerFloat64(), want+tol, "bound %v entirely above %v", b, want)
	assert.GreaterOrEqual(t, b.UpperFloat64(), want-tol, "bound %v entirely below %v", b, want)
}

func TestNewContextRejectsTinyPrecision(t *testing.T) {
	_, err := NewContext(0)
	assert.ErrorIs(t, err, ErrPrecision)
	_, err = NewContext(8)
	assert.ErrorIs(t, err, ErrPrecision)
}

func TestFromFloat64RejectsNonFinite(t *testing.T) {
	ctx := ctx96(t)
	_, err := ctx.FromFloat64(math.NaN())
	assert.ErrorIs(t, err, ErrDomain)
	_, err = ctx.FromFloat64(math.Inf(1))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestDegenerateScalarPromotion(t *testing.T) {
	ctx := ctx96(t)
	b, err := ctx.FromFloat64(0.125)
	require.NoError(t, err)
	assert.Zero(t, b.WidthFloat64())
	assert.True(t, b.ContainsFloat64(0.125))
}

func TestFromRatEnclosesValue(t *testing.T) {
	ctx := ctx96(t)
	b, err := ctx.FromRat(27, 164)
	require.NoError(t, err)
	assertEncloses(t, b, 27.0/164.0)
	assert.Less(t, b.WidthFloat64(), 1e-25)

	_, err = ctx.FromRat(1, 0)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestAddSubContainment(t *testing.T) {
	ctx := ctx96(t)
	third, err := ctx.FromRat(1, 3)
	require.NoError(t, err)
	sixth, err := ctx.FromRat(1, 6)
	require.NoError(t, err)

	sum := third.Add(sixth)
	assert.True(t, sum.ContainsFloat64(0.5)) // 1/2 is a binary fraction

	diff := third.Sub(sixth)
	assertEncloses(t, diff, 1.0/6.0)
}

func TestMulSignCases(t *testing.T) {
	ctx := ctx96(t)
	a, _ := ctx.FromFloat64(-2)
	b, _ := ctx.FromFloat64(3)
	neg := Hull(a, b) // [-2, 3]
	c, _ := ctx.FromFloat64(-5)
	d, _ := ctx.FromFloat64(7)
	wide := Hull(c, d) // [-5, 7]

	p := neg.Mul(wide)
	// Endpoint products: extrema are 3*-5 = -15 and 3*7 = 21.
	assert.True(t, p.ContainsFloat64(-15))
	assert.True(t, p.ContainsFloat64(21))
	assert.True(t, p.ContainsFloat64(0))
	assert.Equal(t, -15.0, p.LowerFloat64())
	assert.Equal(t, 21.0, p.UpperFloat64())
}

func TestDivByZeroSpanFails(t *testing.T) {
	ctx := ctx96(t)
	a := ctx.FromInt64(1)
	lo, _ := ctx.FromFloat64(-1)
	hi, _ := ctx.FromFloat64(1)
	_, err := a.Div(Hull(lo, hi))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestDivContainment(t *testing.T) {
	ctx := ctx96(t)
	one := ctx.FromInt64(1)
	three := ctx.FromInt64(3)
	q, err := one.Div(three)
	require.NoError(t, err)
	assertEncloses(t, q, 1.0/3.0)
	assert.Positive(t, q.WidthFloat64()) // 1/3 is not representable exactly
	assert.Less(t, q.WidthFloat64(), 1e-27)
}

func TestLogEnclosesKnownValues(t *testing.T) {
	ctx := ctx96(t)
	for _, tc := range []struct {
		arg  int64
		want float64
	}{
		{2, math.Ln2},
		{3, 1.0986122886681098},
		{10, 2.302585092994046},
		{1000000, 13.815510557964274},
	} {
		b, err := ctx.Log(ctx.FromInt64(tc.arg))
		require.NoError(t, err)
		assertEncloses(t, b, tc.want)
		assert.Less(t, b.WidthFloat64(), 1e-25)
	}
}

func TestLogOfOneStraddlesZero(t *testing.T) {
	ctx := ctx96(t)
	b, err := ctx.Log(ctx.FromInt64(1))
	require.NoError(t, err)
	assert.True(t, b.ContainsFloat64(0))
	assert.Less(t, b.WidthFloat64(), 1e-25)
}

func TestLogRejectsNonPositive(t *testing.T) {
	ctx := ctx96(t)
	_, err := ctx.Log(ctx.FromInt64(0))
	assert.ErrorIs(t, err, ErrDomain)
	_, err = ctx.Log(ctx.FromInt64(-3))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestExpEnclosesKnownValues(t *testing.T) {
	ctx := ctx96(t)
	assertEncloses(t, ctx.Exp(ctx.FromInt64(1)), math.E)
	assertEncloses(t, ctx.Exp(ctx.FromInt64(-1)), 1/math.E)

	six, _ := ctx.FromFloat64(6.03)
	assertEncloses(t, ctx.Exp(six), math.Exp(6.03))
}

func TestExpLogRoundTrip(t *testing.T) {
	ctx := ctx96(t)
	// 3.9 enters exactly as a double; the true value of log(exp(3.9))
	// is that same number, so containment is exact here.
	x, _ := ctx.FromFloat64(3.9)
	l, err := ctx.Log(ctx.Exp(x))
	require.NoError(t, err)
	assert.True(t, l.ContainsFloat64(3.9))
}

func TestPiEnclosure(t *testing.T) {
	ctx := ctx96(t)
	pi := ctx.Pi()
	assertEncloses(t, pi, math.Pi)
	assert.Less(t, pi.WidthFloat64(), 1e-25)
}

func TestHigherPrecisionTightensLog(t *testing.T) {
	coarse := MustContext(64)
	fine := MustContext(256)
	b1, err := coarse.Log(coarse.FromInt64(7))
	require.NoError(t, err)
	b2, err := fine.Log(fine.FromInt64(7))
	require.NoError(t, err)
	assert.Less(t, b2.WidthFloat64(), b1.WidthFloat64())
}

func TestMixedPrecisionPanics(t *testing.T) {
	a := MustContext(64).FromInt64(1)
	b := MustContext(128).FromInt64(1)
	assert.Panics(t, func() { a.Add(b) })
}

func TestEncloseRejectsInvertedEndpoints(t *testing.T) {
	ctx := ctx96(t)
	_, err := ctx.Enclose(big.NewFloat(2), big.NewFloat(1))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestEndpointProjectionsAreDegenerate(t *testing.T) {
	ctx := ctx96(t)
	lo, _ := ctx.FromFloat64(1)
	hi, _ := ctx.FromFloat64(2)
	b := Hull(lo, hi)

	up := b.UpperPoint()
	assert.Zero(t, up.WidthFloat64())
	assert.True(t, up.ContainsFloat64(2))

	low := b.LowerPoint()
	assert.Zero(t, low.WidthFloat64())
	assert.True(t, low.ContainsFloat64(1))
	assert.Equal(t, -1, low.Cmp(up))
}

func TestHullAndCmp(t *testing.T) {
	ctx := ctx96(t)
	a := ctx.FromInt64(1)
	b := ctx.FromInt64(5)
	h := Hull(a, b)
	assert.True(t, h.ContainsFloat64(3))
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, h.Cmp(a))
	assert.Equal(t, 1, b.Sign())
	assert.Equal(t, -1, b.Neg().Sign())
}
