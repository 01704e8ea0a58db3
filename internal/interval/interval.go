// Package interval provides directed-rounding interval arithmetic on
// arbitrary-precision floats. Every quantity is a Bound [lower, upper]
// guaranteed to contain the exact mathematical result: lower endpoints
// are rounded toward negative infinity, upper endpoints toward positive
// infinity. All Bounds are created through a Context carrying the
// working precision in bits; Bounds from different Contexts must not be
// mixed, and the arithmetic methods panic if they are.
package interval

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// MinPrec is the smallest accepted working precision in bits. Below
// this the widening applied after transcendental evaluation would
// swallow the entire mantissa.
const MinPrec = 24

// guardBits is the extra precision carried internally by the
// transcendental kernels before the result is rounded outward.
const guardBits = 64

var (
	// ErrPrecision signals that the requested precision cannot
	// produce a correctly-directed, non-degenerate bound.
	ErrPrecision = errors.New("interval: insufficient precision")

	// ErrDomain signals an operand outside the mathematical domain
	// of the operation (log of a non-positive bound, division by a
	// bound spanning zero, non-finite scalar input).
	ErrDomain = errors.New("interval: operand out of domain")
)

// Context carries the working precision for one computation. The zero
// value is invalid; obtain a Context from NewContext and treat it as
// immutable. Context values are safe for concurrent use.
type Context struct {
	prec uint
}

// NewContext returns a Context with the given precision in bits.
func NewContext(bits uint) (Context, error) {
	if bits < MinPrec {
		return Context{}, fmt.Errorf("%w: %d bits (minimum %d)", ErrPrecision, bits, MinPrec)
	}
	return Context{prec: bits}, nil
}

// MustContext is NewContext for static precisions known to be valid.
func MustContext(bits uint) Context {
	ctx, err := NewContext(bits)
	if err != nil {
		panic(err)
	}
	return ctx
}

// Prec reports the working precision in bits.
func (c Context) Prec() uint { return c.prec }

// Bound is a rigorous [lower, upper] interval with lower <= upper.
// Bounds are immutable value objects; operations return new Bounds.
type Bound struct {
	lo, hi *big.Float
	prec   uint
}

func (c Context) down() *big.Float {
	return new(big.Float).SetPrec(c.prec).SetMode(big.ToNegativeInf)
}

func (c Context) up() *big.Float {
	return new(big.Float).SetPrec(c.prec).SetMode(big.ToPositiveInf)
}

func (c Context) checkInit() {
	if c.prec == 0 {
		panic("interval: use of zero Context")
	}
}

// FromFloat64 promotes a scalar to a degenerate Bound. float64 values
// are binary fractions, so no rounding occurs at or above 53 bits.
func (c Context) FromFloat64(v float64) (Bound, error) {
	c.checkInit()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Bound{}, fmt.Errorf("%w: non-finite scalar %v", ErrDomain, v)
	}
	lo := c.down().SetFloat64(v)
	hi := c.up().SetFloat64(v)
	return Bound{lo: lo, hi: hi, prec: c.prec}, nil
}

// FromInt64 promotes an integer to a degenerate Bound.
func (c Context) FromInt64(v int64) Bound {
	c.checkInit()
	lo := c.down().SetInt64(v)
	hi := c.up().SetInt64(v)
	return Bound{lo: lo, hi: hi, prec: c.prec}
}

// FromRat returns the tightest representable Bound containing num/den.
// Exponent constants like 27/164 enter the computation through here.
func (c Context) FromRat(num, den int64) (Bound, error) {
	c.checkInit()
	if den == 0 {
		return Bound{}, fmt.Errorf("%w: rational with zero denominator", ErrDomain)
	}
	r := new(big.Rat).SetFrac64(num, den)
	lo := c.down().SetRat(r)
	hi := c.up().SetRat(r)
	return Bound{lo: lo, hi: hi, prec: c.prec}, nil
}

// Enclose returns the Bound [lo, hi] after outward rounding.
func (c Context) Enclose(lo, hi *big.Float) (Bound, error) {
	c.checkInit()
	if lo.Cmp(hi) > 0 {
		return Bound{}, fmt.Errorf("%w: lower endpoint above upper", ErrDomain)
	}
	l := c.down().Set(lo)
	h := c.up().Set(hi)
	return Bound{lo: l, hi: h, prec: c.prec}, nil
}

func (a Bound) check(b Bound) {
	if a.prec == 0 || b.prec == 0 {
		panic("interval: use of zero Bound")
	}
	if a.prec != b.prec {
		panic(fmt.Sprintf("interval: mixed precisions %d and %d", a.prec, b.prec))
	}
}

func dn(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(big.ToNegativeInf)
}

func up(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(big.ToPositiveInf)
}

// Add returns a+b.
func (a Bound) Add(b Bound) Bound {
	a.check(b)
	lo := dn(a.prec).Add(a.lo, b.lo)
	hi := up(a.prec).Add(a.hi, b.hi)
	return Bound{lo: lo, hi: hi, prec: a.prec}
}

// Sub returns a-b.
func (a Bound) Sub(b Bound) Bound {
	a.check(b)
	lo := dn(a.prec).Sub(a.lo, b.hi)
	hi := up(a.prec).Sub(a.hi, b.lo)
	return Bound{lo: lo, hi: hi, prec: a.prec}
}

// Neg returns -a. Negation is exact.
func (a Bound) Neg() Bound {
	a.check(a)
	lo := dn(a.prec).Neg(a.hi)
	hi := up(a.prec).Neg(a.lo)
	return Bound{lo: lo, hi: hi, prec: a.prec}
}

// Mul returns a*b. The endpoints are the outward-rounded extrema over
// the four endpoint products.
func (a Bound) Mul(b Bound) Bound {
	a.check(b)
	lo := minProduct(a, b, big.ToNegativeInf)
	hi := maxProduct(a, b, big.ToPositiveInf)
	return Bound{lo: lo, hi: hi, prec: a.prec}
}

func minProduct(a, b Bound, mode big.RoundingMode) *big.Float {
	var best *big.Float
	for _, x := range []*big.Float{a.lo, a.hi} {
		for _, y := range []*big.Float{b.lo, b.hi} {
			p := new(big.Float).SetPrec(a.prec).SetMode(mode).Mul(x, y)
			if best == nil || p.Cmp(best) < 0 {
				best = p
			}
		}
	}
	return best
}

func maxProduct(a, b Bound, mode big.RoundingMode) *big.Float {
	var best *big.Float
	for _, x := range []*big.Float{a.lo, a.hi} {
		for _, y := range []*big.Float{b.lo, b.hi} {
			p := new(big.Float).SetPrec(a.prec).SetMode(mode).Mul(x, y)
			if best == nil || p.Cmp(best) > 0 {
				best = p
			}
		}
	}
	return best
}

// Div returns a/b. The divisor must not span zero.
func (a Bound) Div(b Bound) (Bound, error) {
	a.check(b)
	if b.lo.Sign() <= 0 && b.hi.Sign() >= 0 {
		return Bound{}, fmt.Errorf("%w: division by bound spanning zero", ErrDomain)
	}
	var lo, hi *big.Float
	for _, x := range []*big.Float{a.lo, a.hi} {
		for _, y := range []*big.Float{b.lo, b.hi} {
			l := new(big.Float).SetPrec(a.prec).SetMode(big.ToNegativeInf).Quo(x, y)
			h := new(big.Float).SetPrec(a.prec).SetMode(big.ToPositiveInf).Quo(x, y)
			if lo == nil || l.Cmp(lo) < 0 {
				lo = l
			}
			if hi == nil || h.Cmp(hi) > 0 {
				hi = h
			}
		}
	}
	return Bound{lo: lo, hi: hi, prec: a.prec}, nil
}

// Hull returns the smallest Bound containing both a and b.
func Hull(a, b Bound) Bound {
	a.check(b)
	lo := a.lo
	if b.lo.Cmp(lo) < 0 {
		lo = b.lo
	}
	hi := a.hi
	if b.hi.Cmp(hi) > 0 {
		hi = b.hi
	}
	l := dn(a.prec).Set(lo)
	h := up(a.prec).Set(hi)
	return Bound{lo: l, hi: h, prec: a.prec}
}

// LowerPoint returns the degenerate Bound at the lower endpoint.
func (a Bound) LowerPoint() Bound {
	a.check(a)
	lo := dn(a.prec).Set(a.lo)
	hi := up(a.prec).Set(a.lo)
	return Bound{lo: lo, hi: hi, prec: a.prec}
}

// UpperPoint returns the degenerate Bound at the upper endpoint.
// Worst-case combinations (threshold formulas) are built from these.
func (a Bound) UpperPoint() Bound {
	a.check(a)
	lo := dn(a.prec).Set(a.hi)
	hi := up(a.prec).Set(a.hi)
	return Bound{lo: lo, hi: hi, prec: a.prec}
}

// Prec returns the precision the bound was built at.
func (a Bound) Prec() uint { return a.prec }

// Lower returns a copy of the lower endpoint.
func (a Bound) Lower() *big.Float { return new(big.Float).Copy(a.lo) }

// Upper returns a copy of the upper endpoint.
func (a Bound) Upper() *big.Float { return new(big.Float).Copy(a.hi) }

// LowerFloat64 returns the lower endpoint rounded down to float64.
func (a Bound) LowerFloat64() float64 {
	f, acc := a.lo.Float64()
	if acc == big.Above {
		f = math.Nextafter(f, math.Inf(-1))
	}
	return f
}

// UpperFloat64 returns the upper endpoint rounded up to float64.
func (a Bound) UpperFloat64() float64 {
	f, acc := a.hi.Float64()
	if acc == big.Below {
		f = math.Nextafter(f, math.Inf(1))
	}
	return f
}

// MidFloat64 returns the midpoint as a float64, for reporting only.
func (a Bound) MidFloat64() float64 {
	m := new(big.Float).SetPrec(a.prec + 1).Add(a.lo, a.hi)
	m.Quo(m, big.NewFloat(2))
	f, _ := m.Float64()
	return f
}

// Width returns an upper bound on hi-lo.
func (a Bound) Width() *big.Float {
	a.check(a)
	return up(a.prec).Sub(a.hi, a.lo)
}

// WidthFloat64 returns Width rounded up to float64.
func (a Bound) WidthFloat64() float64 {
	f, acc := a.Width().Float64()
	if acc == big.Below {
		f = math.Nextafter(f, math.Inf(1))
	}
	return f
}

// ContainsFloat64 reports whether v lies inside the bound.
func (a Bound) ContainsFloat64(v float64) bool {
	x := new(big.Float).SetFloat64(v)
	return a.lo.Cmp(x) <= 0 && a.hi.Cmp(x) >= 0
}

// Contains reports whether x lies inside the bound.
func (a Bound) Contains(x *big.Float) bool {
	return a.lo.Cmp(x) <= 0 && a.hi.Cmp(x) >= 0
}

// Sign reports -1, 0 or +1 when the whole bound is negative, spans
// zero, or is positive.
func (a Bound) Sign() int {
	if a.hi.Sign() < 0 {
		return -1
	}
	if a.lo.Sign() > 0 {
		return 1
	}
	return 0
}

// Cmp compares two bounds: -1 if a is entirely below b, +1 if entirely
// above, 0 if they overlap.
func (a Bound) Cmp(b Bound) int {
	a.check(b)
	if a.hi.Cmp(b.lo) < 0 {
		return -1
	}
	if a.lo.Cmp(b.hi) > 0 {
		return 1
	}
	return 0
}

func (a Bound) String() string {
	digits := int(float64(a.prec)/4) + 1
	return fmt.Sprintf("[%s, %s]", a.lo.Text('g', digits), a.hi.Text('g', digits))
}
