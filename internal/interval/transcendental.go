package interval

import (
	"fmt"
	"math/big"
	"sync"
)

// The transcendental kernels evaluate at prec+guardBits with
// round-to-nearest, then round the result outward and step it two ulps
// further in the rounding direction. The series remainders are kept
// below 2^-(prec+guardBits/2), so the two-ulp step at target precision
// strictly dominates the true error.

func (c Context) checkBound(a Bound) {
	c.checkInit()
	if a.prec != c.prec {
		panic(fmt.Sprintf("interval: bound precision %d does not match context %d", a.prec, c.prec))
	}
}

// Log returns a Bound containing the natural logarithm of a.
// The operand must be strictly positive.
func (c Context) Log(a Bound) (Bound, error) {
	c.checkBound(a)
	if a.lo.Sign() <= 0 {
		return Bound{}, fmt.Errorf("%w: log of non-positive bound %v", ErrDomain, a)
	}
	work := c.prec + guardBits
	lo := widen(lnApprox(a.lo, work), c.prec, -1)
	hi := widen(lnApprox(a.hi, work), c.prec, +1)
	return Bound{lo: lo, hi: hi, prec: c.prec}, nil
}

// Exp returns a Bound containing e**a.
func (c Context) Exp(a Bound) Bound {
	c.checkBound(a)
	lo := widen(expApprox(a.lo, c.prec), c.prec, -1)
	hi := widen(expApprox(a.hi, c.prec), c.prec, +1)
	return Bound{lo: lo, hi: hi, prec: c.prec}
}

// Pi returns a Bound containing pi, via Machin's formula.
func (c Context) Pi() Bound {
	c.checkInit()
	work := c.prec + guardBits
	a5 := atanInv(5, work)
	a239 := atanInv(239, work)
	p := new(big.Float).SetPrec(work)
	p.Sub(mulInt64(a5, 16, work), mulInt64(a239, 4, work))
	lo := widen(p, c.prec, -1)
	hi := widen(p, c.prec, +1)
	return Bound{lo: lo, hi: hi, prec: c.prec}
}

// widen rounds x to prec in the given direction and steps two ulps
// further out, absorbing the kernel's approximation error.
func widen(x *big.Float, prec uint, dir int) *big.Float {
	var r *big.Float
	if dir < 0 {
		r = dn(prec).Set(x)
	} else {
		r = up(prec).Set(x)
	}
	e := -int(prec)
	if r.Sign() != 0 {
		e = r.MantExp(nil) - int(prec)
	}
	eps := new(big.Float).SetMantExp(big.NewFloat(1), e+1)
	if dir < 0 {
		r.Sub(r, eps)
	} else {
		r.Add(r, eps)
	}
	return r
}

var ln2Cache sync.Map // work prec -> *big.Float

// ln2 returns ln 2 = 2*atanh(1/3) at the given working precision.
func ln2(work uint) *big.Float {
	if v, ok := ln2Cache.Load(work); ok {
		return v.(*big.Float)
	}
	third := new(big.Float).SetPrec(work).Quo(big.NewFloat(1), big.NewFloat(3))
	v := atanhSeries(third, work)
	ln2Cache.Store(work, v)
	return v
}

// lnApprox returns ln x to within a few ulps at working precision.
// Argument reduction: x = m * 2^e with m in [0.5, 1), so
// ln x = e*ln2 + 2*atanh((m-1)/(m+1)) with |(m-1)/(m+1)| <= 1/3.
func lnApprox(x *big.Float, work uint) *big.Float {
	mant := new(big.Float)
	exp := x.MantExp(mant)
	m := new(big.Float).SetPrec(work).Set(mant)

	one := big.NewFloat(1)
	num := new(big.Float).SetPrec(work).Sub(m, one)
	den := new(big.Float).SetPrec(work).Add(m, one)
	z := new(big.Float).SetPrec(work).Quo(num, den)
	lnm := atanhSeries(z, work)

	res := mulInt64(ln2(work), int64(exp), work)
	return res.Add(res, lnm)
}

// atanhSeries returns 2*atanh(z) for |z| <= 1/3.
func atanhSeries(z *big.Float, work uint) *big.Float {
	sum := new(big.Float).SetPrec(work)
	if z.Sign() == 0 {
		return sum
	}
	zz := new(big.Float).SetPrec(work).Mul(z, z)
	term := new(big.Float).SetPrec(work).Set(z)
	tmp := new(big.Float).SetPrec(work)
	sum.Set(z)
	for k := int64(3); ; k += 2 {
		term.Mul(term, zz)
		tmp.Quo(term, new(big.Float).SetInt64(k))
		sum.Add(sum, tmp)
		if term.MantExp(nil) < -int(work)-8 {
			break
		}
	}
	return sum.Add(sum, sum)
}

// atanInv returns atan(1/q) by the alternating Gregory series.
func atanInv(q int64, work uint) *big.Float {
	z := new(big.Float).SetPrec(work).Quo(big.NewFloat(1), new(big.Float).SetInt64(q))
	zz := new(big.Float).SetPrec(work).Mul(z, z)
	term := new(big.Float).SetPrec(work).Set(z)
	sum := new(big.Float).SetPrec(work).Set(z)
	tmp := new(big.Float).SetPrec(work)
	neg := true
	for k := int64(3); ; k += 2 {
		term.Mul(term, zz)
		tmp.Quo(term, new(big.Float).SetInt64(k))
		if neg {
			sum.Sub(sum, tmp)
		} else {
			sum.Add(sum, tmp)
		}
		neg = !neg
		if term.MantExp(nil) < -int(work)-8 {
			break
		}
	}
	return sum
}

// expApprox returns e**x to within a few ulps at target precision.
// Reduction: r = x / 2^k with |r| <= 1/4, then the Taylor series and
// k repeated squarings. The working precision grows with k so the
// squaring error stays under the final widening.
func expApprox(x *big.Float, prec uint) *big.Float {
	k := 0
	if x.Sign() != 0 {
		if e := x.MantExp(nil); e > -2 {
			k = e + 2
		}
	}
	work := prec + guardBits + uint(2*k)

	r := new(big.Float).SetPrec(work).Set(x)
	if k > 0 {
		pow2 := new(big.Float).SetMantExp(big.NewFloat(1), k)
		r.Quo(r, pow2)
	}

	term := new(big.Float).SetPrec(work).SetInt64(1)
	sum := new(big.Float).SetPrec(work).SetInt64(1)
	tmp := new(big.Float).SetPrec(work)
	for n := int64(1); ; n++ {
		tmp.Quo(r, new(big.Float).SetInt64(n))
		term.Mul(term, tmp)
		sum.Add(sum, term)
		if term.Sign() == 0 || term.MantExp(nil) < -int(work)-8 {
			break
		}
	}
	for i := 0; i < k; i++ {
		sum.Mul(sum, sum)
	}
	return sum
}

func mulInt64(x *big.Float, n int64, work uint) *big.Float {
	return new(big.Float).SetPrec(work).Mul(x, new(big.Float).SetInt64(n))
}
