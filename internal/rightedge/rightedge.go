// Package rightedge bounds the right-edge constant
// C_right = -zeta'(2)/zeta(2) = sum_{n>=2} Lambda(n)/n^2.
//
// The von Mangoldt sum is evaluated in its prime-indexed form
//
//	S(P) = sum_{p<=P} log(p) / (p^2 - 1)
//
// which already accounts for every prime power: log(p)/(p^2-1) equals
// the geometric sum of log(p)/p^{2k} over all k >= 1. The truncation
// error is covered by the explicit tail bound (4/3)(log P + 1)/P, so
// the returned interval [S(P), S(P)+tail(P)] contains C_right for
// every admissible P.
package rightedge

import (
	"errors"
	"fmt"
	"math"

	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/sieve"
)

// Reference is a high-precision point value of C_right, used by tests
// and verification reports. Not itself part of any rigorous claim.
const Reference = 0.5699618136104756

// MinCutoff is the smallest prime cutoff for which the closed-form
// tail bound is applied. Below it the computation refuses rather than
// silently returning an unrigorous interval.
const MinCutoff = 100

// ErrCutoffTooSmall reports a cutoff below MinCutoff.
var ErrCutoffTooSmall = errors.New("rightedge: cutoff below tail-bound validity threshold")

// Result carries the certified interval for C_right together with the
// pieces it was assembled from.
type Result struct {
	Cutoff     int
	PrimeCount int
	PartialSum interval.Bound
	Tail       interval.Bound
	Bound      interval.Bound
}

// Compute evaluates the truncated prime sum with directed rounding and
// attaches the tail bound. Increasing the cutoff monotonically tightens
// the returned interval.
func Compute(ctx interval.Context, cutoff int) (Result, error) {
	if cutoff < MinCutoff {
		return Result{}, fmt.Errorf("%w: P=%d (minimum %d)", ErrCutoffTooSmall, cutoff, MinCutoff)
	}

	primes := sieve.UpTo(cutoff)
	sum := ctx.FromInt64(0)
	for _, p := range primes {
		lp, err := ctx.Log(ctx.FromInt64(int64(p)))
		if err != nil {
			return Result{}, fmt.Errorf("rightedge: log(%d): %w", p, err)
		}
		den := int64(p)*int64(p) - 1
		term, err := lp.Div(ctx.FromInt64(den))
		if err != nil {
			return Result{}, fmt.Errorf("rightedge: term p=%d: %w", p, err)
		}
		sum = sum.Add(term)
	}

	tail, err := tailBound(ctx, cutoff)
	if err != nil {
		return Result{}, err
	}

	// Tail is non-negative, so the hull of S and S+tail is exactly
	// [S.lower, (S+tail).upper].
	bound := interval.Hull(sum, sum.Add(tail))

	return Result{
		Cutoff:     cutoff,
		PrimeCount: len(primes),
		PartialSum: sum,
		Tail:       tail,
		Bound:      bound,
	}, nil
}

// PowerPass recomputes the partial sum by summing log(p)/p^(2m) over
// explicit prime powers, enclosing each truncated geometric tail. It
// must agree with the closed-form accumulation in Compute and exists
// purely as an independent check of that identity.
func PowerPass(ctx interval.Context, cutoff int) (interval.Bound, error) {
	if cutoff < MinCutoff {
		return interval.Bound{}, fmt.Errorf("%w: P=%d (minimum %d)", ErrCutoffTooSmall, cutoff, MinCutoff)
	}

	total := ctx.FromInt64(0)
	for _, p := range sieve.UpTo(cutoff) {
		lp, err := ctx.Log(ctx.FromInt64(int64(p)))
		if err != nil {
			return interval.Bound{}, fmt.Errorf("rightedge: log(%d): %w", p, err)
		}
		pp := int64(p) * int64(p)
		q, err := ctx.FromRat(1, pp)
		if err != nil {
			return interval.Bound{}, err
		}

		// Enough terms that the remaining geometric tail is far below
		// the working resolution.
		steps := int(float64(ctx.Prec())/(2*math.Log2(float64(p)))) + 2
		sum := ctx.FromInt64(0)
		pw := q
		for m := 0; m < steps; m++ {
			sum = sum.Add(lp.Mul(pw))
			pw = pw.Mul(q)
		}

		// Remaining tail: log(p) * q^steps * pp/(pp-1).
		ratio, err := ctx.FromRat(pp, pp-1)
		if err != nil {
			return interval.Bound{}, err
		}
		tail := lp.Mul(pw).Mul(ratio)
		total = total.Add(interval.Hull(sum, sum.Add(tail)))
	}
	return total, nil
}

// tailBound returns (4/3) * (log P + 1) / P as an interval.
func tailBound(ctx interval.Context, cutoff int) (interval.Bound, error) {
	logP, err := ctx.Log(ctx.FromInt64(int64(cutoff)))
	if err != nil {
		return interval.Bound{}, fmt.Errorf("rightedge: tail log: %w", err)
	}
	fourThirds, err := ctx.FromRat(4, 3)
	if err != nil {
		return interval.Bound{}, err
	}
	t, err := fourThirds.Mul(logP.Add(ctx.FromInt64(1))).Div(ctx.FromInt64(int64(cutoff)))
	if err != nil {
		return interval.Bound{}, fmt.Errorf("rightedge: tail: %w", err)
	}
	return t, nil
}
