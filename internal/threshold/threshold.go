// Package threshold combines the right-edge constant and the
// thin-strip constant into the certified height T0 above which every
// averaging window keeps its accumulated phase below pi/2.
package threshold

import (
	"errors"
	"fmt"
	"math"

	"github.com/specator-tlca/RN/internal/interval"
)

// TStar is the height up to which zeros on the critical line have been
// verified by exhaustive computation.
const TStar = 2.4e12

// ErrParameter reports a profile value outside its admissible range.
var ErrParameter = errors.New("threshold: parameter out of range")

// Profile fixes the tunable window parameters.
type Profile struct {
	C     float64 // window width coefficient, h = C/log T
	Kappa float64 // relative split width, delta = Kappa/log T
	R0    float64 // detection radius behind the C_thin constant
}

// Validate reports the first non-finite or non-positive field.
func (p Profile) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"c", p.C}, {"kappa", p.Kappa}, {"R0", p.R0}} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s = %v, want finite %s > 0", ErrParameter, f.name, f.v, f.name)
		}
	}
	return nil
}

// Result is a certified threshold computation. LogT0 and T0 enclose
// the threshold across the full uncertainty of the input constants,
// spanning their lower through upper endpoints; the float fields are
// conservative scalars for reporting and selection.
type Result struct {
	Profile Profile

	CRight interval.Bound
	CThin  interval.Bound

	LogT0 interval.Bound
	T0    interval.Bound

	LogT0Upper float64
	T0Upper    float64

	HAtT0     float64 // window width at T0
	DeltaAtT0 float64 // split width at T0

	BoundAtT0   float64 // phase bound at T0, pi/2 by construction
	BoundOverPi float64 // BoundAtT0 relative to pi

	// SafetyFactor is TStar / T0 when T0 falls below TStar, so the
	// certified regime overlaps the verified one with that much room.
	SafetyFactor float64
}

// Covered reports whether the certified threshold sits inside the
// exhaustively verified range.
func (r Result) Covered() bool {
	return r.T0Upper <= TStar
}

// Compute solves (c/log T0) * (C_right + kappa*C_thin) = pi/2 for T0,
// taking the upper endpoints of both constants so the threshold errs
// high.
func Compute(ctx interval.Context, prof Profile, cRight, cThin interval.Bound) (Result, error) {
	if err := prof.Validate(); err != nil {
		return Result{}, err
	}

	kappa, err := ctx.FromFloat64(prof.Kappa)
	if err != nil {
		return Result{}, err
	}
	twoC, err := ctx.FromFloat64(2 * prof.C)
	if err != nil {
		return Result{}, err
	}

	worst := cRight.UpperPoint().Add(kappa.Mul(cThin.UpperPoint()))
	best := cRight.LowerPoint().Add(kappa.Mul(cThin.LowerPoint()))
	logHi, err := twoC.Mul(worst).Div(ctx.Pi())
	if err != nil {
		return Result{}, err
	}
	logLo, err := twoC.Mul(best).Div(ctx.Pi())
	if err != nil {
		return Result{}, err
	}
	logT0 := interval.Hull(logLo, logHi)
	t0 := ctx.Exp(logT0)

	logUp := logT0.UpperFloat64()
	t0Up := t0.UpperFloat64()
	h := prof.C / logUp
	delta := prof.Kappa / logUp
	bound := h * (cRight.UpperFloat64() + prof.Kappa*cThin.UpperFloat64())

	safety := 0.0
	if t0Up <= TStar {
		safety = TStar / t0Up
	}

	return Result{
		Profile:      prof,
		CRight:       cRight,
		CThin:        cThin,
		LogT0:        logT0,
		T0:           t0,
		LogT0Upper:   logUp,
		T0Upper:      t0Up,
		HAtT0:        h,
		DeltaAtT0:    delta,
		BoundAtT0:    bound,
		BoundOverPi:  bound / math.Pi,
		SafetyFactor: safety,
	}, nil
}
