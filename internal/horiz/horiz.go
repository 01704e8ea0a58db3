// Package horiz bounds the phase variation along the horizontal edges
// of the counting rectangle. The contribution decays like h/T, so a
// fixed envelope constant certifies it stays below the pi/2 budget.
package horiz

import (
	"errors"
	"fmt"
	"math"
)

// ErrParameter reports a parameter outside its admissible range.
var ErrParameter = errors.New("horiz: parameter out of range")

// Params fixes one horizontal-edge validation.
type Params struct {
	T     float64 // height of the lower edge
	C     float64 // window width coefficient, h = C/log T
	Kappa float64 // split width coefficient, delta = Kappa/log T

	// SigmaSamples is the number of abscissa samples across the strip
	// [1/2+delta, 2]; zero means 20.
	SigmaSamples int
}

// Result is one evaluated envelope bound.
type Result struct {
	T     float64 `json:"t"`
	H     float64 `json:"h"`
	Delta float64 `json:"delta"`

	MaxDerivative float64 `json:"max_derivative"` // sup of |d/dt (f'/f)| over the edge
	EnvelopeBound float64 `json:"envelope_bound"` // h * MaxDerivative
	CHoriz        float64 `json:"c_horiz"`        // MaxDerivative * T
	RefinedBound  float64 `json:"refined_bound"`  // CHoriz * h / T
	BoundOverPi   float64 `json:"bound_over_pi"`

	// OK reports RefinedBound < pi/2, so the edge cannot flip the
	// window's phase count.
	OK bool `json:"ok"`
}

func (p *Params) normalize() {
	if p.SigmaSamples == 0 {
		p.SigmaSamples = 20
	}
}

func (p Params) validate() error {
	if !(p.T > 1) || math.IsInf(p.T, 0) {
		return fmt.Errorf("%w: T = %v, want finite T > 1", ErrParameter, p.T)
	}
	if !(p.C > 0) || math.IsInf(p.C, 0) {
		return fmt.Errorf("%w: c = %v, want c > 0", ErrParameter, p.C)
	}
	if !(p.Kappa > 0) || math.IsInf(p.Kappa, 0) {
		return fmt.Errorf("%w: kappa = %v, want kappa > 0", ErrParameter, p.Kappa)
	}
	if delta := p.Kappa / math.Log(p.T); 0.5+delta >= 2 {
		return fmt.Errorf("%w: delta = %v leaves no strip below sigma = 2", ErrParameter, delta)
	}
	if p.SigmaSamples < 2 {
		return fmt.Errorf("%w: sigma samples = %d", ErrParameter, p.SigmaSamples)
	}
	return nil
}

// stirlingLogGammaDeriv approximates d/dt log Gamma(sigma + it) for
// large |sigma + it| as log|s| + sigma/(2|s|^2).
func stirlingLogGammaDeriv(sigma, t float64) float64 {
	sAbs := math.Hypot(sigma, t)
	if sAbs < 10 {
		return math.Log(sAbs)
	}
	return math.Log(sAbs) + sigma/(2*sAbs*sAbs)
}

// phaseDerivBound bounds |d/dt (f'/f)(sigma + it)| for f(s) = (s-1)zeta(s).
// Three regimes: Dirichlet-series decay to the right of 3/2, the
// functional-equation reflection below 3/4, and a linear blend between.
func phaseDerivBound(sigma, t float64) float64 {
	if sigma > 1.5 {
		return 2.0 / (sigma * sigma)
	}
	if sigma < 0.75 {
		return math.Abs(stirlingLogGammaDeriv(0.5-sigma, t)) + 1.0/math.Abs(t)
	}
	weight := (sigma - 0.75) / 0.75
	left := stirlingLogGammaDeriv(0.5-sigma, t) + 1.0/math.Abs(t)
	right := 2.0 / (sigma * sigma)
	return (1-weight)*math.Abs(left) + weight*right
}

// Validate computes the envelope bound on |Phi(T+h) - Phi(T)|, the
// phase swing between the two horizontal edges of one window. The sup
// of the derivative bound is taken over both edges and the midline.
func Validate(p Params) (Result, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return Result{}, err
	}

	logT := math.Log(p.T)
	h := p.C / logT
	delta := p.Kappa / logT

	lo, hi := 0.5+delta, 2.0
	step := (hi - lo) / float64(p.SigmaSamples-1)

	maxDeriv := 0.0
	for _, t := range []float64{p.T, p.T + h/2, p.T + h} {
		for i := 0; i < p.SigmaSamples; i++ {
			sigma := lo + float64(i)*step
			if d := phaseDerivBound(sigma, t); d > maxDeriv {
				maxDeriv = d
			}
		}
	}

	refined := maxDeriv * h
	return Result{
		T:             p.T,
		H:             h,
		Delta:         delta,
		MaxDerivative: maxDeriv,
		EnvelopeBound: h * maxDeriv,
		CHoriz:        maxDeriv * p.T,
		RefinedBound:  refined,
		BoundOverPi:   refined / math.Pi,
		OK:            refined < math.Pi/2,
	}, nil
}

// ValidateHeights runs the envelope bound across a sweep of heights
// with shared window coefficients.
func ValidateHeights(heights []float64, c, kappa float64) ([]Result, error) {
	results := make([]Result, 0, len(heights))
	for _, t := range heights {
		res, err := Validate(Params{T: t, C: c, Kappa: kappa})
		if err != nil {
			return nil, fmt.Errorf("height %g: %w", t, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// DefaultHeights is the standard multi-height sweep.
func DefaultHeights() []float64 {
	return []float64{1e10, 1e11, 1e12, 1e13, 1e14}
}
