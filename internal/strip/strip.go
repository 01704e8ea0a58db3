// Package strip estimates the thin-strip constant C_thin*(R0) for the
// critical-strip phase bound and evaluates the averaging-window model
// that compares the accumulated phase against the C_thin budget.
package strip

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/specator-tlca/RN/internal/interval"
)

// Exponent selects the sub-Weyl exponent theta used for the alpha*
// growth rate. Each value is an exactly representable rational.
type Exponent int

const (
	// ExponentCurrent is the 27/164 record bound.
	ExponentCurrent Exponent = iota
	// ExponentHuxley is the classical 32/205 bound.
	ExponentHuxley
	// ExponentBourgain is the 13/84 bound.
	ExponentBourgain
	// ExponentHypothetical is the speculative 1/8 target.
	ExponentHypothetical
)

func (e Exponent) String() string {
	switch e {
	case ExponentCurrent:
		return "current"
	case ExponentHuxley:
		return "huxley"
	case ExponentBourgain:
		return "bourgain"
	case ExponentHypothetical:
		return "hypothetical"
	}
	return fmt.Sprintf("exponent(%d)", int(e))
}

// Rat returns theta as an exact rational.
func (e Exponent) Rat() (num, den int64) {
	switch e {
	case ExponentCurrent:
		return 27, 164
	case ExponentHuxley:
		return 32, 205
	case ExponentBourgain:
		return 13, 84
	case ExponentHypothetical:
		return 1, 8
	}
	return 27, 164
}

// Float64 returns theta rounded to the nearest double.
func (e Exponent) Float64() float64 {
	num, den := e.Rat()
	return float64(num) / float64(den)
}

// ParseExponent maps a flag value to an Exponent.
func ParseExponent(s string) (Exponent, error) {
	switch s {
	case "current", "":
		return ExponentCurrent, nil
	case "huxley":
		return ExponentHuxley, nil
	case "bourgain":
		return ExponentBourgain, nil
	case "hypothetical":
		return ExponentHypothetical, nil
	}
	return 0, fmt.Errorf("%w: unknown exponent %q", ErrParameter, s)
}

// Model selects the averaging factor used for the accumulated-phase
// proxy inside one window.
type Model int

const (
	// ModelToy uses a flat factor of one half.
	ModelToy Model = iota
	// ModelRealistic shades the factor down as delta grows.
	ModelRealistic
	// ModelConservative uses a pessimistic flat factor.
	ModelConservative
)

func (m Model) String() string {
	switch m {
	case ModelToy:
		return "toy"
	case ModelRealistic:
		return "realistic"
	case ModelConservative:
		return "conservative"
	}
	return fmt.Sprintf("model(%d)", int(m))
}

// ParseModel maps a flag value to a Model.
func ParseModel(s string) (Model, error) {
	switch s {
	case "toy":
		return ModelToy, nil
	case "realistic", "":
		return ModelRealistic, nil
	case "conservative":
		return ModelConservative, nil
	}
	return 0, fmt.Errorf("%w: unknown model %q", ErrParameter, s)
}

// Factor returns the averaging factor for a window of relative width
// delta.
func (m Model) Factor(delta float64) float64 {
	switch m {
	case ModelToy:
		return 0.5
	case ModelConservative:
		return 0.65
	default:
		return 0.58 - 0.08*delta/(delta+0.1)
	}
}

const (
	// DefaultC1 bounds the admissible detection radius from above.
	DefaultC1 = 2.0 / 3.0
	// DefaultHeight is the evaluation height T for the window model.
	DefaultHeight = 1e12
	// DefaultSeed seeds the Monte Carlo sampler.
	DefaultSeed = 42
)

// ErrParameter reports a parameter outside its admissible range.
var ErrParameter = errors.New("strip: parameter out of range")

// Params describes one evaluation of the window model.
type Params struct {
	R0    float64 // detection radius, 0 < R0 < C1
	C1    float64 // radius ceiling; zero means DefaultC1
	C     float64 // window width coefficient, h = C/log T
	Kappa float64 // relative split width, delta = Kappa/log T
	T     float64 // evaluation height; zero means DefaultHeight

	Exponent Exponent
	Model    Model

	// Samples switches the average proxy to seeded Monte Carlo
	// sampling when positive; zero keeps the closed-form model.
	Samples int
	Seed    int64
}

func (p *Params) normalize() {
	if p.C1 == 0 {
		p.C1 = DefaultC1
	}
	if p.T == 0 {
		p.T = DefaultHeight
	}
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}
}

// Validate reports the first parameter outside its admissible range.
func (p Params) Validate() error {
	if !(p.C1 > 0) || p.C1 > 1 || math.IsInf(p.C1, 0) {
		return fmt.Errorf("%w: c1 = %v, want 0 < c1 <= 1", ErrParameter, p.C1)
	}
	if !(p.R0 > 0) || !(p.R0 < p.C1) {
		return fmt.Errorf("%w: R0 = %v, want 0 < R0 < %v", ErrParameter, p.R0, p.C1)
	}
	if !(p.C > 0) || math.IsInf(p.C, 0) {
		return fmt.Errorf("%w: c = %v, want c > 0", ErrParameter, p.C)
	}
	if !(p.Kappa > 0) || math.IsInf(p.Kappa, 0) {
		return fmt.Errorf("%w: kappa = %v, want kappa > 0", ErrParameter, p.Kappa)
	}
	if !(p.T > 1) || math.IsInf(p.T, 0) {
		return fmt.Errorf("%w: T = %v, want finite T > 1", ErrParameter, p.T)
	}
	if p.Samples < 0 {
		return fmt.Errorf("%w: samples = %d", ErrParameter, p.Samples)
	}
	return nil
}

// Status classifies a margin check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Measurement is one evaluation of the window model together with the
// rigorous enclosures it was derived from.
type Measurement struct {
	Params Params

	AlphaStar interval.Bound // theta + R0
	CThin     interval.Bound // (8/R0) * alpha*

	H     float64 // window width C/log T
	Delta float64 // split width Kappa/log T

	AvgProxy float64 // modeled accumulated phase per window
	StdProxy float64 // spread of the proxy
	BoundRHS float64 // C_thin* budget for the same window

	Margin    float64 // BoundRHS - AvgProxy
	MarginPct float64 // Margin relative to BoundRHS, percent

	Status Status
}

// AlphaStar returns the enclosure of theta + R0.
func AlphaStar(ctx interval.Context, e Exponent, r0 float64) (interval.Bound, error) {
	num, den := e.Rat()
	theta, err := ctx.FromRat(num, den)
	if err != nil {
		return interval.Bound{}, err
	}
	r, err := ctx.FromFloat64(r0)
	if err != nil {
		return interval.Bound{}, err
	}
	return theta.Add(r), nil
}

// CThinStar returns enclosures of alpha*(R0) and C_thin*(R0) = (8/R0) * alpha*.
func CThinStar(ctx interval.Context, e Exponent, r0 float64) (alpha, cthin interval.Bound, err error) {
	alpha, err = AlphaStar(ctx, e, r0)
	if err != nil {
		return interval.Bound{}, interval.Bound{}, err
	}
	r, err := ctx.FromFloat64(r0)
	if err != nil {
		return interval.Bound{}, interval.Bound{}, err
	}
	ratio, err := ctx.FromInt64(8).Div(r)
	if err != nil {
		return interval.Bound{}, interval.Bound{}, err
	}
	return alpha, ratio.Mul(alpha), nil
}

// Measure evaluates the window model for one parameter set. The alpha*
// and C_thin* enclosures are rigorous; the window proxies are model
// estimates taken at the conservative upper endpoints.
func Measure(ctx interval.Context, p Params) (Measurement, error) {
	p.normalize()
	if err := p.Validate(); err != nil {
		return Measurement{}, err
	}

	alpha, cthin, err := CThinStar(ctx, p.Exponent, p.R0)
	if err != nil {
		return Measurement{}, err
	}

	logT := math.Log(p.T)
	h := p.C / logT
	delta := p.Kappa / logT
	scale := alpha.UpperFloat64() * logT

	var avg, std float64
	if p.Samples > 0 {
		avg, std = sampleProxy(scale, delta, p.Samples, p.Seed)
	} else {
		avg = scale * p.Model.Factor(delta) * delta
		std = scale * 0.1 * delta
	}

	rhs := cthin.UpperFloat64() * h * delta * logT
	margin := rhs - avg
	pct := margin / rhs * 100

	m := Measurement{
		Params:    p,
		AlphaStar: alpha,
		CThin:     cthin,
		H:         h,
		Delta:     delta,
		AvgProxy:  avg,
		StdProxy:  std,
		BoundRHS:  rhs,
		Margin:    margin,
		MarginPct: pct,
		Status:    StatusFail,
	}
	if pct >= 0 {
		m.Status = StatusPass
	}
	return m, nil
}

// sampleProxy draws a seeded mixture of per-window phase increments:
// 70% exponential around scale/(1+scale), 30% normal around 0.8*scale
// clipped to [0, 1.2*scale]. Returns the mean and standard error,
// both rescaled by delta.
func sampleProxy(scale, delta float64, n int, seed int64) (avg, std float64) {
	rng := rand.New(rand.NewSource(seed))
	nExp := int(0.7 * float64(n))
	nNorm := int(0.3 * float64(n))
	total := nExp + nNorm
	if total == 0 {
		return 0, 0
	}

	samples := make([]float64, 0, total)
	mean := scale / (1 + scale)
	for i := 0; i < nExp; i++ {
		samples = append(samples, rng.ExpFloat64()*mean)
	}
	for i := 0; i < nNorm; i++ {
		v := rng.NormFloat64()*0.1*scale + 0.8*scale
		if v < 0 {
			v = 0
		} else if v > 1.2*scale {
			v = 1.2 * scale
		}
		samples = append(samples, v)
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	m := sum / float64(total)
	var ss float64
	for _, v := range samples {
		d := v - m
		ss += d * d
	}
	sd := 0.0
	if total > 1 {
		sd = math.Sqrt(ss / float64(total-1))
	}
	return m * delta, sd * delta / math.Sqrt(float64(total))
}
