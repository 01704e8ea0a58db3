// Package optimize searches the (c, kappa, R0) parameter space for the
// profile that certifies the lowest threshold while keeping a required
// safety margin.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/rightedge"
	"github.com/specator-tlca/RN/internal/strip"
	"github.com/specator-tlca/RN/internal/threshold"
)

// ErrPrecisionMismatch reports a reused right-edge enclosure built at
// a different precision than the search context.
var ErrPrecisionMismatch = errors.New("optimize: right-edge enclosure precision does not match search precision")

// Range is an inclusive linear sweep of one parameter.
type Range struct {
	Min, Max float64
	Steps    int
}

// Values expands the sweep. A single step collapses to Min.
func (r Range) Values() []float64 {
	if r.Steps <= 1 {
		return []float64{r.Min}
	}
	vals := make([]float64, r.Steps)
	step := (r.Max - r.Min) / float64(r.Steps-1)
	for i := range vals {
		vals[i] = r.Min + float64(i)*step
	}
	vals[r.Steps-1] = r.Max
	return vals
}

// Grid spans the three window parameters.
type Grid struct {
	R0    Range
	C     Range
	Kappa Range
}

// DefaultGrid covers the region where profiles are known to flip
// between feasible and infeasible.
func DefaultGrid() Grid {
	return Grid{
		R0:    Range{Min: 0.05, Max: 0.30, Steps: 6},
		C:     Range{Min: 0.15, Max: 0.45, Steps: 7},
		Kappa: Range{Min: 0.5, Max: 2.5, Steps: 5},
	}
}

// Options tunes a search run.
type Options struct {
	Precision uint // context bits; zero means 96
	Cutoff    int  // prime cutoff for the right-edge constant; zero means 100000

	MinMargin float64 // feasibility floor in percent
	Exponent  strip.Exponent
	Model     strip.Model
	T         float64 // evaluation height; zero means strip.DefaultHeight

	Samples int // Monte Carlo samples per point; zero keeps the closed form
	Seed    int64

	Parallelism int // concurrent evaluations; zero means GOMAXPROCS

	// CRight reuses a precomputed right-edge enclosure instead of
	// sieving one per search.
	CRight *interval.Bound
}

func (o *Options) normalize() {
	if o.Precision == 0 {
		o.Precision = 96
	}
	if o.Cutoff == 0 {
		o.Cutoff = 100000
	}
	if o.T == 0 {
		o.T = strip.DefaultHeight
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
}

// Record is one evaluated grid point.
type Record struct {
	Profile   threshold.Profile `json:"profile"`
	MarginPct float64           `json:"margin_pct"`
	LogT0     float64           `json:"log_t0"`
	T0        float64           `json:"t0"`
	Feasible  bool              `json:"feasible"`
}

// Outcome is a completed grid search. Best is nil exactly when no
// point met the margin floor; Fallback then carries the closest miss.
type Outcome struct {
	Records  []Record `json:"records"`
	Best     *Record  `json:"best,omitempty"`
	Fallback *Record  `json:"fallback,omitempty"`
	Feasible int      `json:"feasible"`
	Skipped  int      `json:"skipped"`

	Status strip.Status `json:"status"`
}

// Chosen returns the record a report should lead with.
func (o Outcome) Chosen() *Record {
	if o.Best != nil {
		return o.Best
	}
	return o.Fallback
}

// Evaluate scores one profile: the window-model margin plus the
// certified threshold it implies.
func Evaluate(ctx interval.Context, cRight interval.Bound, prof threshold.Profile, opts Options) (Record, error) {
	opts.normalize()
	m, err := strip.Measure(ctx, strip.Params{
		R0:       prof.R0,
		C:        prof.C,
		Kappa:    prof.Kappa,
		T:        opts.T,
		Exponent: opts.Exponent,
		Model:    opts.Model,
		Samples:  opts.Samples,
		Seed:     opts.Seed,
	})
	if err != nil {
		return Record{}, err
	}
	res, err := threshold.Compute(ctx, prof, cRight, m.CThin)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Profile:   prof,
		MarginPct: m.MarginPct,
		LogT0:     res.LogT0Upper,
		T0:        res.T0Upper,
		Feasible:  m.MarginPct >= opts.MinMargin,
	}, nil
}

// better orders feasible records: lower threshold wins, ties break
// toward the smaller R0, then smaller kappa, then smaller c so the
// tuple is a total order over the grid.
func better(a, b Record) bool {
	if a.LogT0 != b.LogT0 {
		return a.LogT0 < b.LogT0
	}
	if a.Profile.R0 != b.Profile.R0 {
		return a.Profile.R0 < b.Profile.R0
	}
	if a.Profile.Kappa != b.Profile.Kappa {
		return a.Profile.Kappa < b.Profile.Kappa
	}
	return a.Profile.C < b.Profile.C
}

// Search evaluates every grid point and reduces to the best feasible
// profile. Points rejected by parameter validation are skipped, not
// fatal, so a generous grid can overlap the admissible region's edge.
func Search(ctx context.Context, grid Grid, opts Options) (Outcome, error) {
	opts.normalize()
	ictx, err := interval.NewContext(opts.Precision)
	if err != nil {
		return Outcome{}, err
	}

	var cRight interval.Bound
	if opts.CRight != nil {
		if opts.CRight.Prec() != ictx.Prec() {
			return Outcome{}, fmt.Errorf("%w: enclosure %d bits, search %d bits",
				ErrPrecisionMismatch, opts.CRight.Prec(), ictx.Prec())
		}
		cRight = *opts.CRight
	} else {
		re, err := rightedge.Compute(ictx, opts.Cutoff)
		if err != nil {
			return Outcome{}, fmt.Errorf("right-edge constant: %w", err)
		}
		cRight = re.Bound
	}

	var profiles []threshold.Profile
	for _, r0 := range grid.R0.Values() {
		for _, c := range grid.C.Values() {
			for _, kappa := range grid.Kappa.Values() {
				profiles = append(profiles, threshold.Profile{C: c, Kappa: kappa, R0: r0})
			}
		}
	}
	log.WithFields(log.Fields{
		"points":  len(profiles),
		"workers": opts.Parallelism,
	}).Debug("starting grid search")

	type slot struct {
		rec Record
		ok  bool
	}
	slots := make([]slot, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i, prof := range profiles {
		i, prof := i, prof
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := Evaluate(ictx, cRight, prof, opts)
			if err != nil {
				log.WithError(err).Debugf("skipping profile %+v", prof)
				return nil
			}
			slots[i] = slot{rec: rec, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	// Reduce in grid order so ties resolve the same way on every run.
	out := Outcome{Status: strip.StatusFail}
	for _, s := range slots {
		if !s.ok {
			out.Skipped++
			continue
		}
		rec := s.rec
		out.Records = append(out.Records, rec)
		if rec.Feasible {
			out.Feasible++
			if out.Best == nil || better(rec, *out.Best) {
				r := rec
				out.Best = &r
			}
		}
		if out.Fallback == nil || rec.MarginPct > out.Fallback.MarginPct {
			r := rec
			out.Fallback = &r
		}
	}
	if out.Best != nil {
		out.Status = strip.StatusPass
	}
	return out, nil
}

// NamedProfile labels a window profile for tabular comparison.
type NamedProfile struct {
	Name     string
	Profile  threshold.Profile
	Exponent strip.Exponent
}

// DefaultComparison pairs the paper-default profile with the tuned
// one.
func DefaultComparison() []NamedProfile {
	return []NamedProfile{
		{Name: "Paper default", Profile: threshold.Profile{C: 0.25, Kappa: 2.0, R0: 0.125}},
		{Name: "Optimized", Profile: threshold.Profile{C: 0.35, Kappa: 0.8, R0: 0.10}},
	}
}

// LiteratureSets is the standard table of parameter sets discussed in
// the write-up.
func LiteratureSets() []NamedProfile {
	return []NamedProfile{
		{Name: "Paper default", Profile: threshold.Profile{C: 0.25, Kappa: 2.0, R0: 0.125}},
		{Name: "Conservative", Profile: threshold.Profile{C: 0.30, Kappa: 2.5, R0: 0.10}},
		{Name: "Aggressive", Profile: threshold.Profile{C: 0.20, Kappa: 1.5, R0: 0.15}},
		{Name: "Optimal (30% margin)", Profile: threshold.Profile{C: 0.25, Kappa: 1.0, R0: 0.125}},
		{Name: "With Bourgain", Profile: threshold.Profile{C: 0.25, Kappa: 2.0, R0: 0.125}, Exponent: strip.ExponentBourgain},
	}
}

// ProfileRecord is one row of a named-profile comparison.
type ProfileRecord struct {
	Name     string `json:"name"`
	Exponent string `json:"exponent"`
	Record
}

// CompareProfiles evaluates each named profile under its own exponent,
// sharing the right-edge enclosure.
func CompareProfiles(ctx interval.Context, cRight interval.Bound, profiles []NamedProfile, opts Options) ([]ProfileRecord, error) {
	records := make([]ProfileRecord, 0, len(profiles))
	for _, np := range profiles {
		o := opts
		o.Exponent = np.Exponent
		rec, err := Evaluate(ctx, cRight, np.Profile, o)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", np.Name, err)
		}
		records = append(records, ProfileRecord{
			Name:     np.Name,
			Exponent: np.Exponent.String(),
			Record:   rec,
		})
	}
	return records, nil
}

// ExponentRecord scores one sub-Weyl exponent at a fixed profile.
type ExponentRecord struct {
	Exponent  strip.Exponent `json:"-"`
	Name      string         `json:"exponent"`
	Theta     float64        `json:"theta"`
	CThin     float64        `json:"c_thin_upper"`
	MarginPct float64        `json:"margin_pct"`
	LogT0     float64        `json:"log_t0"`
	Feasible  bool           `json:"feasible"`
}

// CompareExponents evaluates the same profile under every known
// sub-Weyl exponent, showing how much a sharper bound would buy.
func CompareExponents(ctx interval.Context, cRight interval.Bound, prof threshold.Profile, opts Options) ([]ExponentRecord, error) {
	opts.normalize()
	exps := []strip.Exponent{
		strip.ExponentCurrent,
		strip.ExponentHuxley,
		strip.ExponentBourgain,
		strip.ExponentHypothetical,
	}
	records := make([]ExponentRecord, 0, len(exps))
	for _, e := range exps {
		o := opts
		o.Exponent = e
		rec, err := Evaluate(ctx, cRight, prof, o)
		if err != nil {
			return nil, err
		}
		_, cThin, err := strip.CThinStar(ctx, e, prof.R0)
		if err != nil {
			return nil, err
		}
		records = append(records, ExponentRecord{
			Exponent:  e,
			Name:      e.String(),
			Theta:     e.Float64(),
			CThin:     cThin.UpperFloat64(),
			MarginPct: rec.MarginPct,
			LogT0:     rec.LogT0,
			Feasible:  rec.Feasible,
		})
	}
	return records, nil
}
