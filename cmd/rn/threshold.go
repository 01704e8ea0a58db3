package main

import (
	"github.com/spf13/cobra"

	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/optimize"
	"github.com/specator-tlca/RN/internal/rightedge"
	"github.com/specator-tlca/RN/internal/strip"
	"github.com/specator-tlca/RN/internal/threshold"
)

var flagCompare bool

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Compute the certified threshold T0",
	Long: `Combines C_right and C_thin*(R0) into the threshold T0 above which
every averaging window keeps its phase below pi/2, then reports the
window-model margin at the configured height and how far T0 sits below
the exhaustively verified range.`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := newAppEnv()
		if err != nil {
			exitf(" %v", err)
		}
		defer env.Close()
		printBanner(env.cfg)

		ctx, err := env.context()
		if err != nil {
			exitf(" Initialization error: %v", err)
		}
		params, err := windowParams(env)
		if err != nil {
			exitf(" %v", err)
		}

		re, err := rightedge.Compute(ctx, env.cfg.Precision.Cutoff)
		if err != nil {
			exitf(" C_right computation failed: %v", err)
		}

		if flagCompare {
			runLiteratureComparison(cmd, env, ctx, re.Bound, params)
			return
		}

		m, err := strip.Measure(ctx, params)
		if err != nil {
			exitf(" Window measurement failed: %v", err)
		}

		prof := threshold.Profile{C: params.C, Kappa: params.Kappa, R0: params.R0}
		res, err := threshold.Compute(ctx, prof, re.Bound, m.CThin)
		if err != nil {
			exitf(" Threshold computation failed: %v", err)
		}

		env.logger.Infof("Certified threshold for profile (c=%.3f, kappa=%.3f, R0=%.3f):",
			prof.C, prof.Kappa, prof.R0)
		env.logger.Infof("  C_right:      [%.12f, %.12f]", re.Bound.LowerFloat64(), re.Bound.UpperFloat64())
		env.logger.Infof("  C_thin*(R0):  [%.12f, %.12f]", m.CThin.LowerFloat64(), m.CThin.UpperFloat64())
		env.logger.Infof("  log T0:       %.6f", res.LogT0Upper)
		env.logger.Infof("  T0:           %.4e", res.T0Upper)
		env.logger.Infof("  h(T0) = %.6f | delta(T0) = %.6f", res.HAtT0, res.DeltaAtT0)
		env.logger.Infof("  Phase bound at T0: %.9f (= %.6f pi)", res.BoundAtT0, res.BoundOverPi)
		if res.Covered() {
			env.logger.Infof("  T0 is below the verified height %.2e (safety factor %.2e)",
				threshold.TStar, res.SafetyFactor)
		} else {
			env.logger.Warnf("  T0 exceeds the verified height %.2e", threshold.TStar)
		}
		env.logger.Infof("Window margin at T = %.2e: %.1f%% (%s)", params.T, m.MarginPct, m.Status)

		p := map[string]interface{}{
			"c":        prof.C,
			"kappa":    prof.Kappa,
			"r0":       prof.R0,
			"cutoff":   env.cfg.Precision.Cutoff,
			"exponent": params.Exponent.String(),
			"model":    params.Model.String(),
			"t":        params.T,
		}
		results := map[string]interface{}{
			"cright_lower":  re.Bound.LowerFloat64(),
			"cright_upper":  re.Bound.UpperFloat64(),
			"cthin_upper":   m.CThin.UpperFloat64(),
			"log_t0":        res.LogT0Upper,
			"t0":            res.T0Upper,
			"h_at_t0":       res.HAtT0,
			"delta_at_t0":   res.DeltaAtT0,
			"bound_at_t0":   res.BoundAtT0,
			"covered":       res.Covered(),
			"safety_factor": res.SafetyFactor,
			"margin_pct":    m.MarginPct,
			"status":        string(m.Status),
		}
		env.saveJSON("threshold", p, results)
		env.record(cmd.Context(), "threshold", p, results, &m.MarginPct, &res.LogT0Upper, string(m.Status))
	},
}

// runLiteratureComparison prints the standard table of parameter sets
// under the shared right-edge enclosure.
func runLiteratureComparison(cmd *cobra.Command, env *appEnv, ctx interval.Context, cRight interval.Bound, params strip.Params) {
	recs, err := optimize.CompareProfiles(ctx, cRight, optimize.LiteratureSets(), optimize.Options{
		Cutoff: env.cfg.Precision.Cutoff,
		Model:  params.Model,
		T:      params.T,
	})
	if err != nil {
		exitf(" Literature comparison failed: %v", err)
	}

	env.logger.Info("Comparison of parameter sets:")
	env.logger.Infof("  %-22s %-6s %-6s %-6s %-12s %-10s %-12s", "configuration", "c", "kappa", "R0", "exponent", "log T0", "T0")
	for _, rec := range recs {
		env.logger.Infof("  %-22s %-6.2f %-6.1f %-6.3f %-12s %-10.4f %-12.3e",
			rec.Name, rec.Profile.C, rec.Profile.Kappa, rec.Profile.R0, rec.Exponent, rec.LogT0, rec.T0)
	}

	p := map[string]interface{}{
		"model": params.Model.String(),
		"t":     params.T,
	}
	env.saveJSON("compare", p, recs)
	env.record(cmd.Context(), "compare", p, recs, nil, nil, "PASS")
}

func init() {
	thresholdCmd.Flags().BoolVar(&flagCompare, "compare", false, "Tabulate the literature parameter sets instead of a single profile")
	bindWindowFlags(thresholdCmd)
	rootCmd.AddCommand(thresholdCmd)
}
