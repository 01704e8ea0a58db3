package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/specator-tlca/RN/internal/optimize"
	"github.com/specator-tlca/RN/internal/rightedge"
	"github.com/specator-tlca/RN/internal/strip"
)

var (
	flagMinMargin float64
	flagAnalyze   bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search the window parameters",
	Long: `Sweeps (c, kappa, R0) over the configured grid, keeps every profile
whose margin clears the floor, and reports the feasible profile with
the lowest certified threshold. When nothing is feasible the search
still reports the closest miss instead of failing.`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := newAppEnv()
		if err != nil {
			exitf(" %v", err)
		}
		defer env.Close()
		printBanner(env.cfg)

		applyWindowOverrides(env.cfg)
		exp, err := strip.ParseExponent(env.cfg.Window.Exponent)
		if err != nil {
			exitf(" %v", err)
		}
		model, err := strip.ParseModel(env.cfg.Window.Model)
		if err != nil {
			exitf(" %v", err)
		}

		if flagAnalyze {
			runProfileAnalysis(cmd, env, exp, model)
			return
		}

		sc := env.cfg.Search
		minMargin := sc.MinMargin
		if cmd.Flags().Changed("min-margin") {
			minMargin = flagMinMargin
		}
		grid := optimize.Grid{
			R0:    optimize.Range{Min: sc.R0Min, Max: sc.R0Max, Steps: sc.R0Steps},
			C:     optimize.Range{Min: sc.CMin, Max: sc.CMax, Steps: sc.CSteps},
			Kappa: optimize.Range{Min: sc.KappaMin, Max: sc.KappaMax, Steps: sc.KappaSteps},
		}
		ctx, err := env.context()
		if err != nil {
			exitf(" Initialization error: %v", err)
		}
		re, err := rightedge.Compute(ctx, env.cfg.Precision.Cutoff)
		if err != nil {
			exitf(" C_right computation failed: %v", err)
		}

		opts := optimize.Options{
			Precision:   env.cfg.Precision.Bits,
			Cutoff:      env.cfg.Precision.Cutoff,
			MinMargin:   minMargin,
			Exponent:    exp,
			Model:       model,
			T:           env.cfg.Window.T,
			Samples:     env.cfg.Window.Samples,
			Seed:        env.cfg.Window.Seed,
			Parallelism: sc.Parallelism,
			CRight:      &re.Bound,
		}

		env.logger.Infof("C_right: [%.12f, %.12f] (cutoff %d, shared across the grid)",
			re.Bound.LowerFloat64(), re.Bound.UpperFloat64(), re.Cutoff)
		env.logger.Infof("Searching %d x %d x %d grid (margin floor %.1f%%, %s exponent, %s model)",
			sc.R0Steps, sc.CSteps, sc.KappaSteps, minMargin, exp, model)

		out, err := optimize.Search(cmd.Context(), grid, opts)
		if err != nil {
			exitf(" Search failed: %v", err)
		}

		env.logger.Infof("Evaluated %d profiles (%d feasible, %d skipped)",
			len(out.Records), out.Feasible, out.Skipped)
		if out.Best != nil {
			b := out.Best
			env.logger.Infof("Best profile: c=%.4f kappa=%.4f R0=%.4f", b.Profile.C, b.Profile.Kappa, b.Profile.R0)
			env.logger.Infof("  Margin: %.1f%% | log T0: %.4f | T0: %.3e", b.MarginPct, b.LogT0, b.T0)
		} else if out.Fallback != nil {
			f := out.Fallback
			env.logger.Warnf("No profile reached the %.1f%% floor", minMargin)
			env.logger.Warnf("Closest miss: c=%.4f kappa=%.4f R0=%.4f at %.1f%%",
				f.Profile.C, f.Profile.Kappa, f.Profile.R0, f.MarginPct)
		}
		env.logger.Infof("Search status: %s", out.Status)

		p := map[string]interface{}{
			"grid":       grid,
			"min_margin": minMargin,
			"exponent":   exp.String(),
			"model":      model.String(),
			"t":          env.cfg.Window.T,
		}
		env.saveJSON("optimize", p, out)
		if env.writer != nil && env.cfg.Output.SaveCSV {
			saveGridCSV(env, out)
		}

		var marginPct, logT0 *float64
		if chosen := out.Chosen(); chosen != nil {
			marginPct, logT0 = &chosen.MarginPct, &chosen.LogT0
		}
		env.record(cmd.Context(), "optimize", p, out, marginPct, logT0, string(out.Status))
	},
}

// runProfileAnalysis prints the paper-default profile next to the
// tuned one under the shared model.
func runProfileAnalysis(cmd *cobra.Command, env *appEnv, exp strip.Exponent, model strip.Model) {
	ctx, err := env.context()
	if err != nil {
		exitf(" Initialization error: %v", err)
	}
	re, err := rightedge.Compute(ctx, env.cfg.Precision.Cutoff)
	if err != nil {
		exitf(" C_right computation failed: %v", err)
	}

	profiles := optimize.DefaultComparison()
	for i := range profiles {
		profiles[i].Exponent = exp
	}
	recs, err := optimize.CompareProfiles(ctx, re.Bound, profiles, optimize.Options{
		Cutoff:  env.cfg.Precision.Cutoff,
		Model:   model,
		T:       env.cfg.Window.T,
		Samples: env.cfg.Window.Samples,
		Seed:    env.cfg.Window.Seed,
	})
	if err != nil {
		exitf(" Profile analysis failed: %v", err)
	}

	env.logger.Infof("Profile analysis (%s model, T = %.2e):", model, env.cfg.Window.T)
	env.logger.Infof("  %-20s %-6s %-6s %-6s %-10s %-8s", "configuration", "c", "kappa", "R0", "margin%", "log T0")
	for _, rec := range recs {
		env.logger.Infof("  %-20s %-6.2f %-6.1f %-6.3f %-10.1f %-8.2f",
			rec.Name, rec.Profile.C, rec.Profile.Kappa, rec.Profile.R0, rec.MarginPct, rec.LogT0)
	}

	p := map[string]interface{}{
		"model": model.String(),
		"t":     env.cfg.Window.T,
	}
	env.saveJSON("analyze_profiles", p, recs)
	env.record(cmd.Context(), "analyze_profiles", p, recs, nil, nil, "PASS")
}

func saveGridCSV(env *appEnv, out optimize.Outcome) {
	rows := make([][]string, 0, len(out.Records))
	for _, rec := range out.Records {
		rows = append(rows, []string{
			fmt.Sprintf("%.6f", rec.Profile.C),
			fmt.Sprintf("%.6f", rec.Profile.Kappa),
			fmt.Sprintf("%.6f", rec.Profile.R0),
			fmt.Sprintf("%.4f", rec.MarginPct),
			fmt.Sprintf("%.6f", rec.LogT0),
			strconv.FormatBool(rec.Feasible),
		})
	}
	if _, err := env.writer.SaveCSV("grid",
		[]string{"c", "kappa", "r0", "margin_pct", "log_t0", "feasible"}, rows); err != nil {
		env.logger.WithError(err).Warn("Failed to save grid table")
	}
}

func init() {
	optimizeCmd.Flags().Float64Var(&flagMinMargin, "min-margin", 0, "Feasibility floor in percent (overrides config)")
	optimizeCmd.Flags().BoolVar(&flagAnalyze, "analyze", false, "Compare the paper-default and tuned profiles instead of searching")
	bindWindowFlags(optimizeCmd)
	rootCmd.AddCommand(optimizeCmd)
}
