package main

import (
	"github.com/spf13/cobra"

	"github.com/specator-tlca/RN/internal/optimize"
	"github.com/specator-tlca/RN/internal/rightedge"
	"github.com/specator-tlca/RN/internal/threshold"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare sub-Weyl exponents at a fixed profile",
	Long: `Evaluates the configured window profile under every known sub-Weyl
exponent, showing how much a sharper exponent would lower C_thin*, the
threshold, and the margin pressure.`,
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

		prof := threshold.Profile{C: params.C, Kappa: params.Kappa, R0: params.R0}
		recs, err := optimize.CompareExponents(ctx, re.Bound, prof, optimize.Options{
			Cutoff:  env.cfg.Precision.Cutoff,
			Model:   params.Model,
			T:       params.T,
			Samples: params.Samples,
			Seed:    params.Seed,
		})
		if err != nil {
			exitf(" Exponent comparison failed: %v", err)
		}

		env.logger.Infof("Exponent comparison at (c=%.3f, kappa=%.3f, R0=%.3f), T = %.2e:",
			prof.C, prof.Kappa, prof.R0, params.T)
		env.logger.Infof("  %-14s %-10s %-12s %-10s %-10s", "exponent", "theta", "C_thin*", "margin%", "log T0")
		for _, rec := range recs {
			env.logger.Infof("  %-14s %-10.6f %-12.4f %-10.2f %-10.4f",
				rec.Name, rec.Theta, rec.CThin, rec.MarginPct, rec.LogT0)
		}

		p := map[string]interface{}{
			"c":     prof.C,
			"kappa": prof.Kappa,
			"r0":    prof.R0,
			"model": params.Model.String(),
			"t":     params.T,
		}
		env.saveJSON("analyze", p, recs)
		env.record(cmd.Context(), "analyze", p, recs, nil, nil, "PASS")
	},
}

func init() {
	bindWindowFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
