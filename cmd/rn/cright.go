package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/rightedge"
)

var (
	crossCheck bool
	flagVerify bool
)

var crightCmd = &cobra.Command{
	Use:   "cright",
	Short: "Compute the right-edge constant C_right",
	Long: `Computes a rigorous enclosure of C_right = sum over prime powers of
log(p) / p^(2m) by sieving primes up to the cutoff P and enclosing the
tail analytically. The lower endpoint is the certified partial sum; the
upper endpoint adds the tail bound.`,
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

		if flagVerify {
			runConvergenceTable(cmd, env, ctx)
			return
		}

		res, err := rightedge.Compute(ctx, env.cfg.Precision.Cutoff)
		if err != nil {
			exitf(" C_right computation failed: %v", err)
		}

		env.logger.Infof("Right-edge constant with cutoff P = %d:", res.Cutoff)
		env.logger.Infof("  Primes used:  %d", res.PrimeCount)
		env.logger.Infof("  Partial sum:  [%.15f, %.15f]", res.PartialSum.LowerFloat64(), res.PartialSum.UpperFloat64())
		env.logger.Infof("  Tail bound:   <= %.3e", res.Tail.UpperFloat64())
		env.logger.Infof("  C_right:      [%.15f, %.15f]", res.Bound.LowerFloat64(), res.Bound.UpperFloat64())
		env.logger.Infof("  Width:        %.3e", res.Bound.WidthFloat64())

		results := map[string]interface{}{
			"cutoff":        res.Cutoff,
			"prime_count":   res.PrimeCount,
			"partial_lower": res.PartialSum.LowerFloat64(),
			"partial_upper": res.PartialSum.UpperFloat64(),
			"tail_upper":    res.Tail.UpperFloat64(),
			"lower":         res.Bound.LowerFloat64(),
			"upper":         res.Bound.UpperFloat64(),
		}

		if crossCheck || env.cfg.Precision.CrossCheck {
			v, err := rightedge.CrossCheck(env.cfg.Precision.Cutoff, env.cfg.Precision.CrossCheckBits)
			if err != nil {
				env.logger.WithError(err).Warn("Cross-check failed")
			} else {
				diff := math.Abs(v - res.PartialSum.MidFloat64())
				env.logger.Infof("  Cross-check:  %.15f (|diff| = %.3e)", v, diff)
				if !res.Bound.ContainsFloat64(v) {
					env.logger.Error("Cross-check value escapes the certified enclosure")
				}
				results["cross_check"] = v
			}

			pp, err := rightedge.PowerPass(ctx, env.cfg.Precision.Cutoff)
			if err != nil {
				env.logger.WithError(err).Warn("Prime-power pass failed")
			} else {
				env.logger.Infof("  Power pass:   [%.15f, %.15f]", pp.LowerFloat64(), pp.UpperFloat64())
				if pp.Cmp(res.PartialSum) != 0 {
					env.logger.Error("Prime-power pass disagrees with the closed-form partial sum")
				}
				results["power_pass_lower"] = pp.LowerFloat64()
				results["power_pass_upper"] = pp.UpperFloat64()
			}
		}

		params := map[string]interface{}{
			"cutoff": env.cfg.Precision.Cutoff,
			"bits":   env.cfg.Precision.Bits,
		}
		env.saveJSON("cright", params, results)
		env.record(cmd.Context(), "cright", params, results, nil, nil, "PASS")
	},
}

// runConvergenceTable shows the enclosure tightening across the
// standard cutoffs and cross-checks the largest one.
func runConvergenceTable(cmd *cobra.Command, env *appEnv, ctx interval.Context) {
	cutoffs := []int{1000, 10000, 100000, 1000000}

	env.logger.Info("Convergence of the right-edge enclosure:")
	env.logger.Infof("  %-10s %-9s %-22s %-22s %-12s", "P", "primes", "lower", "upper", "width")

	type row struct {
		Cutoff     int     `json:"cutoff"`
		PrimeCount int     `json:"prime_count"`
		Lower      float64 `json:"lower"`
		Upper      float64 `json:"upper"`
		Width      float64 `json:"width"`
	}
	rows := make([]row, 0, len(cutoffs))
	for _, p := range cutoffs {
		res, err := rightedge.Compute(ctx, p)
		if err != nil {
			exitf(" C_right computation failed at P=%d: %v", p, err)
		}
		env.logger.Infof("  %-10d %-9d %-22.15f %-22.15f %-12.3e",
			p, res.PrimeCount, res.Bound.LowerFloat64(), res.Bound.UpperFloat64(), res.Bound.WidthFloat64())
		rows = append(rows, row{
			Cutoff:     p,
			PrimeCount: res.PrimeCount,
			Lower:      res.Bound.LowerFloat64(),
			Upper:      res.Bound.UpperFloat64(),
			Width:      res.Bound.WidthFloat64(),
		})
	}

	v, err := rightedge.CrossCheck(cutoffs[0], env.cfg.Precision.CrossCheckBits)
	if err != nil {
		env.logger.WithError(err).Warn("Cross-check failed")
	} else {
		env.logger.Infof("Independent partial sum at P=%d: %.15f", cutoffs[0], v)
	}

	p := map[string]interface{}{"bits": env.cfg.Precision.Bits}
	env.saveJSON("cright_verify", p, rows)
	env.record(cmd.Context(), "cright_verify", p, rows, nil, nil, "PASS")
}

func init() {
	crightCmd.Flags().BoolVar(&crossCheck, "cross-check", false, "Re-evaluate the partial sum with an independent high-precision library")
	crightCmd.Flags().BoolVar(&flagVerify, "verify", false, "Print the convergence table across the standard cutoffs")
	rootCmd.AddCommand(crightCmd)
}
