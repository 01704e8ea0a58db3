package main

import (
	"github.com/spf13/cobra"

	"github.com/specator-tlca/RN/internal/config"
)

// Window flags shared by the measurement subcommands. Overrides are
// applied on top of the loaded configuration, zero meaning "keep".
var (
	flagR0       float64
	flagC        float64
	flagKappa    float64
	flagT        float64
	flagExponent string
	flagModel    string
	flagSamples  int
	flagSeed     int64
)

func bindWindowFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&flagR0, "r0", 0, "Detection radius R0 (overrides config)")
	cmd.Flags().Float64Var(&flagC, "c", 0, "Window width coefficient c (overrides config)")
	cmd.Flags().Float64Var(&flagKappa, "kappa", 0, "Split width coefficient kappa (overrides config)")
	cmd.Flags().Float64Var(&flagT, "T", 0, "Evaluation height T (overrides config)")
	cmd.Flags().StringVar(&flagExponent, "exponent", "", "Sub-Weyl exponent: current, huxley, bourgain, hypothetical")
	cmd.Flags().StringVar(&flagModel, "model", "", "Averaging model: toy, realistic, conservative")
	cmd.Flags().IntVar(&flagSamples, "samples", 0, "Monte Carlo samples (0 = closed form)")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "Monte Carlo seed (overrides config)")
}

func applyWindowOverrides(cfg *config.Config) {
	if flagR0 > 0 {
		cfg.Window.R0 = flagR0
	}
	if flagC > 0 {
		cfg.Window.C = flagC
	}
	if flagKappa > 0 {
		cfg.Window.Kappa = flagKappa
	}
	if flagT > 0 {
		cfg.Window.T = flagT
	}
	if flagExponent != "" {
		cfg.Window.Exponent = flagExponent
	}
	if flagModel != "" {
		cfg.Window.Model = flagModel
	}
	if flagSamples > 0 {
		cfg.Window.Samples = flagSamples
	}
	if flagSeed != 0 {
		cfg.Window.Seed = flagSeed
	}
}
