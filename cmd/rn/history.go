package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagHistoryKind  string
	flagHistoryLimit int
	flagHistoryBest  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Run: func(cmd *cobra.Command, args []string) {
		env, err := newAppEnv()
		if err != nil {
			exitf(" %v", err)
		}
		defer env.Close()
		if env.runs == nil {
			exitf(" Run history is disabled (output.save_history = false or --no-save)")
		}

		if flagHistoryBest {
			best, err := env.runs.BestRun(cmd.Context(), flagHistoryKind)
			if errors.Is(err, sql.ErrNoRows) {
				env.logger.Infof("No passing %s runs recorded yet", flagHistoryKind)
				return
			}
			if err != nil {
				exitf(" History query failed: %v", err)
			}
			env.logger.Infof("Best %s run %s (%s):", best.Kind, best.ID, best.CreatedAt.Format("2006-01-02 15:04:05"))
			env.logger.Infof("  log T0: %.4f | margin: %.1f%%", best.LogT0.Float64, best.MarginPct.Float64)
			env.logger.Infof("  params: %s", string(best.Params))
			return
		}

		runs, err := env.runs.ListRuns(cmd.Context(), flagHistoryKind, flagHistoryLimit)
		if err != nil {
			exitf(" History query failed: %v", err)
		}
		if len(runs) == 0 {
			env.logger.Info("No runs recorded yet")
			return
		}
		env.logger.Infof("  %-36s %-12s %-20s %-9s %-8s", "id", "kind", "created", "margin%", "status")
		for _, run := range runs {
			margin := "-"
			if run.MarginPct.Valid {
				margin = fmt.Sprintf("%.1f", run.MarginPct.Float64)
			}
			env.logger.Infof("  %-36s %-12s %-20s %-9s %-8s",
				run.ID, run.Kind, run.CreatedAt.Format("2006-01-02 15:04:05"), margin, run.Status)
		}
	},
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryKind, "kind", "", "Filter by run kind (cright, cthin, threshold, optimize, horizontals)")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().BoolVar(&flagHistoryBest, "best", false, "Show the passing run with the lowest certified threshold")
	rootCmd.AddCommand(historyCmd)
}
