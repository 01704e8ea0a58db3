package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specator-tlca/RN/internal/config"
	"github.com/specator-tlca/RN/internal/interval"
	"github.com/specator-tlca/RN/internal/report"
	"github.com/specator-tlca/RN/internal/store"
)

const (
	Version = "1.2.0"
	License = "MIT"
)

// ==================== COMMAND LINE INTERFACE ====================
var rootCmd = &cobra.Command{
	Use:   "rn",
	Short: "Short-window zero-counting certificate calculator",
	Long: `Computes the rigorous constants behind the short-window zero-counting
certificate: the right-edge constant C_right, the thin-strip constant
C_thin*(R0), the certified threshold T0, and the safety margin of the
averaging-window model. All certified quantities are evaluated in
interval arithmetic with directed rounding.`,
}

// Global flags
var (
	configPath string
	logLevel   string
	bits       uint
	cutoff     int
	dataDir    string
	noSave     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rn.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().UintVar(&bits, "bits", 0, "Interval precision in bits (overrides config)")
	rootCmd.PersistentFlags().IntVar(&cutoff, "cutoff", 0, "Prime cutoff P for C_right (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Artifact directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noSave, "no-save", false, "Skip JSON/CSV artifacts and run history")

	// Environment variables
	viper.SetEnvPrefix("RN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func setupLogger(cfg config.OutputConfig) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}

// appEnv bundles the shared machinery every subcommand needs.
type appEnv struct {
	cfg    *config.Config
	logger *logrus.Logger
	writer *report.Writer
	runs   *store.Store
	runID  string
}

func newAppEnv() (*appEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	// Command line overrides, re-validated afterwards.
	if bits > 0 {
		cfg.Precision.Bits = bits
	}
	if cutoff > 0 {
		cfg.Precision.Cutoff = cutoff
	}
	if dataDir != "" {
		cfg.Output.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Output.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	env := &appEnv{
		cfg:    cfg,
		logger: setupLogger(cfg.Output),
		runID:  uuid.New().String(),
	}
	logrus.SetLevel(env.logger.GetLevel())

	if !noSave && (cfg.Output.SaveJSON || cfg.Output.SaveCSV) {
		env.writer = report.NewWriter(cfg.Output.DataDir, env.logger)
	}
	if !noSave && cfg.Output.SaveHistory {
		runs, err := store.Open(cfg.Output.HistoryDB)
		if err != nil {
			env.logger.WithError(err).Warn("Run history disabled")
		} else {
			env.runs = runs
		}
	}
	return env, nil
}

func (e *appEnv) Close() {
	if e.runs != nil {
		if err := e.runs.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close run history")
		}
	}
}

func (e *appEnv) context() (interval.Context, error) {
	return interval.NewContext(e.cfg.Precision.Bits)
}

// saveJSON writes the artifact file when artifacts are enabled.
func (e *appEnv) saveJSON(kind string, params, results interface{}) {
	if e.writer == nil || !e.cfg.Output.SaveJSON {
		return
	}
	if _, err := e.writer.SaveJSON(report.Envelope{
		RunID:      e.runID,
		Kind:       kind,
		Parameters: params,
		Results:    results,
	}); err != nil {
		e.logger.WithError(err).Warn("Failed to save results")
	}
}

// record appends the run to the history database when enabled.
func (e *appEnv) record(ctx context.Context, kind string, params, results interface{}, marginPct, logT0 *float64, status string) {
	if e.runs == nil {
		return
	}
	pj, err := json.Marshal(params)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to encode run parameters")
		return
	}
	rj, err := json.Marshal(results)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to encode run results")
		return
	}
	run := store.Run{
		ID:      e.runID,
		Kind:    kind,
		Params:  pj,
		Results: rj,
		Status:  status,
	}
	if marginPct != nil {
		run.MarginPct.Float64, run.MarginPct.Valid = *marginPct, true
	}
	if logT0 != nil {
		run.LogT0.Float64, run.LogT0.Valid = *logT0, true
	}
	if err := e.runs.InsertRun(ctx, run); err != nil {
		e.logger.WithError(err).Warn("Failed to record run")
	}
}

func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Printf("RN Certificate Calculator v%s | License: %s\n", Version, License)
	fmt.Printf("Go: %s | CPUs: %d | Precision: %d bits\n", runtime.Version(), runtime.NumCPU(), cfg.Precision.Bits)
	fmt.Println()
}

func exitf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
