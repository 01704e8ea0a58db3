// Package config manages layered configuration: defaults, YAML file,
// environment, then command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// PrecisionConfig controls the interval arithmetic substrate.
type PrecisionConfig struct {
	Bits           uint `mapstructure:"bits" yaml:"bits" json:"bits"`
	Cutoff         int  `mapstructure:"cutoff" yaml:"cutoff" json:"cutoff"`
	CrossCheck     bool `mapstructure:"cross_check" yaml:"cross_check" json:"cross_check"`
	CrossCheckBits uint `mapstructure:"cross_check_bits" yaml:"cross_check_bits" json:"cross_check_bits"`
}

// WindowConfig fixes the default window profile.
type WindowConfig struct {
	C        float64 `mapstructure:"c" yaml:"c" json:"c"`
	Kappa    float64 `mapstructure:"kappa" yaml:"kappa" json:"kappa"`
	R0       float64 `mapstructure:"r0" yaml:"r0" json:"r0"`
	C1       float64 `mapstructure:"c1" yaml:"c1" json:"c1"`
	T        float64 `mapstructure:"t" yaml:"t" json:"t"`
	Exponent string  `mapstructure:"exponent" yaml:"exponent" json:"exponent"`
	Model    string  `mapstructure:"model" yaml:"model" json:"model"`
	Samples  int     `mapstructure:"samples" yaml:"samples" json:"samples"`
	Seed     int64   `mapstructure:"seed" yaml:"seed" json:"seed"`
}

// SearchConfig shapes the optimizer grid.
type SearchConfig struct {
	MinMargin   float64 `mapstructure:"min_margin" yaml:"min_margin" json:"min_margin"`
	R0Min       float64 `mapstructure:"r0_min" yaml:"r0_min" json:"r0_min"`
	R0Max       float64 `mapstructure:"r0_max" yaml:"r0_max" json:"r0_max"`
	R0Steps     int     `mapstructure:"r0_steps" yaml:"r0_steps" json:"r0_steps"`
	CMin        float64 `mapstructure:"c_min" yaml:"c_min" json:"c_min"`
	CMax        float64 `mapstructure:"c_max" yaml:"c_max" json:"c_max"`
	CSteps      int     `mapstructure:"c_steps" yaml:"c_steps" json:"c_steps"`
	KappaMin    float64 `mapstructure:"kappa_min" yaml:"kappa_min" json:"kappa_min"`
	KappaMax    float64 `mapstructure:"kappa_max" yaml:"kappa_max" json:"kappa_max"`
	KappaSteps  int     `mapstructure:"kappa_steps" yaml:"kappa_steps" json:"kappa_steps"`
	Parallelism int     `mapstructure:"parallelism" yaml:"parallelism" json:"parallelism"`
}

// OutputConfig controls artifact persistence and logging.
type OutputConfig struct {
	DataDir     string `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	HistoryDB   string `mapstructure:"history_db" yaml:"history_db" json:"history_db"`
	SaveJSON    bool   `mapstructure:"save_json" yaml:"save_json" json:"save_json"`
	SaveCSV     bool   `mapstructure:"save_csv" yaml:"save_csv" json:"save_csv"`
	SaveHistory bool   `mapstructure:"save_history" yaml:"save_history" json:"save_history"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
}

// Config is the full configuration tree.
type Config struct {
	Precision PrecisionConfig `mapstructure:"precision" yaml:"precision" json:"precision"`
	Window    WindowConfig    `mapstructure:"window" yaml:"window" json:"window"`
	Search    SearchConfig    `mapstructure:"search" yaml:"search" json:"search"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
}

// SetDefaults registers every default in viper so flags and env vars
// layer on top.
func SetDefaults() {
	viper.SetDefault("precision.bits", 96)
	viper.SetDefault("precision.cutoff", 100000)
	viper.SetDefault("precision.cross_check", false)
	viper.SetDefault("precision.cross_check_bits", 128)

	viper.SetDefault("window.c", 0.25)
	viper.SetDefault("window.kappa", 2.0)
	viper.SetDefault("window.r0", 0.125)
	viper.SetDefault("window.c1", 2.0/3.0)
	viper.SetDefault("window.t", 1e12)
	viper.SetDefault("window.exponent", "current")
	viper.SetDefault("window.model", "realistic")
	viper.SetDefault("window.samples", 0)
	viper.SetDefault("window.seed", 42)

	viper.SetDefault("search.min_margin", 10.0)
	viper.SetDefault("search.r0_min", 0.05)
	viper.SetDefault("search.r0_max", 0.30)
	viper.SetDefault("search.r0_steps", 6)
	viper.SetDefault("search.c_min", 0.15)
	viper.SetDefault("search.c_max", 0.45)
	viper.SetDefault("search.c_steps", 7)
	viper.SetDefault("search.kappa_min", 0.5)
	viper.SetDefault("search.kappa_max", 2.5)
	viper.SetDefault("search.kappa_steps", 5)
	viper.SetDefault("search.parallelism", 0) // 0 = auto

	viper.SetDefault("output.data_dir", "data")
	viper.SetDefault("output.history_db", "data/runs.db")
	viper.SetDefault("output.save_json", true)
	viper.SetDefault("output.save_csv", false)
	viper.SetDefault("output.save_history", true)
	viper.SetDefault("output.log_level", "info")
}

// Default returns the built-in configuration.
func Default() *Config {
	SetDefaults()
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		// Defaults always unmarshal; a failure here is a programming error.
		panic(err)
	}
	return &cfg
}

// Load reads the YAML file at path on top of the defaults. A missing
// file is not an error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	SetDefaults()
	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the computations cannot accept.
func (c *Config) Validate() error {
	if c.Precision.Bits < 24 {
		return fmt.Errorf("precision.bits = %d, want at least 24", c.Precision.Bits)
	}
	if c.Precision.Cutoff < 100 {
		return fmt.Errorf("precision.cutoff = %d, want at least 100", c.Precision.Cutoff)
	}
	if !(c.Window.C > 0) {
		return fmt.Errorf("window.c = %v, want c > 0", c.Window.C)
	}
	if !(c.Window.Kappa > 0) {
		return fmt.Errorf("window.kappa = %v, want kappa > 0", c.Window.Kappa)
	}
	if !(c.Window.R0 > 0) || !(c.Window.R0 < c.Window.C1) {
		return fmt.Errorf("window.r0 = %v, want 0 < r0 < %v", c.Window.R0, c.Window.C1)
	}
	if !(c.Window.T > 1) {
		return fmt.Errorf("window.t = %v, want t > 1", c.Window.T)
	}
	return nil
}

// SaveDefault writes the configuration as YAML with a generated header.
func SaveDefault(path string, cfg *Config, version string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	header := `# RN Certificate Configuration v` + version + `
# Generated automatically on ` + time.Now().Format("2006-01-02 15:04:05") + `

`
	return os.WriteFile(path, []byte(header+string(data)), 0644)
}
