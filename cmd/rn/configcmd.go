package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/specator-tlca/RN/internal/config"
)

var flagForceConfig bool

var configCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(configPath); err == nil && !flagForceConfig {
			exitf(" %s already exists (use --force to overwrite)", configPath)
		}
		cfg := config.Default()
		if err := config.SaveDefault(configPath, cfg, Version); err != nil {
			exitf(" Could not write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", configPath)
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagForceConfig, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(configCmd)
}
