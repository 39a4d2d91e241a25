package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/capital/config"
	"github.com/rustyeddy/capital/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "capital",
	Short: "Track account capital from order and market events",
	Long: `Capital keeps an account's cash, reserved cash and commission in step with
the orders placed against it and the fills and bars reported for them.

It provides tools for:
  - Replaying recorded event streams into a ledger
  - Journaling every ledger snapshot to SQLite or CSV
  - Driving a simulated broker against a ledger
  - Inspecting journaled runs`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
}

// loadConfig reads --config, or returns the defaults when it is not set.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, component string) zerolog.Logger {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logging.NewConsole(level, component)
}
