// Package main is the entry point for the binotree binary: an HTTP pricing
// service plus command line pricing and Monte Carlo cross-checks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banachtech/binotree/config"
	"github.com/banachtech/binotree/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "binotree",
		Short:         "Binomial lattice pricing and Snell envelope decomposition",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file with secrets such as the database source")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level (debug, info, warn, error); overrides the config file")

	rootCmd.AddCommand(newServeCmd(), newPriceCmd(), newSimulateCmd(), newEstimateCmd())
	return rootCmd
}

// loadConfig reads the configuration named by the persistent flags and
// sets up logging from it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if level != "" {
		cfg.Log.Level = level
	}
	logging.SetupWriter(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, cmd.ErrOrStderr())
	return cfg, nil
}
