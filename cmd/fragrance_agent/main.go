// Package main provides the entry point for the fragrance recipe CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/fragrance-customizer/internal/config"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	logLevel   string

	// appConfig is populated by the root PersistentPreRunE.
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fragrance_agent",
	Short: "Fragrance recipe customizer",
	Long: `Fragrance recipe customizer turns a base fragrance profile and structured
user feedback into a blended ingredient recipe for 10ml and 50ml bottles,
a sampling test guide and a written rationale. Recipes can be generated from
the command line or served over a REST API.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (defaults to $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed human-readable output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	appConfig = cfg
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
