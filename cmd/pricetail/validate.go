package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the watcher.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a pricetail configuration file without reading the source.

This command parses the YAML, expands environment variables, applies flag
overrides and validates all fields. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  pricetail validate -c pricetail.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return errors.New(`required flag(s) "config" not set`)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Source:    %s\n", cfg.Source)
	fmt.Fprintf(out, "  Interval:  %s\n", cfg.Interval.Duration())
	fmt.Fprintf(out, "  Columns:   %s, %s, %s, %s\n",
		cfg.Columns.Timestamp, cfg.Columns.BTC, cfg.Columns.ETH, cfg.Columns.SOL)
	if cfg.HTTPPort > 0 {
		fmt.Fprintf(out, "  HTTP port: %d\n", cfg.HTTPPort)
	} else {
		fmt.Fprintf(out, "  HTTP port: disabled\n")
	}

	return nil
}
