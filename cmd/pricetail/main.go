// Package main is the entry point for the pricetail CLI.
//
// Run with no arguments, pricetail reads prices.csv every five seconds and
// prints the latest row until interrupted.
//
// Usage:
//
//	pricetail                           # Watch prices.csv every 5s
//	pricetail -c pricetail.yaml         # Watch with a config file
//	pricetail once --source prices.csv  # Print the latest row and exit
//	pricetail validate -c pricetail.yaml
//	pricetail version
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// loadEnvFunc loads a .env file from the working directory, if present,
// so ${VAR} references in the config resolve against it.
var loadEnvFunc = godotenv.Load

// rootCmd watches the source when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "pricetail",
	Short: "Print the latest row of a CSV price feed",
	Long: `pricetail tails a CSV price file written by another process.

Every interval it reads the file, takes the last row and prints:

  Timestamp: <t>, BTC Price: <b>, ETH Price: <e>, SOL Price: <s>

If the file is missing, empty or malformed it prints a line starting with
"Error reading CSV:" and tries again on the next cycle.

With no flags it watches prices.csv every 5 seconds. Stop it with Ctrl+C.

Example config:
  source: ${PRICES_CSV:-prices.csv}
  interval: 5s
  columns:
    timestamp: "timestamp (date/time)"`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is normal
		_ = loadEnvFunc()
	},
	RunE:         runWatch,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this pricetail binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pricetail %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
