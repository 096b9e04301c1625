package main

import (
	"github.com/spf13/cobra"
)

// onceCmd reads the source a single time.
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Print the latest row once and exit",
	Long: `Read the source once and print the latest row, or a diagnostic line if
the file cannot be read.

The exit code is 0 in both cases, matching a single cycle of the watcher.
Invalid configuration exits with code 1.

Example:
  pricetail once --source prices.csv`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	m, _, err := newMonitor(cmd)
	if err != nil {
		return err
	}

	m.PollOnce()
	return nil
}
