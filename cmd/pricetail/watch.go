package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/pricetail"
	"github.com/jpalmerr/pricetail/config"
	"github.com/spf13/cobra"
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "path to config file (optional)")
	flags.StringP("source", "s", "", "CSV file to read (default prices.csv)")
	flags.Duration("interval", 0, "wait between reads (default 5s)")
	flags.Int("http-port", 0, "serve the latest reading over HTTP on this port (0 disables)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default info)")
}

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig reads the config file if one was given, then applies flag
// overrides and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source, _ = flags.GetString("source")
	}
	if flags.Changed("interval") {
		d, _ := flags.GetDuration("interval")
		cfg.Interval = config.Duration(d)
	}
	if flags.Changed("http-port") {
		cfg.HTTPPort, _ = flags.GetInt("http-port")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newMonitor builds a Monitor from the command's config and flags.
func newMonitor(cmd *cobra.Command) (*pricetail.Monitor, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	level, _ := cfg.SlogLevel()
	logger := newLogger(cmd.ErrOrStderr(), level)

	opts := append(config.BuildOptions(cfg),
		pricetail.WithOutput(cmd.OutOrStdout()),
		pricetail.WithLogger(logger),
	)

	m, err := pricetail.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	return m, logger, nil
}

// runWatch reads the source on every interval until SIGINT or SIGTERM.
func runWatch(cmd *cobra.Command, args []string) error {
	m, logger, err := newMonitor(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
