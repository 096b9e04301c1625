package pricetail

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	source    string
	interval  time.Duration
	columns   Columns
	out       io.Writer
	logger    *slog.Logger
	httpPort  int
	httpLn    net.Listener
	callbacks []func(Reading)
}

// Option is a function that configures a [Monitor] during construction.
//
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithSource sets the CSV file to read. The path is used exactly as given.
// Defaults to "prices.csv".
//
// Returns an error if the path is empty.
func WithSource(path string) Option {
	return func(cfg *monitorConfig) error {
		if path == "" {
			return errors.New("source path cannot be empty")
		}
		cfg.source = path
		return nil
	}
}

// WithInterval sets the wait between the end of one read and the start of
// the next. Defaults to 5 seconds.
//
// Example:
//
//	m, err := pricetail.New(
//	    pricetail.WithSource("prices.csv"),
//	    pricetail.WithInterval(10 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithColumns sets the header names for the four price fields.
// Defaults to [DefaultColumns].
//
// Returns an error if any name is empty or two fields share a name.
func WithColumns(c Columns) Option {
	return func(cfg *monitorConfig) error {
		if err := c.validate(); err != nil {
			return err
		}
		cfg.columns = c
		return nil
	}
}

// WithOutput sets where price and diagnostic lines are written.
// Defaults to os.Stdout.
//
// Returns an error if w is nil.
func WithOutput(w io.Writer) Option {
	return func(cfg *monitorConfig) error {
		if w == nil {
			return errors.New("output writer cannot be nil")
		}
		cfg.out = w
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for operational events.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithHTTPPort serves the latest reading over HTTP on port.
// Zero, the default, disables the HTTP view.
//
// Returns an error if the port is outside 0-65535.
func WithHTTPPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("http port must be between 0 and 65535, got %d", port)
		}
		cfg.httpPort = port
		return nil
	}
}

// WithHTTPListener serves the HTTP view on an already bound listener
// instead of binding [WithHTTPPort]. The monitor closes ln when Start returns.
//
// Returns an error if ln is nil.
func WithHTTPListener(ln net.Listener) Option {
	return func(cfg *monitorConfig) error {
		if ln == nil {
			return errors.New("http listener cannot be nil")
		}
		cfg.httpLn = ln
		return nil
	}
}

// WithReadingCallback registers a function called after every cycle, once
// the line has been written.
//
// Callbacks run synchronously on the read loop, in registration order, so
// they must not block. Panics are recovered and logged.
//
// Example:
//
//	m, err := pricetail.New(
//	    pricetail.WithReadingCallback(func(r pricetail.Reading) {
//	        if r.Err != nil {
//	            metrics.Inc("pricetail_cycle_failures")
//	        }
//	    }),
//	)
//
// Nil callbacks are ignored.
func WithReadingCallback(cb func(Reading)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
