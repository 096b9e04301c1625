package pricetail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/jpalmerr/pricetail/internal/poller"
	"github.com/jpalmerr/pricetail/internal/server"
	"github.com/jpalmerr/pricetail/internal/store"
)

const (
	// DefaultSource is the file read when no source is configured.
	DefaultSource = "prices.csv"

	// DefaultInterval is the wait between cycles when none is configured.
	DefaultInterval = 5 * time.Second
)

// Monitor tails a CSV price file, printing the latest row on every cycle.
//
// A Monitor is created with [New] and run with [Monitor.Start]:
//
//	m, err := pricetail.New(pricetail.WithSource("prices.csv"))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until context cancelled
//
// The source file is only ever read.
type Monitor struct {
	source    string
	interval  time.Duration
	columns   Columns
	out       io.Writer
	logger    *slog.Logger
	httpPort  int
	httpLn    net.Listener
	callbacks []func(Reading)
}

// New creates a [Monitor] with the given options.
//
// Defaults:
//   - Source: prices.csv
//   - Interval: 5 seconds
//   - Columns: [DefaultColumns]
//   - Output: os.Stdout
//   - HTTP view: disabled
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		source:   DefaultSource,
		interval: DefaultInterval,
		columns:  DefaultColumns(),
		out:      os.Stdout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		source:    cfg.source,
		interval:  cfg.interval,
		columns:   cfg.columns,
		out:       cfg.out,
		logger:    logger,
		httpPort:  cfg.httpPort,
		httpLn:    cfg.httpLn,
		callbacks: cfg.callbacks,
	}, nil
}

// Poll reads the last row of the CSV file at path and writes exactly one
// line to w: the formatted record, or a diagnostic line starting with
// [DiagnosticPrefix]. It uses [DefaultColumns], logs nothing and never
// panics on a missing, empty or malformed file. Use a [Monitor] with
// [WithLogger] to get cycle logs.
func Poll(w io.Writer, path string) {
	m := &Monitor{
		source:   path,
		interval: DefaultInterval,
		columns:  DefaultColumns(),
		out:      w,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	m.PollOnce()
}

// PollOnce runs a single cycle: read the source, write one line and run
// callbacks. It returns the reading for callers that want more than the line.
func (m *Monitor) PollOnce() Reading {
	result := m.newScheduler().Poll()
	reading := toReading(result)
	m.emit(reading)
	return reading
}

// Start runs the read loop until ctx is cancelled.
//
// The source is read immediately, then again after each interval. Every
// cycle writes one line to the output. When an HTTP port is configured the
// latest reading is also served over HTTP, on [WithHTTPListener] when given.
//
// Returns nil on graceful shutdown, or an error if the HTTP view cannot bind.
func (m *Monitor) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		if m.httpLn != nil {
			_ = m.httpLn.Close()
		}
		return nil
	}

	m.logger.Info("pricetail starting",
		"source", m.source,
		"interval", m.interval.String(),
	)

	latest := store.NewMemoryStore()

	switch {
	case m.httpLn != nil:
		httpServer := server.NewServer(latest, 0, m.logger)
		httpServer.Serve(ctx, m.httpLn)
		m.logger.Info("http view available", "addr", httpServer.Addr().String())
	case m.httpPort > 0:
		httpServer := server.NewServer(latest, m.httpPort, m.logger)
		if err := httpServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		m.logger.Info("http view available", "url", fmt.Sprintf("http://localhost:%d/api/latest", m.httpPort))
	}

	scheduler := m.newScheduler()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// results closes when ctx is cancelled
	for result := range scheduler.Results() {
		reading := toReading(result)
		m.emit(reading)
		latest.Update(toStoreReading(reading))
	}

	m.logger.Info("pricetail stopped")
	return nil
}

// Source returns the configured CSV path.
func (m *Monitor) Source() string {
	return m.source
}

// Interval returns the configured wait between cycles.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Columns returns the configured header names.
func (m *Monitor) Columns() Columns {
	return m.columns
}

func (m *Monitor) newScheduler() *poller.Scheduler {
	return poller.NewScheduler(m.source, poller.Columns(m.columns), m.interval, m.logger)
}

// emit writes the reading's line, logs the cycle and runs callbacks.
func (m *Monitor) emit(reading Reading) {
	if _, err := fmt.Fprintln(m.out, reading.Line()); err != nil {
		m.logger.Error("failed to write line", "error", err)
	}

	if reading.Err != nil {
		m.logger.Warn("cycle failed",
			"source", reading.Source,
			"error", reading.Err.Error(),
		)
	} else {
		m.logger.Debug("cycle completed",
			"source", reading.Source,
			"timestamp", reading.Record.Timestamp,
			"read_ms", reading.Duration.Milliseconds(),
		)
	}

	for _, cb := range m.callbacks {
		invokeCallbackSafe(cb, reading, m.logger)
	}
}

// toReading converts a poller result to the public type.
func toReading(r poller.Result) Reading {
	return Reading{
		Source: r.Source,
		Record: PriceRecord{
			Timestamp: r.Row.Timestamp,
			BTC:       r.Row.BTC,
			ETH:       r.Row.ETH,
			SOL:       r.Row.SOL,
		},
		ReadAt:   r.ReadAt,
		Duration: r.Duration,
		Err:      r.Err,
	}
}

// toStoreReading converts a reading to its storage representation.
func toStoreReading(r Reading) store.Reading {
	var errStr *string
	if r.Err != nil {
		s := r.Err.Error()
		errStr = &s
	}

	return store.Reading{
		Source:     r.Source,
		Timestamp:  r.Record.Timestamp,
		BTC:        r.Record.BTC,
		ETH:        r.Record.ETH,
		SOL:        r.Record.SOL,
		ReadAt:     r.ReadAt,
		ReadTimeMs: r.Duration.Milliseconds(),
		Error:      errStr,
	}
}

// invokeCallbackSafe calls a reading callback with panic recovery.
func invokeCallbackSafe(cb func(Reading), reading Reading, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("reading callback panicked",
				"panic", r,
				"source", reading.Source,
			)
		}
	}()
	cb(reading)
}
