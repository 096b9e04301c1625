package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubReader returns a ReadFunc that counts calls and returns row.
func stubReader(calls *atomic.Int32, row Row, err error) ReadFunc {
	return func(path string, cols Columns) (Row, error) {
		calls.Add(1)
		return row, err
	}
}

// TestScheduler_StopBeforeStart verifies that calling Stop() on a scheduler
// that was never started does not panic and is a safe no-op.
func TestScheduler_StopBeforeStart(t *testing.T) {
	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Minute, testLogger())

	// this must not panic
	scheduler.Stop()
}

// TestScheduler_StopTwice verifies that Stop() is idempotent.
func TestScheduler_StopTwice(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Minute, testLogger()).
		WithReader(stubReader(&calls, Row{}, nil))
	scheduler.Start(context.Background())

	go func() {
		for range scheduler.Results() {
		}
	}()

	scheduler.Stop()
	scheduler.Stop()
}

// TestScheduler_PollsImmediately verifies the first cycle runs on start
// rather than after the first interval.
func TestScheduler_PollsImmediately(t *testing.T) {
	var calls atomic.Int32
	want := Row{Timestamp: "t1", BTC: "1", ETH: "2", SOL: "3", Line: 2}
	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Hour, testLogger()).
		WithReader(stubReader(&calls, want, nil))
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	select {
	case result := <-scheduler.Results():
		if result.Err != nil {
			t.Fatalf("result.Err = %v", result.Err)
		}
		if result.Row != want {
			t.Errorf("result.Row = %+v, want %+v", result.Row, want)
		}
		if result.Source != "prices.csv" {
			t.Errorf("result.Source = %q, want prices.csv", result.Source)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first result")
	}
}

// TestScheduler_RepeatsOnInterval verifies the loop keeps cycling.
func TestScheduler_RepeatsOnInterval(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler("prices.csv", DefaultColumns(), 10*time.Millisecond, testLogger()).
		WithReader(stubReader(&calls, Row{}, nil))
	scheduler.Start(context.Background())

	received := 0
	timeout := time.After(2 * time.Second)
	for received < 3 {
		select {
		case <-scheduler.Results():
			received++
		case <-timeout:
			t.Fatalf("received %d results, want at least 3", received)
		}
	}

	scheduler.Stop()
}

// TestScheduler_FailureDoesNotStopLoop verifies a failed cycle is followed
// by further cycles.
func TestScheduler_FailureDoesNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	readErr := errors.New("boom")
	scheduler := NewScheduler("prices.csv", DefaultColumns(), 10*time.Millisecond, testLogger()).
		WithReader(stubReader(&calls, Row{}, readErr))
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	for i := 0; i < 2; i++ {
		select {
		case result := <-scheduler.Results():
			if !errors.Is(result.Err, readErr) {
				t.Errorf("result.Err = %v, want %v", result.Err, readErr)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for result %d", i)
		}
	}
}

// TestScheduler_CyclesAreSequential verifies reads never overlap even when a
// read takes longer than the interval.
func TestScheduler_CyclesAreSequential(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	read := func(path string, cols Columns) (Row, error) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return Row{}, nil
	}

	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Millisecond, testLogger()).
		WithReader(read)
	scheduler.Start(context.Background())

	for i := 0; i < 5; i++ {
		<-scheduler.Results()
	}
	scheduler.Stop()

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent reads = %d, want 1", got)
	}
}

// TestScheduler_ReaderPanicRecovered verifies a panicking reader becomes a
// cycle failure carrying a correlation ID.
func TestScheduler_ReaderPanicRecovered(t *testing.T) {
	read := func(path string, cols Columns) (Row, error) {
		panic("bad reader")
	}

	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Hour, testLogger()).
		WithReader(read)

	result := scheduler.Poll()
	if result.Err == nil {
		t.Fatal("expected error from panicking reader")
	}
	if !strings.Contains(result.Err.Error(), "correlation_id") {
		t.Errorf("error %q should contain correlation_id", result.Err.Error())
	}
}

// TestScheduler_StopAfterStart verifies the results channel is closed after Stop.
func TestScheduler_StopAfterStart(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Minute, testLogger()).
		WithReader(stubReader(&calls, Row{}, nil))
	scheduler.Start(context.Background())

	go func() {
		for range scheduler.Results() {
		}
	}()

	time.Sleep(20 * time.Millisecond)
	scheduler.Stop()

	select {
	case _, ok := <-scheduler.Results():
		if ok {
			t.Error("expected results channel to be closed after Stop()")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for results channel to close")
	}
}

// TestScheduler_ConcurrentStartStop verifies that calling Start() and Stop()
// concurrently does not cause a race condition or panic.
// Run with: go test -race ./internal/poller/...
func TestScheduler_ConcurrentStartStop(t *testing.T) {
	for i := 0; i < 100; i++ {
		var calls atomic.Int32
		scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Minute, testLogger()).
			WithReader(stubReader(&calls, Row{}, nil))

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			scheduler.Start(context.Background())
		}()

		go func() {
			defer wg.Done()
			scheduler.Stop()
		}()

		wg.Wait()
		scheduler.Stop()

		for range scheduler.Results() {
		}
	}
}

// TestScheduler_StopBeforeStartThenStart verifies Start after Stop is a no-op.
func TestScheduler_StopBeforeStartThenStart(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Minute, testLogger()).
		WithReader(stubReader(&calls, Row{}, nil))

	scheduler.Stop()
	scheduler.Start(context.TODO())
	scheduler.Stop()

	if calls.Load() != 0 {
		t.Errorf("reader called %d times, want 0", calls.Load())
	}
}

// TestScheduler_ContextCancellation verifies that cancelling the parent
// context ends the loop and closes the results channel.
func TestScheduler_ContextCancellation(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := NewScheduler("prices.csv", DefaultColumns(), time.Minute, testLogger()).
		WithReader(stubReader(&calls, Row{}, nil))
	scheduler.Start(ctx)

	go func() {
		for range scheduler.Results() {
		}
	}()

	cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not complete after context cancellation")
	}
}
