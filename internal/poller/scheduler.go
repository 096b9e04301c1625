package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result holds the outcome of one read cycle.
type Result struct {
	// Source is the path that was read.
	Source string

	// Row is the latest record. Zero when Err is set.
	Row Row

	// ReadAt is when the cycle started.
	ReadAt time.Time

	// Duration is the time taken to open and walk the file.
	Duration time.Duration

	// Err is the cycle failure, if any.
	Err error
}

// ReadFunc reads the latest row from a source. [ReadLatest] satisfies it.
type ReadFunc func(path string, cols Columns) (Row, error)

// Scheduler reads a single source on a fixed interval.
//
// Cycles are strictly sequential: the source is read immediately on start,
// and each subsequent read begins one interval after the previous read
// finished. There is no backoff or jitter; a failed cycle is retried by the
// next one. Results are emitted to a channel that is closed when the
// scheduler stops.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	source   string
	columns  Columns
	interval time.Duration
	read     ReadFunc
	results  chan Result
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewScheduler creates a new [Scheduler] reading source every interval.
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop]. Results are available via [Scheduler.Results].
func NewScheduler(source string, cols Columns, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:   source,
		columns:  cols,
		interval: interval,
		read:     ReadLatest,
		results:  make(chan Result, 1),
		logger:   logger,
	}
}

// WithReader replaces the function used to read the source. Must be called
// before Start.
func (s *Scheduler) WithReader(read ReadFunc) *Scheduler {
	s.read = read
	return s
}

// Results returns a receive-only channel that emits one [Result] per cycle.
//
// The channel is closed when the scheduler stops.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Start begins the read loop in a background goroutine.
//
// Start is non-blocking. If ctx is nil, context.Background() is used.
// Start is idempotent; if Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-timer.C:
			}

			result := s.poll()
			select {
			case s.results <- result:
			case <-loopCtx.Done():
				return
			}

			// interval counts from the end of the cycle, not its start
			timer.Reset(s.interval)
		}
	}()
}

// Stop halts the scheduler and waits for the loop to exit.
//
// A read already in progress is allowed to finish. Stop is idempotent and
// safe to call before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// Poll performs a single cycle synchronously.
func (s *Scheduler) Poll() Result {
	return s.poll()
}

func (s *Scheduler) poll() Result {
	start := time.Now()
	row, err := s.safeRead()
	return Result{
		Source:   s.source,
		Row:      row,
		ReadAt:   start,
		Duration: time.Since(start),
		Err:      err,
	}
}

// safeRead calls the reader with panic recovery.
// A panic is logged with a correlation ID and reported as a cycle failure.
func (s *Scheduler) safeRead() (row Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			s.logger.Error("reader panic",
				"correlation_id", correlationID,
				"source", s.source,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			row = Row{}
			err = fmt.Errorf("reader panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.read(s.source, s.columns)
}
