package sim

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidInterval = errors.New("scheduler interval must be positive")
	ErrAlreadyStarted  = errors.New("scheduler already started")
)

// Job is the work run on every scheduler tick.
type Job func(ctx context.Context) error

type SchedulerOption func(*Scheduler)

// WithOnTick registers fn to run after each successful job.
func WithOnTick(fn func(ctx context.Context, n int64)) SchedulerOption {
	return func(s *Scheduler) { s.onTick = fn }
}

// WithLimit stops the scheduler after n successful ticks.
func WithLimit(n int64) SchedulerOption {
	return func(s *Scheduler) { s.limit = n }
}

func WithLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler runs a Job on a fixed interval. Ticks are never queued: a tick
// that fires while paused, or while the job is still running, is lost.
type Scheduler struct {
	interval time.Duration
	job      Job
	onTick   func(ctx context.Context, n int64)
	limit    int64
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	paused  atomic.Bool
	ticks   atomic.Int64
	dropped atomic.Int64
}

func NewScheduler(interval time.Duration, job Job, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		interval: interval,
		job:      job,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the tick loop. It runs until ctx is done, Stop is called or
// the tick limit is reached.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
	return nil
}

// Stop ends the loop and waits for it to exit. Safe to call more than once
// and before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.done
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

func (s *Scheduler) Pause()       { s.paused.Store(true) }
func (s *Scheduler) Resume()      { s.paused.Store(false) }
func (s *Scheduler) Paused() bool { return s.paused.Load() }

// Ticks is the number of successful job runs.
func (s *Scheduler) Ticks() int64 { return s.ticks.Load() }

// Dropped is the number of ticks skipped while paused.
func (s *Scheduler) Dropped() int64 { return s.dropped.Load() }

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.paused.Load() {
				s.dropped.Add(1)
				continue
			}
			if err := s.job(ctx); err != nil {
				s.logger.Warn("scheduled tick failed", "err", err)
				continue
			}
			n := s.ticks.Add(1)
			if s.onTick != nil {
				s.onTick(ctx, n)
			}
			if s.limit > 0 && n >= s.limit {
				s.logger.Debug("scheduler tick limit reached", "ticks", n)
				return
			}
		}
	}
}
