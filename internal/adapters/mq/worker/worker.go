// Package worker defines the runner contracts for executing queued match
// jobs asynchronously.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/crosswalk/internal/adapters/mq/queue"
	enginepkg "github.com/okian/crosswalk/internal/domain/engine"
	"github.com/okian/crosswalk/internal/domain/model"
	"github.com/okian/crosswalk/pkg/logger"
	"github.com/okian/crosswalk/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultRunnerMultiplier = 2 // multiplier for runtime.NumCPU()
	runnerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what runners read off the queue.
// Using the model.Job type for consistency.
type Job = model.Job

// Matcher executes one sweep. The engine implements this.
type Matcher interface {
	Run(ctx context.Context, left, right []model.Record, spec model.RunSpec, onProgress enginepkg.ProgressFunc) ([]model.MatchResult, model.SweepStats)
	MatchAll(ctx context.Context, left, right []model.Record, spec model.RunSpec) ([]model.MatchResult, model.SweepStats)
}

// RunStore is the slice of the run registry runners write to.
type RunStore interface {
	SetRunning(ctx context.Context, id string) error
	SetProgress(ctx context.Context, id string, percent int) error
	Complete(ctx context.Context, id string, results []model.MatchResult, stats model.SweepStats) error
}

// JobSource defines how runners receive jobs.
type JobSource interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Runner processes match jobs until stopped.
type Runner struct {
	source  JobSource
	matcher Matcher
	store   RunStore
	name    string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewRunner creates a new runner with configuration options.
func NewRunner(source JobSource, matcher Matcher, store RunStore, opts ...Option) *Runner {
	r := &Runner{
		source:   source,
		matcher:  matcher,
		store:    store,
		name:     "runner", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("runner"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	if r.name != "runner" {
		r.logger = r.logger.Named(r.name)
	}

	return r
}

// Run starts the runner loop.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	jobs := r.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				// Channel closed, runner should stop
				return
			}
			if err := r.processJob(ctx, job); err != nil {
				r.logger.Error(ctx, "error processing match job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the runner.
func (r *Runner) Shutdown(ctx context.Context) error {
	close(r.shutdown)

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob drives one sweep and records its outcome.
func (r *Runner) processJob(ctx context.Context, job Job) error {
	if err := r.store.SetRunning(ctx, job.RunID); err != nil {
		return fmt.Errorf("failed to mark run %s running: %w", job.RunID, err)
	}

	metrics.RecordRunStarted()
	metrics.UpdateActiveRuns(int(activeRuns.Add(1)))
	defer func() {
		metrics.UpdateActiveRuns(int(activeRuns.Add(-1)))
	}()

	r.logger.Info(ctx, "run started",
		logger.String("runID", job.RunID),
		logger.Int("left", len(job.Left)),
		logger.Int("right", len(job.Right)),
		logger.Bool("unfiltered", job.Spec.Unfiltered),
	)

	var (
		results []model.MatchResult
		stats   model.SweepStats
	)
	if job.Spec.Unfiltered {
		results, stats = r.matcher.MatchAll(ctx, job.Left, job.Right, job.Spec)
	} else {
		results, stats = r.matcher.Run(ctx, job.Left, job.Right, job.Spec, func(p enginepkg.Progress) {
			// Progress regressions are dropped by the store, so late
			// events from interleaved callbacks are harmless.
			_ = r.store.SetProgress(ctx, job.RunID, p.Percent)
		})
	}

	if err := r.store.Complete(ctx, job.RunID, results, stats); err != nil {
		metrics.RecordErrorByComponent("runner", "complete_failed")
		return fmt.Errorf("failed to complete run %s: %w", job.RunID, err)
	}

	outcome := "completed"
	if stats.EarlyExit {
		outcome = "early_exit"
	}
	metrics.RecordRunCompleted(outcome)

	r.logger.Info(ctx, "run finished",
		logger.String("runID", job.RunID),
		logger.String("outcome", outcome),
		logger.Int("results", len(results)),
		logger.Int("scored", stats.Scored),
		logger.Int("filtered", stats.Filtered),
	)
	return nil
}

// activeRuns tracks in-flight sweeps across all runners for the gauge.
var activeRuns atomic.Int64 //nolint:gochecknoglobals // process-wide gauge backing

// Pool manages multiple runners.
type Pool struct {
	runners []*Runner
	source  JobSource

	// Logging
	logger logger.Logger
}

// NewPool creates a new runner pool.
func NewPool(runnerCount int, source JobSource, matcher Matcher, store RunStore) *Pool {
	if runnerCount < 1 {
		runnerCount = runtime.NumCPU() * defaultRunnerMultiplier
	}

	pool := &Pool{
		runners: make([]*Runner, runnerCount),
		source:  source,
		logger:  logger.Get().Named("runner-pool"),
	}

	for i := 0; i < runnerCount; i++ {
		pool.runners[i] = NewRunner(
			source,
			matcher,
			store,
			WithName("runner-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateRunnerCount(runnerCount)

	return pool
}

// Start starts all runners in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, runner := range p.runners {
		go runner.Run(ctx)
	}
}

// Stop stops all runners, waiting briefly for each.
func (p *Pool) Stop() {
	for _, runner := range p.runners {
		select {
		case <-runner.done:
			// Runner finished
		case <-time.After(runnerShutdownTimeout):
			// Runner timeout
		}
	}
}

// Shutdown gracefully shuts down the entire runner pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new jobs
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all runners
	for _, runner := range p.runners {
		close(runner.shutdown)
	}

	// Wait for all runners to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, runner := range p.runners {
		select {
		case <-runner.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "runner shutdown timed out", logger.Int("runner_id", i))
		}
	}

	return nil
}
