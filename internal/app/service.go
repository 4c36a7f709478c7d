// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	jobqueue "github.com/okian/crosswalk/internal/adapters/mq/queue"
	runnerpool "github.com/okian/crosswalk/internal/adapters/mq/worker"
	repository "github.com/okian/crosswalk/internal/adapters/repository"
	"github.com/okian/crosswalk/internal/domain/dedupe"
	"github.com/okian/crosswalk/internal/domain/engine"
	"github.com/okian/crosswalk/internal/domain/filter"
	"github.com/okian/crosswalk/internal/domain/model"
	"github.com/okian/crosswalk/pkg/logger"
	"github.com/okian/crosswalk/pkg/metrics"
)

// Dataset sides accepted by SetDataset and the HTTP API.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Service implements the API dependencies for the reconciliation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	runs     repository.Store
	registry dedupe.Registry
	jobQueue jobqueue.Queue
	matcher  *engine.Engine
	pool     *runnerpool.Pool

	// Dataset snapshots, replaced wholesale on upload
	left  []model.Record
	right []model.Record

	// Configuration
	runnerCount     int
	queueSize       int
	dedupeSize      int
	maxRuns         int
	maxDatasetRows  int
	maxResultsCap   int
	batchSize       int
	minLengthRatio  float64
	minTokenOverlap float64

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		runnerCount:     runtime.NumCPU(),
		queueSize:       64,
		dedupeSize:      50000,
		maxRuns:         256,
		maxDatasetRows:  200000,
		maxResultsCap:   10000,
		batchSize:       engine.DefaultBatchSize,
		minLengthRatio:  0.3,
		minTokenOverlap: 0.15,
		stopCh:          make(chan struct{}),
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting reconciliation service...")

	// Initialize components
	s.runs = repository.NewMemStore(
		repository.WithMaxRuns(s.maxRuns),
	)
	s.registry = dedupe.NewInMemoryRegistry(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)
	s.matcher = engine.New(
		engine.WithBatchSize(s.batchSize),
		engine.WithStrategy(filter.NewHeuristic(
			filter.WithMinLengthRatio(s.minLengthRatio),
			filter.WithMinTokenOverlap(s.minTokenOverlap),
		)),
	)

	// Create and start the runner pool
	s.pool = runnerpool.NewPool(s.runnerCount, s.jobQueue, s.matcher, s.runs)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "reconciliation service started",
		logger.Int("runners", s.runnerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping reconciliation service...")

	// Close the queue first so runners drain and stop
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	if s.pool != nil {
		s.pool.Stop()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "reconciliation service stopped")
}

// SetDataset replaces one side's catalog snapshot.
func (s *Service) SetDataset(ctx context.Context, side string, rows []model.Record) (int, error) {
	if side != SideLeft && side != SideRight {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	if len(rows) == 0 {
		return 0, ErrEmptyDataset
	}
	if s.maxDatasetRows > 0 && len(rows) > s.maxDatasetRows {
		return 0, fmt.Errorf("%w: %d rows exceeds cap of %d", ErrDatasetTooLarge, len(rows), s.maxDatasetRows)
	}

	s.mu.Lock()
	if side == SideLeft {
		s.left = rows
	} else {
		s.right = rows
	}
	s.mu.Unlock()

	metrics.UpdateDatasetRows(side, len(rows))
	s.logger.Info(ctx, "dataset replaced",
		logger.String("side", side),
		logger.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// Dataset returns the current snapshot for one side.
func (s *Service) Dataset(ctx context.Context, side string) ([]model.Record, error) {
	if side != SideLeft && side != SideRight {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if side == SideLeft {
		return s.left, nil
	}
	return s.right, nil
}

// SubmitRequest carries one run submission.
type SubmitRequest struct {
	// RequestID makes the submission idempotent when set: resubmitting
	// the same id returns the original run.
	RequestID string
	Spec      model.RunSpec
}

// Submit validates, registers and enqueues a match run. Returns the run id
// and whether an earlier submission with the same request id already exists.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, bool, error) {
	s.mu.RLock()
	started := s.started
	left, right := s.left, s.right
	s.mu.RUnlock()

	if !started {
		return "", false, ErrNotStarted
	}

	spec, err := s.validateSpec(req.Spec)
	if err != nil {
		return "", false, err
	}
	if len(left) == 0 || len(right) == 0 {
		return "", false, ErrMissingDataset
	}

	runID := uuid.NewString()
	if req.RequestID != "" {
		existing, claimed := s.registry.Claim(ctx, req.RequestID, runID)
		if claimed {
			return existing, true, nil
		}
	}

	if err := s.runs.Create(ctx, repository.Run{
		ID:        runID,
		RequestID: req.RequestID,
		Spec:      spec,
	}); err != nil {
		if req.RequestID != "" {
			s.registry.Forget(ctx, req.RequestID)
		}
		return "", false, fmt.Errorf("failed to register run: %w", err)
	}

	ok := s.jobQueue.Enqueue(ctx, jobqueue.Job{
		RunID: runID,
		Left:  left,
		Right: right,
		Spec:  spec,
	})
	if !ok {
		// Roll back so the client can retry with the same request id.
		if req.RequestID != "" {
			s.registry.Forget(ctx, req.RequestID)
		}
		_ = s.runs.Delete(ctx, runID)
		return "", false, ErrQueueFull
	}

	s.logger.Info(ctx, "run submitted",
		logger.String("runID", runID),
		logger.String("leftField", spec.LeftField),
		logger.String("rightField", spec.RightField),
		logger.Float64("minThreshold", spec.MinThreshold),
		logger.Int("maxResults", spec.MaxResults),
	)
	return runID, false, nil
}

// Run returns one run's metadata.
func (s *Service) Run(ctx context.Context, id string) (repository.Run, error) {
	return s.runs.Get(ctx, id)
}

// Results returns the ranked results of a completed run.
func (s *Service) Results(ctx context.Context, id string) ([]model.MatchResult, error) {
	return s.runs.Results(ctx, id)
}

// validateSpec normalizes a submitted run spec against service limits.
func (s *Service) validateSpec(spec model.RunSpec) (model.RunSpec, error) {
	if spec.LeftField == "" || spec.RightField == "" {
		return spec, fmt.Errorf("%w: both field names are required", ErrInvalidSpec)
	}
	if spec.MinThreshold < 0 || spec.MinThreshold > 100 {
		return spec, fmt.Errorf("%w: min_threshold must be in [0, 100]", ErrInvalidSpec)
	}
	if spec.MaxResults <= 0 {
		spec.MaxResults = engine.DefaultMaxResults
	}
	if s.maxResultsCap > 0 && spec.MaxResults > s.maxResultsCap {
		spec.MaxResults = s.maxResultsCap
	}
	return spec, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"runnerCount": s.runnerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["totalRuns"] = s.runs.Count(ctx)
		stats["leftRows"] = len(s.left)
		stats["rightRows"] = len(s.right)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateRunnerCount(s.runnerCount)
	}

	return stats
}

// Size returns the current number of claims in the idempotency registry.
func (s *Service) Size() int64 {
	if s.registry == nil {
		return 0
	}
	return s.registry.Size()
}
