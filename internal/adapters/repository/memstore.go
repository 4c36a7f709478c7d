package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/crosswalk/internal/domain/model"
)

// Default registry configuration constants.
const (
	defaultMaxRuns = 256
)

// MemStore implements Store with a mutex-guarded map. Finished runs beyond
// the retention cap are evicted oldest-first; in-flight runs are never
// evicted.
type MemStore struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	order   []string // creation order, for retention eviction
	maxRuns int
	now     func() time.Time
}

// NewMemStore creates a new in-memory run registry with configuration options.
func NewMemStore(opts ...StoreOption) *MemStore {
	s := &MemStore{
		runs:    make(map[string]*Run),
		maxRuns: defaultMaxRuns,
		now:     time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create registers a new pending run.
func (s *MemStore) Create(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return ErrExists
	}

	run.Status = StatusPending
	run.CreatedAt = s.now()
	s.runs[run.ID] = &run
	s.order = append(s.order, run.ID)
	s.evictLocked()
	return nil
}

// Get returns a copy of the run's metadata without its result payload.
func (s *MemStore) Get(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	meta := *run
	meta.Results = nil
	return meta, nil
}

// SetRunning marks the run as executing.
func (s *MemStore) SetRunning(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = StatusRunning
	run.StartedAt = s.now()
	return nil
}

// SetProgress updates the run's completion percentage, ignoring regressions.
func (s *MemStore) SetProgress(ctx context.Context, id string, percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	if percent > run.Progress {
		run.Progress = percent
	}
	return nil
}

// Complete stores the ranked results and final stats.
func (s *MemStore) Complete(ctx context.Context, id string, results []model.MatchResult, stats model.SweepStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Results = results
	run.Stats = stats
	run.Status = StatusDone
	run.Progress = 100
	run.FinishedAt = s.now()
	return nil
}

// Results returns the ranked results of a completed run.
func (s *MemStore) Results(ctx context.Context, id string) ([]model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if run.Status != StatusDone {
		return nil, ErrNotReady
	}
	return run.Results, nil
}

// Delete removes a run from the registry.
func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return ErrNotFound
	}
	delete(s.runs, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of registered runs.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// evictLocked drops the oldest finished runs once the registry exceeds its
// retention cap. Must be called with s.mu held.
func (s *MemStore) evictLocked() {
	if s.maxRuns <= 0 {
		return
	}
	for len(s.runs) > s.maxRuns {
		evicted := false
		for i, id := range s.order {
			run, ok := s.runs[id]
			if !ok {
				s.order = append(s.order[:i], s.order[i+1:]...)
				evicted = true
				break
			}
			if run.Status == StatusDone {
				delete(s.runs, id)
				s.order = append(s.order[:i], s.order[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			return // everything is in flight; let the registry grow
		}
	}
}

// StoreOption applies a configuration option to the MemStore.
type StoreOption func(*MemStore)

// WithMaxRuns sets the retention cap on finished runs.
func WithMaxRuns(maxRuns int) StoreOption {
	return func(s *MemStore) {
		s.maxRuns = maxRuns
	}
}

// WithClock overrides the registry clock, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}
