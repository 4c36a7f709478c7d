// Package repository defines the match-run registry and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/crosswalk/internal/domain/model"
)

// Status is the lifecycle state of a match run.
type Status string

// Run lifecycle states.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Run is the registry's view of one matching invocation. Callers that want
// to abandon a stale in-flight pass compare run IDs and discard results from
// superseded runs; the engine itself never serializes overlapping runs.
type Run struct {
	ID         string           `json:"id"`
	RequestID  string           `json:"request_id,omitempty"`
	Spec       model.RunSpec    `json:"-"`
	Status     Status           `json:"status"`
	Progress   int              `json:"progress"`
	Stats      model.SweepStats `json:"stats"`
	Results    []model.MatchResult `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Store provides read/write access to run state.
type Store interface {
	// Create registers a new pending run. Returns ErrExists on id collision.
	Create(ctx context.Context, run Run) error

	// Get returns a copy of the run's metadata without its result payload.
	// Returns ErrNotFound if the run is unknown.
	Get(ctx context.Context, id string) (Run, error)

	// SetRunning marks the run as executing.
	SetRunning(ctx context.Context, id string) error

	// SetProgress updates the run's completion percentage. Regressions are
	// ignored so late events can never move progress backwards.
	SetProgress(ctx context.Context, id string, percent int) error

	// Complete stores the ranked results and final stats, and marks the run
	// done with progress 100.
	Complete(ctx context.Context, id string, results []model.MatchResult, stats model.SweepStats) error

	// Results returns the ranked results of a completed run. Returns
	// ErrNotReady while the run is still executing.
	Results(ctx context.Context, id string) ([]model.MatchResult, error)

	// Delete removes a run from the registry.
	Delete(ctx context.Context, id string) error

	// Count returns the number of registered runs.
	Count(ctx context.Context) int
}
