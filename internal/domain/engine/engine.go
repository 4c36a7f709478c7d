// Package engine drives the chunked left/right match sweep: pre-processing,
// candidate filtering, scoring, progress reporting, and early exits. The
// sweep itself is total over well-formed input; bad rows are data-quality
// exclusions, not errors.
package engine

import (
	"context"
	"time"

	"github.com/okian/crosswalk/internal/domain/filter"
	"github.com/okian/crosswalk/internal/domain/model"
	"github.com/okian/crosswalk/internal/domain/rank"
	"github.com/okian/crosswalk/internal/domain/scoring"
	"github.com/okian/crosswalk/internal/domain/text"
	"github.com/okian/crosswalk/pkg/logger"
	"github.com/okian/crosswalk/pkg/metrics"
)

// Default sweep configuration constants.
const (
	// DefaultBatchSize is the number of left entries processed between
	// progress reports. The batch boundary is the sweep's only yield point.
	DefaultBatchSize = 200

	// DefaultMaxResults caps the ranked output when the spec leaves it unset.
	DefaultMaxResults = 1000
)

// Spec configures one matching invocation.
type Spec = model.RunSpec

// Stats summarizes what one sweep did.
type Stats = model.SweepStats

// Engine executes match sweeps. One Engine is safe for concurrent sweeps;
// all per-invocation state lives in State.
type Engine struct {
	scorer    scoring.Scorer
	strategy  filter.Strategy
	stop      StopPolicy
	batchSize int
	logger    logger.Logger
}

// New creates an engine with the bigram Dice scorer, the heuristic candidate
// filter, and the threshold stop policy.
func New(opts ...Option) *Engine {
	e := &Engine{
		scorer:    scoring.NewDice(),
		strategy:  filter.NewHeuristic(),
		stop:      NewThresholdPolicy(),
		batchSize: DefaultBatchSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	return e
}

// NewState pre-processes both record lists into a fresh sweep state. Rows
// whose description is missing, empty, or normalizes to nothing are dropped
// here and never participate in matching.
func (e *Engine) NewState(ctx context.Context, left, right []model.Record, spec Spec) *State {
	spec = withDefaults(spec)

	leftEntries, leftDropped := e.preprocess(ctx, left, spec.LeftField, "left")
	rightEntries, rightDropped := e.preprocess(ctx, right, spec.RightField, "right")

	metrics.RecordEntriesDropped("left", leftDropped)
	metrics.RecordEntriesDropped("right", rightDropped)

	st := &State{
		Spec:  spec,
		Left:  leftEntries,
		Right: rightEntries,
	}
	st.Stats.LeftTotal = len(left)
	st.Stats.RightTotal = len(right)
	st.Stats.LeftDropped = leftDropped
	st.Stats.RightDropped = rightDropped
	return st
}

// Step advances the sweep by exactly one batch of left entries. Calling Step
// on a finished state is a no-op.
func (e *Engine) Step(ctx context.Context, st *State) {
	if st.Done() {
		return
	}

	start := time.Now()
	before := st.Stats

	end := st.Cursor + e.batchSize
	if end > len(st.Left) {
		end = len(st.Left)
	}

	for st.Cursor < end {
		leftEntry := st.Left[st.Cursor]
		e.scanRow(st, leftEntry)
		st.Cursor++

		if e.stop.ExitSweep(st) {
			st.Stats.EarlyExit = true
			st.stopped = true
			metrics.RecordEarlyExit()
			e.logger.Info(ctx, "global early exit",
				logger.Int("collected", len(st.Matches)),
				logger.Int("processed", st.Cursor),
				logger.Int("total", len(st.Left)),
			)
			break
		}
	}

	metrics.RecordPairsConsidered(st.Stats.Considered - before.Considered)
	metrics.RecordPairsFiltered(st.Stats.Filtered - before.Filtered)
	metrics.RecordPairsScored(st.Stats.Scored - before.Scored)
	metrics.RecordBatchDuration(float64(time.Since(start).Milliseconds()))
}

// scanRow evaluates one left entry against every right entry, breaking early
// once the stop policy deems a match adequate.
func (e *Engine) scanRow(st *State, leftEntry *model.Entry) {
	for _, rightEntry := range st.Right {
		st.Stats.Considered++
		if !e.strategy.Keep(leftEntry, rightEntry) {
			st.Stats.Filtered++
			continue
		}

		percent := e.scorePair(st, leftEntry, rightEntry)
		if percent < st.Spec.MinThreshold {
			continue
		}
		st.Matches = append(st.Matches, e.result(leftEntry, rightEntry, percent, st.Spec.TokenDiff))
		st.Stats.Collected++

		if e.stop.BreakRow(percent) {
			st.Stats.RowBreaks++
			metrics.RecordRowBreak()
			return
		}
	}
}

// scorePair is the single scoring path shared by the filtered and direct
// sweeps. Normalization is idempotent, so feeding the pre-normalized form
// skips repeat work without changing the score.
func (e *Engine) scorePair(st *State, leftEntry, rightEntry *model.Entry) float64 {
	st.Stats.Scored++
	return scoring.Percent(e.scorer.Score(leftEntry.Normalized, rightEntry.Normalized))
}

// Run executes the chunked, filtered sweep: batches of left entries with a
// context check and a progress notification at every batch boundary, then
// ranking. A canceled context abandons the sweep and ranks whatever was
// collected; the completion event (percent 100) is only emitted for sweeps
// that finish or early-exit on their own terms.
func (e *Engine) Run(ctx context.Context, left, right []model.Record, spec Spec, onProgress ProgressFunc) ([]model.MatchResult, Stats) {
	start := time.Now()
	st := e.NewState(ctx, left, right, spec)

	for !st.Done() {
		select {
		case <-ctx.Done():
			e.logger.Warn(ctx, "sweep abandoned",
				logger.Int("processed", st.Cursor),
				logger.Int("total", len(st.Left)),
			)
			return rank.Top(st.Matches, st.Spec.MaxResults), st.Stats
		default:
		}

		e.Step(ctx, st)
		if onProgress != nil && !st.Done() {
			onProgress(st.Progress())
		}
	}

	if onProgress != nil {
		onProgress(Progress{
			Percent:   100,
			Processed: st.Cursor,
			Total:     len(st.Left),
			Collected: len(st.Matches),
		})
	}

	metrics.RecordMatchesCollected(len(st.Matches))
	metrics.RecordSweepDuration(float64(time.Since(start).Milliseconds()))
	return rank.Top(st.Matches, st.Spec.MaxResults), st.Stats
}

// MatchAll is the direct entry point: every surviving pre-processed pair is
// scored, with no candidate filtering, no chunking, and no early exits. It
// shares scorePair with Run, so both agree exactly on the scorer and on
// threshold semantics; the filtered path may only diverge by pruning.
func (e *Engine) MatchAll(ctx context.Context, left, right []model.Record, spec Spec) ([]model.MatchResult, Stats) {
	st := e.NewState(ctx, left, right, spec)

	for _, leftEntry := range st.Left {
		for _, rightEntry := range st.Right {
			st.Stats.Considered++
			percent := e.scorePair(st, leftEntry, rightEntry)
			if percent < st.Spec.MinThreshold {
				continue
			}
			st.Matches = append(st.Matches, e.result(leftEntry, rightEntry, percent, st.Spec.TokenDiff))
			st.Stats.Collected++
		}
	}
	st.Cursor = len(st.Left)

	metrics.RecordPairsConsidered(st.Stats.Considered)
	metrics.RecordPairsScored(st.Stats.Scored)
	metrics.RecordMatchesCollected(len(st.Matches))
	return rank.Top(st.Matches, st.Spec.MaxResults), st.Stats
}

// result builds a MatchResult, attaching the token-diff breakdown when the
// spec asks for it.
func (e *Engine) result(leftEntry, rightEntry *model.Entry, percent float64, withDiff bool) model.MatchResult {
	r := model.MatchResult{
		Left:      leftEntry.Record,
		Right:     rightEntry.Record,
		LeftText:  leftEntry.Raw,
		RightText: rightEntry.Raw,
		Score:     percent,
	}
	if withDiff {
		common, leftOnly, rightOnly := text.Diff(leftEntry.Tokens, rightEntry.Tokens)
		r.Diff = &model.TokenDiff{Common: common, LeftOnly: leftOnly, RightOnly: rightOnly}
	}
	return r
}

// preprocess builds the entry list for one side, counting excluded rows.
func (e *Engine) preprocess(ctx context.Context, rows []model.Record, field, side string) ([]*model.Entry, int) {
	entries := make([]*model.Entry, 0, len(rows))
	dropped := 0
	for i, rec := range rows {
		raw := rec.Description(field)
		normalized := text.Normalize(raw)
		tokens := text.Tokens(raw)
		if normalized == "" || len(tokens) == 0 {
			dropped++
			e.logger.Debug(ctx, "row excluded during pre-processing",
				logger.String("side", side),
				logger.Int("row", i),
			)
			continue
		}
		entries = append(entries, &model.Entry{
			Record:     rec,
			Raw:        raw,
			Normalized: normalized,
			Tokens:     tokens,
		})
	}
	return entries, dropped
}

// withDefaults fills unset spec fields and clamps the threshold into [0,100].
func withDefaults(spec Spec) Spec {
	if spec.MaxResults <= 0 {
		spec.MaxResults = DefaultMaxResults
	}
	if spec.MinThreshold < 0 {
		spec.MinThreshold = 0
	}
	if spec.MinThreshold > 100 {
		spec.MinThreshold = 100
	}
	return spec
}
