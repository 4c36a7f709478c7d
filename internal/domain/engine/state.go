// Package engine drives the chunked left/right match sweep.
package engine

import (
	"math"

	"github.com/okian/crosswalk/internal/domain/model"
)

// State carries the explicit sweep state threaded through batch steps: the
// pre-processed entry lists, the batch cursor, and the accumulator. Keeping
// it a plain value instead of captured closure variables makes every batch
// transition testable in isolation.
type State struct {
	Spec  Spec
	Left  []*model.Entry
	Right []*model.Entry

	// Cursor indexes the next unprocessed left entry.
	Cursor int

	// Matches accumulates qualifying results in discovery order.
	Matches []model.MatchResult

	// Stats counts what the sweep has done so far.
	Stats Stats

	stopped bool
}

// Done reports whether the sweep has nothing left to do, either because all
// left entries were processed or because the stop policy fired.
func (s *State) Done() bool {
	return s.stopped || s.Cursor >= len(s.Left)
}

// Progress snapshots the current completion state. The percentage is
// round(processed/total x 100); an empty left side is already complete.
func (s *State) Progress() Progress {
	total := len(s.Left)
	percent := 100
	if total > 0 {
		percent = int(math.Round(float64(s.Cursor) / float64(total) * 100))
	}
	return Progress{
		Percent:   percent,
		Processed: s.Cursor,
		Total:     total,
		Collected: len(s.Matches),
	}
}
