// Package filter implements cheap candidate pre-filtering for the match
// sweep. A strategy decides, without touching the bigram scorer, whether a
// left/right pair is worth the expensive comparison.
package filter

import (
	"unicode/utf8"

	"github.com/okian/crosswalk/internal/domain/model"
)

// Default filtering thresholds, tuned for catalog descriptions.
const (
	defaultMinLengthRatio  = 0.3
	defaultMinTokenOverlap = 0.15
)

// Strategy decides whether a pre-processed pair should reach the scorer.
type Strategy interface {
	Keep(left, right *model.Entry) bool
}

// None keeps every pair. It backs the unfiltered ground-truth sweep.
type None struct{}

// Keep always returns true.
func (None) Keep(_, _ *model.Entry) bool { return true }

// Heuristic applies two sequential tests: a length-ratio check over the
// normalized strings, then an exact Jaccard over the token sets. Both must
// pass. This is a deliberate recall/precision trade: pairs with high bigram
// similarity but few shared tokens (abbreviations, heavy punctuation
// differences) can be pruned and never scored.
type Heuristic struct {
	minLengthRatio  float64
	minTokenOverlap float64
}

// NewHeuristic creates the default length+token filter.
func NewHeuristic(opts ...Option) *Heuristic {
	h := &Heuristic{
		minLengthRatio:  defaultMinLengthRatio,
		minTokenOverlap: defaultMinTokenOverlap,
	}

	// Apply all options
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Keep reports whether the pair survives both tests.
func (h *Heuristic) Keep(left, right *model.Entry) bool {
	if lengthRatio(left.Normalized, right.Normalized) < h.minLengthRatio {
		return false
	}

	overlap := 0
	for tok := range left.Tokens {
		if _, ok := right.Tokens[tok]; ok {
			overlap++
		}
	}
	union := len(left.Tokens) + len(right.Tokens) - overlap
	if union == 0 {
		return false
	}
	return float64(overlap)/float64(union) > h.minTokenOverlap
}

// lengthRatio returns min(len, len)/max(len, len) over rune counts, 0 when
// both are empty. Entries always carry non-empty normalized text, so the
// zero case can only be hit by direct callers.
func lengthRatio(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}
