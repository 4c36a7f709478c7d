// Package filter implements cheap candidate pre-filtering for the match sweep.
package filter

// Option applies a configuration option to the Heuristic strategy.
type Option func(*Heuristic)

// WithMinLengthRatio sets the minimum normalized-length ratio below which a
// pair is rejected outright.
func WithMinLengthRatio(ratio float64) Option {
	return func(h *Heuristic) {
		if ratio > 0 && ratio <= 1 {
			h.minLengthRatio = ratio
		}
	}
}

// WithMinTokenOverlap sets the Jaccard token-overlap ratio a pair must
// exceed to survive.
func WithMinTokenOverlap(ratio float64) Option {
	return func(h *Heuristic) {
		if ratio >= 0 && ratio < 1 {
			h.minTokenOverlap = ratio
		}
	}
}
