package engine

// Default stop-policy tuning.
const (
	defaultRowBreakScore    = 98.0
	defaultExitMultiplier   = 3
	defaultExitMinThreshold = 70.0
)

// StopPolicy decides when a sweep may stop ahead of full completion. It is
// injectable so the early-exit behavior can be tested and tuned
// independently of the sweep loop.
type StopPolicy interface {
	// BreakRow reports whether an adequate match has been found for the
	// current left entry, making further right-side scanning not worth the
	// cost.
	BreakRow(scorePercent float64) bool

	// ExitSweep reports whether the whole sweep should stop with what has
	// been collected so far.
	ExitSweep(st *State) bool
}

// ThresholdPolicy implements the default policy: break a row on a
// near-perfect score, and exit the sweep once enough high-confidence matches
// have accumulated for a caller that asked for a high threshold.
type ThresholdPolicy struct {
	rowBreakScore    float64
	exitMultiplier   int
	exitMinThreshold float64
}

// NewThresholdPolicy creates the default stop policy.
func NewThresholdPolicy(opts ...PolicyOption) *ThresholdPolicy {
	p := &ThresholdPolicy{
		rowBreakScore:    defaultRowBreakScore,
		exitMultiplier:   defaultExitMultiplier,
		exitMinThreshold: defaultExitMinThreshold,
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// BreakRow fires at scores of 98 and above.
func (p *ThresholdPolicy) BreakRow(scorePercent float64) bool {
	return scorePercent >= p.rowBreakScore
}

// ExitSweep fires once the accumulated match count reaches
// exitMultiplier x MaxResults, provided the caller's threshold signals a
// small, high-confidence result set (MinThreshold >= 70).
func (p *ThresholdPolicy) ExitSweep(st *State) bool {
	if st.Spec.MaxResults <= 0 || st.Spec.MinThreshold < p.exitMinThreshold {
		return false
	}
	return len(st.Matches) >= p.exitMultiplier*st.Spec.MaxResults
}

// PolicyOption applies a configuration option to the ThresholdPolicy.
type PolicyOption func(*ThresholdPolicy)

// WithRowBreakScore sets the per-row early-break score.
func WithRowBreakScore(score float64) PolicyOption {
	return func(p *ThresholdPolicy) {
		if score > 0 && score <= 100 {
			p.rowBreakScore = score
		}
	}
}

// WithExitMultiplier sets the accumulated-match multiple of MaxResults that
// triggers the global early exit.
func WithExitMultiplier(multiplier int) PolicyOption {
	return func(p *ThresholdPolicy) {
		if multiplier > 0 {
			p.exitMultiplier = multiplier
		}
	}
}

// WithExitMinThreshold sets the minimum caller threshold at which the global
// early exit is armed.
func WithExitMinThreshold(threshold float64) PolicyOption {
	return func(p *ThresholdPolicy) {
		if threshold >= 0 && threshold <= 100 {
			p.exitMinThreshold = threshold
		}
	}
}
