package engine

import (
	"github.com/okian/crosswalk/internal/domain/filter"
	"github.com/okian/crosswalk/internal/domain/scoring"
	"github.com/okian/crosswalk/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScorer sets the similarity scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithStrategy sets the candidate filtering strategy used by Run. MatchAll
// always bypasses filtering.
func WithStrategy(s filter.Strategy) Option {
	return func(e *Engine) {
		if s != nil {
			e.strategy = s
		}
	}
}

// WithStopPolicy sets the early-exit policy used by Run.
func WithStopPolicy(p StopPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.stop = p
		}
	}
}

// WithBatchSize sets the number of left entries per batch.
func WithBatchSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
