package service

import (
	"github.com/okian/crosswalk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRunnerCount sets the number of sweep runner goroutines.
func WithRunnerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.runnerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency registry.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxRuns caps how many finished runs are retained.
func WithMaxRuns(maxRuns int) Option {
	return func(s *Service) {
		if maxRuns > 0 {
			s.maxRuns = maxRuns
		}
	}
}

// WithMaxDatasetRows caps the number of rows accepted per dataset upload.
func WithMaxDatasetRows(maxRows int) Option {
	return func(s *Service) {
		if maxRows > 0 {
			s.maxDatasetRows = maxRows
		}
	}
}

// WithMaxResultsCap bounds the max_results a client may request.
func WithMaxResultsCap(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxResultsCap = limit
		}
	}
}

// WithBatchSize sets how many source rows one sweep batch covers.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithFilterThresholds tunes the candidate filter.
func WithFilterThresholds(minLengthRatio, minTokenOverlap float64) Option {
	return func(s *Service) {
		if minLengthRatio > 0 && minLengthRatio <= 1 {
			s.minLengthRatio = minLengthRatio
		}
		if minTokenOverlap >= 0 && minTokenOverlap < 1 {
			s.minTokenOverlap = minTokenOverlap
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
