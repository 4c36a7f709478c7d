// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory match-job queue.
	JobQueueSize int `koanf:"queue_size"`

	// RunnerCount sets the number of concurrent sweep runners.
	RunnerCount int `koanf:"runner_count"`

	// DedupeSize sets the size of the request-id idempotency registry.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRuns caps how many finished runs the registry retains.
	MaxRuns int `koanf:"max_runs"`

	// MaxDatasetRows caps the number of rows accepted per dataset upload.
	MaxDatasetRows int `koanf:"max_dataset_rows"`

	// MaxResultsCap bounds the max_results a client may request per run.
	MaxResultsCap int `koanf:"max_results_cap"`

	// BatchSize sets how many source rows one sweep batch covers.
	BatchSize int `koanf:"batch_size"`

	// MinLengthRatio and MinTokenOverlap tune the candidate filter.
	MinLengthRatio  float64 `koanf:"min_length_ratio"`
	MinTokenOverlap float64 `koanf:"min_token_overlap"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		JobQueueSize:    64,
		RunnerCount:     runtime.NumCPU(),
		DedupeSize:      50_000,
		MaxRuns:         256,
		MaxDatasetRows:  200_000,
		MaxResultsCap:   10_000,
		BatchSize:       200,
		MinLengthRatio:  0.3,
		MinTokenOverlap: 0.15,
	}
	return c
}
