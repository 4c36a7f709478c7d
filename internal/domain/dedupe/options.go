// Package dedupe defines the interface for idempotent run submission.
package dedupe

// Option applies a configuration option to the registry.
type Option func(*inMemoryRegistry)

// WithMaxSize sets the maximum number of claims kept in memory.
// Zero or negative means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(r *inMemoryRegistry) {
		r.maxSize = maxSize
	}
}
