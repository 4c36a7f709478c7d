package service

import "errors"

// Sentinel kinds for service-level errors. The HTTP layer maps these onto
// response codes.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrUnknownSide     = errors.New("unknown dataset side")
	ErrEmptyDataset    = errors.New("dataset must not be empty")
	ErrDatasetTooLarge = errors.New("dataset too large")
	ErrMissingDataset  = errors.New("both datasets must be uploaded before submitting a run")
	ErrInvalidSpec     = errors.New("invalid run spec")
	ErrQueueFull       = errors.New("job queue is full")
)
