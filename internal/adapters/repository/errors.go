package repository

import "errors"

// Sentinel kinds for run-registry errors.
var (
	ErrNotFound = errors.New("run not found")
	ErrExists   = errors.New("run already exists")
	ErrNotReady = errors.New("run not finished")
)
