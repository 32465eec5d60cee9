package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned when a query arrives before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrLoad marks a startup failure reading the roster or the model.
	ErrLoad = errors.New("load inputs")
)
