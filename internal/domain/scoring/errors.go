package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrScoring marks a query whose features the model could not score.
	ErrScoring = errors.New("scoring failed")
	// ErrUnknownCategory marks a categorical level never seen in training.
	ErrUnknownCategory = errors.New("unknown category")
)
