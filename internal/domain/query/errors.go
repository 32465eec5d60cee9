package query

import "errors"

// ErrInvalidInput marks query parameters rejected before any scoring happens.
var ErrInvalidInput = errors.New("invalid input")
