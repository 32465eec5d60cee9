package classifier

import "errors"

// Sentinel kinds for classifier artifact errors.
var (
	// ErrLoad marks an artifact that could not be read or decoded.
	ErrLoad = errors.New("load model artifact")
	// ErrInvalidArtifact marks a decoded artifact that fails validation.
	ErrInvalidArtifact = errors.New("invalid model artifact")
)
