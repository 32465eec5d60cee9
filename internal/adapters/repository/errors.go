package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for roster errors.
var (
	ErrLoad          = errors.New("dataset load failed")
	ErrMissingColumn = errors.New("missing column")
	ErrUnsupported   = errors.New("unsupported dataset format")
)

// LoadError describes why a dataset could not be materialised. Row is the
// 1-based source row (0 when not row specific).
type LoadError struct {
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d column %q: %v", e.Path, e.Row, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

// Unwrap exposes both ErrLoad and the underlying cause to errors.Is/As.
func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}
