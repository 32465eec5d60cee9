package export

import "errors"

// ErrUnsupportedFormat is returned for export formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")
