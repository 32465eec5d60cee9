package repository

import "time"

// Option applies a configuration option to a load.
type Option func(*loadOptions)

type loadOptions struct {
	sheet    string
	location *time.Location
}

// WithSheet selects the workbook sheet to read. Empty means the first sheet.
func WithSheet(name string) Option {
	return func(o *loadOptions) {
		o.sheet = name
	}
}

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(o *loadOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}
