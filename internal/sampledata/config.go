// Package sampledata generates a synthetic doctor roster and a matching
// model artifact for demos and tests.
package sampledata

import "time"

// Config controls generation.
type Config struct {
	Records    int       // number of roster rows
	Seed       uint64    // same seed, same output
	Start      time.Time // earliest login time
	Days       int       // login times fall within [Start, Start+Days)
	RosterPath string    // .xlsx or .csv
	ModelPath  string    // YAML artifact
}

// DefaultConfig returns the settings used by the sample-data command.
func DefaultConfig() Config {
	return Config{
		Records:    1000,
		Seed:       42,
		Start:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:       28,
		RosterPath: "dummy_npi_data.xlsx",
		ModelPath:  "doctor_targeting_model.yaml",
	}
}

var regionsByState = map[string]string{
	"CA": "West", "WA": "West", "OR": "West",
	"TX": "South", "FL": "South", "GA": "South",
	"NY": "Northeast", "MA": "Northeast", "PA": "Northeast",
	"IL": "Midwest", "OH": "Midwest", "MI": "Midwest",
}

var specialities = []string{
	"Cardiology", "Oncology", "Neurology", "Pediatrics",
	"Orthopedics", "Dermatology", "General Practice", "Radiology",
}
