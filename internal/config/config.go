// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - Validation happens once, after all layers are merged.
// - External errors are wrapped with this package's sentinels.
package config

// Unknown category policies understood by the classifier.
const (
	UnknownCategoryError  = "error"
	UnknownCategoryIgnore = "ignore"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the roster (.xlsx or .csv).
	DatasetPath string `koanf:"dataset_path"`

	// DatasetSheet names the workbook sheet; empty means the first sheet.
	DatasetSheet string `koanf:"dataset_sheet"`

	// ModelPath points at the classifier artifact (YAML).
	ModelPath string `koanf:"model_path"`

	// Threshold is the minimum attendance probability for a match.
	Threshold float64 `koanf:"threshold"`

	// DayInput makes the query day override every record's day of week.
	// When false only the hour is overridden.
	DayInput bool `koanf:"day_input"`

	// RankByProbability sorts matches by probability, highest first.
	// When false matches keep roster order.
	RankByProbability bool `koanf:"rank_by_probability"`

	// UnknownCategory is the policy for categorical levels the model never saw.
	UnknownCategory string `koanf:"unknown_category"`

	// DefaultHour and DefaultDay seed the first query of a session.
	DefaultHour int `koanf:"default_hour"`
	DefaultDay  int `koanf:"default_day"`

	// RateLimitRPS and RateLimitBurst bound per-client HTTP request rates.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DatasetPath:       "dummy_npi_data.xlsx",
		ModelPath:         "doctor_targeting_model.yaml",
		Threshold:         0.5,
		DayInput:          true,
		RankByProbability: false,
		UnknownCategory:   UnknownCategoryError,
		DefaultHour:       8,
		DefaultDay:        0,
		RateLimitRPS:      20,
		RateLimitBurst:    40,
	}
}
