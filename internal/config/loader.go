package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment contract.
const (
	EnvPrefix     = "TARGET_"
	EnvConfigFile = "TARGET_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TARGET_CONFIG is set
//  3. env (prefix TARGET_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TARGET_DATASET_PATH -> dataset_path; underscores are kept to match koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints after all layers are merged.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatasetPath) == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelPath) == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case c.Threshold < 0 || c.Threshold > 1:
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidConfig, c.Threshold)
	case c.DefaultHour < 0 || c.DefaultHour > 23:
		return fmt.Errorf("%w: default_hour %d outside [0,23]", ErrInvalidConfig, c.DefaultHour)
	case c.DefaultDay < 0 || c.DefaultDay > 6:
		return fmt.Errorf("%w: default_day %d outside [0,6]", ErrInvalidConfig, c.DefaultDay)
	case c.RateLimitRPS < 0 || c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}

	switch c.UnknownCategory {
	case UnknownCategoryError, UnknownCategoryIgnore:
	default:
		return fmt.Errorf("%w: unknown_category %q (want %q or %q)",
			ErrInvalidConfig, c.UnknownCategory, UnknownCategoryError, UnknownCategoryIgnore)
	}
	return nil
}
