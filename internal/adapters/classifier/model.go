// Package classifier provides a logistic attendance model read from a YAML
// artifact. It implements scoring.Classifier.
package classifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/okian/surveytarget/internal/domain/model"
	"github.com/okian/surveytarget/internal/domain/scoring"
)

// cancelCheckEvery is how many rows are scored between context checks.
const cancelCheckEvery = 1024

// Numeric is a standardised linear term: weight * (x - mean) / scale.
type Numeric struct {
	Mean   float64 `yaml:"mean"`
	Scale  float64 `yaml:"scale"`
	Weight float64 `yaml:"weight"`
}

// Artifact is the on-disk form of a trained model.
type Artifact struct {
	Name      string  `yaml:"name"`
	Version   string  `yaml:"version"`
	Intercept float64 `yaml:"intercept"`
	// Categorical maps feature column -> level -> weight.
	Categorical map[string]map[string]float64 `yaml:"categorical"`
	// Numeric maps feature column -> standardised term.
	Numeric map[string]Numeric `yaml:"numeric"`
}

// Model scores feature rows with a fitted logistic regression.
type Model struct {
	artifact Artifact
	policy   Policy
	catCols  []string
	numCols  []string
}

var _ scoring.Classifier = (*Model)(nil)

// New validates a and builds a model from it.
func New(a Artifact, opts ...Option) (*Model, error) {
	if err := validateArtifact(a); err != nil {
		return nil, err
	}
	m := &Model{
		artifact: a,
		policy:   PolicyError,
		catCols:  sortedKeys(a.Categorical),
		numCols:  sortedKeys(a.Numeric),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Load reads and validates the artifact at path.
func Load(path string, opts ...Option) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	m, err := Decode(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode reads an artifact from r.
func Decode(r io.Reader, opts ...Option) (*Model, error) {
	var a Artifact
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrLoad, err)
	}
	return New(a, opts...)
}

// Encode writes a as YAML.
func Encode(w io.Writer, a Artifact) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return enc.Close()
}

// Name returns the artifact name and version, e.g. "attendance@1".
func (m *Model) Name() string {
	if m.artifact.Version == "" {
		return m.artifact.Name
	}
	return m.artifact.Name + "@" + m.artifact.Version
}

// Policy returns the unknown category policy in effect.
func (m *Model) Policy() Policy {
	return m.policy
}

// PredictProbability returns the positive class probability for each row.
func (m *Model) PredictProbability(ctx context.Context, rows []model.FeatureRow) ([]float64, error) {
	probs := make([]float64, len(rows))
	for i, row := range rows {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		z, err := m.logit(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		probs[i] = sigmoid(z)
	}
	return probs, nil
}

func (m *Model) logit(row model.FeatureRow) (float64, error) {
	z := m.artifact.Intercept
	for _, col := range m.catCols {
		level, _ := row.Level(col)
		w, ok := m.artifact.Categorical[col][level]
		if !ok {
			if m.policy == PolicyIgnore {
				continue
			}
			return 0, fmt.Errorf("%w: %s=%q", scoring.ErrUnknownCategory, col, level)
		}
		z += w
	}
	for _, col := range m.numCols {
		x, _ := row.Number(col)
		t := m.artifact.Numeric[col]
		z += t.Weight * (x - t.Mean) / t.Scale
	}
	return z, nil
}

func sigmoid(z float64) float64 {
	// Split on sign so exp never overflows.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func validateArtifact(a Artifact) error {
	if len(a.Categorical) == 0 && len(a.Numeric) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidArtifact)
	}
	if !finite(a.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	for col, levels := range a.Categorical {
		if _, ok := (model.FeatureRow{}).Level(col); !ok {
			return fmt.Errorf("%w: %q is not a categorical feature", ErrInvalidArtifact, col)
		}
		if _, ok := a.Numeric[col]; ok {
			return fmt.Errorf("%w: feature %q is both categorical and numeric", ErrInvalidArtifact, col)
		}
		for level, w := range levels {
			if !finite(w) {
				return fmt.Errorf("%w: %s=%q weight is not finite", ErrInvalidArtifact, col, level)
			}
		}
	}
	for col, t := range a.Numeric {
		if _, ok := (model.FeatureRow{}).Number(col); !ok {
			return fmt.Errorf("%w: %q is not a numeric feature", ErrInvalidArtifact, col)
		}
		if t.Scale == 0 || !finite(t.Scale) {
			return fmt.Errorf("%w: %s scale must be finite and non-zero", ErrInvalidArtifact, col)
		}
		if !finite(t.Mean) || !finite(t.Weight) {
			return fmt.Errorf("%w: %s term is not finite", ErrInvalidArtifact, col)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
