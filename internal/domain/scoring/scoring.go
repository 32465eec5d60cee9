// Package scoring defines the contract for computing attendance
// probabilities from feature rows.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/surveytarget/internal/domain/model"
)

// Classifier is a pre-trained probabilistic binary classifier. It returns
// the probability of the positive class for every row, order-aligned with
// the input.
type Classifier interface {
	PredictProbability(ctx context.Context, rows []model.FeatureRow) ([]float64, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, rows []model.FeatureRow) ([]float64, error)

// PredictProbability calls f.
func (f ClassifierFunc) PredictProbability(ctx context.Context, rows []model.FeatureRow) ([]float64, error) {
	return f(ctx, rows)
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithObserver registers a callback receiving the inference latency of
// every classifier call.
func WithObserver(fn func(time.Duration)) Option {
	return func(s *Scorer) {
		if fn != nil {
			s.observe = fn
		}
	}
}

// Scorer guards a Classifier: it enforces alignment and the [0,1] range and
// maps every failure to ErrScoring.
type Scorer struct {
	classifier Classifier
	observe    func(time.Duration)
}

// NewScorer wraps classifier.
func NewScorer(classifier Classifier, opts ...Option) *Scorer {
	s := &Scorer{
		classifier: classifier,
		observe:    func(time.Duration) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns one probability per row. Zero rows never reach the classifier.
func (s *Scorer) Score(ctx context.Context, rows []model.FeatureRow) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	start := time.Now()
	probs, err := s.classifier.PredictProbability(ctx, rows)
	s.observe(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}

	if len(probs) != len(rows) {
		return nil, fmt.Errorf("%w: classifier returned %d probabilities for %d rows", ErrScoring, len(probs), len(rows))
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: probability %v for row %d outside [0,1]", ErrScoring, p, i)
		}
	}
	return probs, nil
}
