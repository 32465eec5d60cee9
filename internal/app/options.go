package service

import (
	"github.com/okian/surveytarget/internal/adapters/classifier"
	"github.com/okian/surveytarget/internal/adapters/repository"
	"github.com/okian/surveytarget/internal/domain/scoring"
	"github.com/okian/surveytarget/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataset sets the roster file and, for workbooks, the sheet to read.
func WithDataset(path, sheet string) Option {
	return func(s *Service) {
		if path != "" {
			s.datasetPath = path
		}
		s.datasetSheet = sheet
	}
}

// WithModelPath sets the classifier artifact to load at Start.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithThreshold sets the minimum probability for a match.
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// WithDayInput controls whether the query day overrides every record's day.
func WithDayInput(enabled bool) Option {
	return func(s *Service) {
		s.dayInput = enabled
	}
}

// WithRankByProbability orders matches by probability instead of roster order.
func WithRankByProbability(enabled bool) Option {
	return func(s *Service) {
		s.rank = enabled
	}
}

// WithUnknownCategory sets the policy for levels the model never saw.
func WithUnknownCategory(policy string) Option {
	return func(s *Service) {
		s.unknownPolicy = classifier.Policy(policy)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses an already loaded roster instead of reading the dataset file.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClassifier uses c instead of loading the model artifact.
func WithClassifier(c scoring.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}
