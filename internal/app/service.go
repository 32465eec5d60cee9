// Package service runs the targeting pipeline behind the HTTP API and CLI:
// load once, then assemble, score, filter and optionally rank per query.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/okian/surveytarget/internal/adapters/classifier"
	"github.com/okian/surveytarget/internal/adapters/export"
	"github.com/okian/surveytarget/internal/adapters/repository"
	"github.com/okian/surveytarget/internal/domain/features"
	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/domain/scoring"
	"github.com/okian/surveytarget/internal/domain/targeting"
	"github.com/okian/surveytarget/pkg/logger"
	"github.com/okian/surveytarget/pkg/metrics"
)

type run struct {
	id     string
	result targeting.Result
}

// Service implements the API dependencies for the targeting pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	classifier scoring.Classifier
	scorer     *scoring.Scorer
	assembler  *features.Assembler

	// Configuration
	datasetPath   string
	datasetSheet  string
	modelPath     string
	threshold     float64
	dayInput      bool
	rank          bool
	unknownPolicy classifier.Policy

	// Result memo. Keys are bounded by 24 hours x 7 days.
	flight  singleflight.Group
	cacheMu sync.RWMutex
	cache   map[string]run

	// State
	started   bool
	queries   int64
	lastRunID string

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		datasetPath:   "dummy_npi_data.xlsx",
		modelPath:     "doctor_targeting_model.yaml",
		threshold:     targeting.DefaultThreshold,
		dayInput:      true,
		unknownPolicy: classifier.PolicyError,
		cache:         make(map[string]run),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the roster and the model. A load failure aborts startup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("pipeline")
	}

	if s.store == nil {
		store, err := repository.Load(ctx, s.datasetPath, repository.WithSheet(s.datasetSheet))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoad, err)
		}
		s.store = store
	}
	if s.classifier == nil {
		model, err := classifier.Load(s.modelPath, classifier.WithUnknownCategory(s.unknownPolicy))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoad, err)
		}
		s.logger.Info(ctx, "model loaded",
			logger.String("model", model.Name()),
			logger.String("unknownCategory", string(model.Policy())))
		s.classifier = model
	}

	s.assembler = features.NewAssembler(features.WithDayOverride(s.dayInput))
	s.scorer = scoring.NewScorer(s.classifier, scoring.WithObserver(func(d time.Duration) {
		metrics.RecordScoringLatency(float64(d.Microseconds()) / 1000)
	}))

	records := s.store.Count(ctx)
	metrics.UpdateRosterRecords(records)
	s.started = true
	s.logger.Info(ctx, "targeting service started",
		logger.String("dataset", s.store.Source()),
		logger.Int("records", records),
		logger.Float64("threshold", s.threshold),
		logger.Bool("dayInput", s.dayInput),
		logger.Bool("rankByProbability", s.rank),
	)
	return nil
}

// Stop drops cached results and marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cacheMu.Lock()
	clear(s.cache)
	s.cacheMu.Unlock()

	s.started = false
	s.logger.Info(context.Background(), "targeting service stopped")
}

// DayInput reports whether the query day participates in scoring.
func (s *Service) DayInput() bool {
	return s.dayInput
}

// Targets answers a query: validate, assemble, score, filter and rank when
// configured. An empty result is returned without error. Identical
// concurrent queries share one pipeline run.
func (s *Service) Targets(ctx context.Context, p query.Params) (targeting.Outcome, error) {
	start := time.Now()
	out, err := s.targets(ctx, p)
	metrics.RecordPipelineLatency(float64(time.Since(start).Microseconds()) / 1000)

	switch {
	case err == nil && out.Result.Empty():
		metrics.RecordQuery(metrics.OutcomeEmpty)
	case err == nil:
		metrics.RecordQuery(metrics.OutcomeMatched)
	case errors.Is(err, query.ErrInvalidInput):
		metrics.RecordQuery(metrics.OutcomeInvalid)
	case errors.Is(err, scoring.ErrScoring):
		metrics.RecordQuery(metrics.OutcomeScoringError)
	default:
		metrics.RecordQuery(metrics.OutcomeFailed)
	}
	return out, err
}

func (s *Service) targets(ctx context.Context, p query.Params) (targeting.Outcome, error) {
	if err := p.Validate(); err != nil {
		return targeting.Outcome{}, err
	}

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return targeting.Outcome{}, ErrNotStarted
	}

	out := targeting.Outcome{Params: p, DayScored: s.dayInput}
	key := s.cacheKey(p)

	s.cacheMu.RLock()
	cached, ok := s.cache[key]
	s.cacheMu.RUnlock()
	if ok {
		metrics.RecordCacheHit()
		out.RunID, out.Result, out.Cached = cached.id, cached.result, true
		s.markServed(cached.id, cached.result)
		return out, nil
	}
	metrics.RecordCacheMiss()

	ch := s.flight.DoChan(key, func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not
		// fail the others.
		return s.compute(context.WithoutCancel(ctx), p)
	})
	select {
	case <-ctx.Done():
		return targeting.Outcome{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return targeting.Outcome{}, res.Err
		}
		r, _ := res.Val.(run)
		out.RunID, out.Result, out.Cached = r.id, r.result, res.Shared
		s.markServed(r.id, r.result)
		return out, nil
	}
}

func (s *Service) compute(ctx context.Context, p query.Params) (run, error) {
	r := run{id: uuid.NewString()}
	log := s.logger.With(logger.String("run_id", r.id))
	log.Debug(ctx, "running pipeline",
		logger.String("time", p.Clock()),
		logger.String("day", p.DayName()))

	records := s.store.All(ctx)
	rows := s.assembler.Assemble(records, p)
	probs, err := s.scorer.Score(ctx, rows)
	if err != nil {
		metrics.RecordScoringError()
		log.Warn(ctx, "scoring failed", logger.Error(err))
		return run{}, err
	}
	scored, err := targeting.Combine(records, probs)
	if err != nil {
		return run{}, fmt.Errorf("%w: %w", scoring.ErrScoring, err)
	}

	result := targeting.Filter(scored, s.threshold)
	if s.rank {
		result = targeting.Rank(result)
	}
	r.result = result

	s.cacheMu.Lock()
	s.cache[s.cacheKey(p)] = r
	s.cacheMu.Unlock()

	log.Info(ctx, "pipeline finished",
		logger.Int("scored", result.Scored),
		logger.Int("matches", result.Len()),
		logger.Bool("empty", result.Empty()))
	return r, nil
}

func (s *Service) markServed(runID string, r targeting.Result) {
	s.mu.Lock()
	s.queries++
	s.lastRunID = runID
	s.mu.Unlock()
	metrics.UpdateLastResultSize(r.Len())
}

// cacheKey ignores the minute, which is never scored, and the day when day
// input is disabled.
func (s *Service) cacheKey(p query.Params) string {
	if !s.dayInput {
		return strconv.Itoa(p.Hour)
	}
	return strconv.Itoa(p.Hour) + "/" + strconv.Itoa(p.Day)
}

// Export runs the query and writes its matches to w in format f. Empty
// results still produce a file with the header only.
func (s *Service) Export(ctx context.Context, p query.Params, f export.Format, w io.Writer) (targeting.Outcome, error) {
	out, err := s.Targets(ctx, p)
	if err != nil {
		return targeting.Outcome{}, err
	}
	n, err := export.Write(w, f, out.Result.Matches)
	metrics.RecordExportBytes(string(f), int(n))
	if err != nil {
		return out, fmt.Errorf("export %s: %w", f, err)
	}
	s.logger.Info(ctx, "result exported",
		logger.String("run_id", out.RunID),
		logger.String("format", string(f)),
		logger.Int("rows", out.Result.Len()),
		logger.Any("bytes", n))
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":           s.started,
		"threshold":         s.threshold,
		"dayInput":          s.dayInput,
		"rankByProbability": s.rank,
		"queriesServed":     s.queries,
		"lastRunId":         s.lastRunID,
	}
	if s.started {
		ctx := context.Background()
		s.cacheMu.RLock()
		stats["cachedQueries"] = len(s.cache)
		s.cacheMu.RUnlock()
		stats["dataset"] = s.store.Source()
		stats["records"] = s.store.Count(ctx)
		if m, ok := s.classifier.(*classifier.Model); ok {
			stats["model"] = m.Name()
		}
	}
	return stats
}
