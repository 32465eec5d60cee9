// Package targeting selects and orders the records worth contacting.
package targeting

import (
	"fmt"
	"sort"

	"github.com/okian/surveytarget/internal/domain/model"
	"github.com/okian/surveytarget/internal/domain/query"
)

// DefaultThreshold is the minimum probability for a record to match.
const DefaultThreshold = 0.5

// Result is the outcome of one query. An empty result is a valid outcome,
// not an error.
type Result struct {
	Matches   []model.ScoredRecord
	Threshold float64
	Ranked    bool
	// Scored is the number of records considered before filtering.
	Scored int
}

// Empty reports the no-match condition.
func (r Result) Empty() bool {
	return len(r.Matches) == 0
}

// Len returns the number of matches.
func (r Result) Len() int {
	return len(r.Matches)
}

// Outcome is the answer to one query.
type Outcome struct {
	// RunID identifies the pipeline run that produced Result. Memoised
	// answers carry the id of the run that filled the memo.
	RunID  string
	Params query.Params
	// DayScored is false when each record's own login day was scored
	// instead of the query day.
	DayScored bool
	Result    Result
	// Cached reports the answer came from the memo or from a concurrent
	// identical query.
	Cached bool
}

// Combine pairs records with their probabilities. Both slices must be
// aligned and of equal length.
func Combine(records []model.Record, probs []float64) ([]model.ScoredRecord, error) {
	if len(records) != len(probs) {
		return nil, fmt.Errorf("combine: %d records but %d probabilities", len(records), len(probs))
	}
	scored := make([]model.ScoredRecord, len(records))
	for i, r := range records {
		scored[i] = model.ScoredRecord{Record: r, Probability: probs[i]}
	}
	return scored, nil
}

// Filter keeps every record whose probability is at least threshold, in
// input order.
func Filter(scored []model.ScoredRecord, threshold float64) Result {
	matches := make([]model.ScoredRecord, 0, len(scored))
	for _, s := range scored {
		if s.Probability >= threshold {
			matches = append(matches, s)
		}
	}
	return Result{Matches: matches, Threshold: threshold, Scored: len(scored)}
}

// Rank orders matches by probability, highest first. Ties keep input order.
// The input result is not modified.
func Rank(r Result) Result {
	ranked := make([]model.ScoredRecord, len(r.Matches))
	copy(ranked, r.Matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})
	r.Matches = ranked
	r.Ranked = true
	return r
}
