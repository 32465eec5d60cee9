// Package features turns roster records into classifier input rows for a
// given contact time.
package features

import (
	"github.com/okian/surveytarget/internal/domain/model"
	"github.com/okian/surveytarget/internal/domain/query"
)

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithDayOverride controls whether the query day replaces every record's
// day of week. When disabled the record's derived day is kept.
func WithDayOverride(enabled bool) Option {
	return func(a *Assembler) {
		a.overrideDay = enabled
	}
}

// Assembler builds feature rows. The query hour always replaces the
// record's login hour: the question scored is "would this person respond
// if contacted at that time", not what they did historically.
type Assembler struct {
	overrideDay bool
}

// NewAssembler creates an assembler; the day override is on by default.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{overrideDay: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OverridesDay reports whether the query day participates in scoring.
func (a *Assembler) OverridesDay() bool {
	return a.overrideDay
}

// Assemble returns one row per record, aligned with records. An empty
// roster yields an empty, non-nil matrix.
func (a *Assembler) Assemble(records []model.Record, p query.Params) []model.FeatureRow {
	rows := make([]model.FeatureRow, len(records))
	for i, r := range records {
		day := r.DayOfWeek
		if a.overrideDay {
			day = p.Day
		}
		rows[i] = model.FeatureRow{
			State:          r.State,
			Region:         r.Region,
			Speciality:     r.Speciality,
			SurveyAttempts: r.SurveyAttempts,
			UsageMinutes:   r.UsageMinutes,
			LoginHour:      p.Hour,
			DayOfWeek:      day,
		}
	}
	return rows
}
