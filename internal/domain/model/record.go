// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// Roster and feature column names as they appear in the dataset, the model
// artifact and the export header.
const (
	ColumnNPI            = "NPI"
	ColumnState          = "State"
	ColumnRegion         = "Region"
	ColumnSpeciality     = "Speciality"
	ColumnSurveyAttempts = "Count of Survey Attempts"
	ColumnUsageTime      = "Usage Time (mins)"
	ColumnLoginTime      = "Login Time"
	ColumnLoginHour      = "Login Hour"
	ColumnDayOfWeek      = "Day of Week"
	ColumnProbability    = "Attendance_Probability"
)

// FeatureColumns lists the classifier inputs in model order.
var FeatureColumns = []string{
	ColumnState,
	ColumnRegion,
	ColumnSpeciality,
	ColumnSurveyAttempts,
	ColumnUsageTime,
	ColumnLoginHour,
	ColumnDayOfWeek,
}

// Record is one roster row. LoginHour and DayOfWeek are derived from
// LoginTime and must be kept consistent with it; use Derive after setting
// LoginTime.
type Record struct {
	NPI            string
	State          string
	Region         string
	Speciality     string
	SurveyAttempts float64
	UsageMinutes   float64
	LoginTime      time.Time
	LoginHour      int // 0-23
	DayOfWeek      int // 0=Monday .. 6=Sunday
}

// Derive recomputes LoginHour and DayOfWeek from LoginTime.
func (r *Record) Derive() {
	r.LoginHour = r.LoginTime.Hour()
	r.DayOfWeek = MondayIndex(r.LoginTime.Weekday())
}

// MondayIndex maps Go's Sunday-based weekday to a Monday=0 index.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// FeatureRow is the exact input row the classifier expects.
type FeatureRow struct {
	State          string
	Region         string
	Speciality     string
	SurveyAttempts float64
	UsageMinutes   float64
	LoginHour      int
	DayOfWeek      int
}

// Level returns the categorical representation of column. Integer columns
// are rendered in base 10 so they can be modelled as categories too.
func (f FeatureRow) Level(column string) (string, bool) {
	switch column {
	case ColumnState:
		return f.State, true
	case ColumnRegion:
		return f.Region, true
	case ColumnSpeciality:
		return f.Speciality, true
	case ColumnLoginHour:
		return strconv.Itoa(f.LoginHour), true
	case ColumnDayOfWeek:
		return strconv.Itoa(f.DayOfWeek), true
	}
	return "", false
}

// Number returns the numeric representation of column.
func (f FeatureRow) Number(column string) (float64, bool) {
	switch column {
	case ColumnSurveyAttempts:
		return f.SurveyAttempts, true
	case ColumnUsageTime:
		return f.UsageMinutes, true
	case ColumnLoginHour:
		return float64(f.LoginHour), true
	case ColumnDayOfWeek:
		return float64(f.DayOfWeek), true
	}
	return 0, false
}

// ScoredRecord is a Record with its attendance probability for one query.
type ScoredRecord struct {
	Record
	Probability float64
}
