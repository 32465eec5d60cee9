// Package query validates and resolves the contact time and day a caller
// wants to score the roster for.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DayNames are indexed by the Monday=0 day-of-week convention.
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Params are the query parameters of one interaction. Minute is carried for
// display only; the model is scored at hour granularity.
type Params struct {
	Hour   int `validate:"min=0,max=23"`
	Minute int `validate:"min=0,max=59"`
	Day    int `validate:"min=0,max=6"`
}

// Input holds raw, optional query values as received from a caller. Empty
// fields fall back to the previous parameters.
type Input struct {
	Hour string // "0".."23"
	Time string // "HH:MM", overrides Hour's minute
	Day  string // "Monday".."Sunday" or "0".."6"
}

// Validate reports ErrInvalidInput when any field is out of range.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s=%v violates %s=%s", ErrInvalidInput,
			strings.ToLower(fe.Field()), fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// DayName returns the English name of p.Day.
func (p Params) DayName() string {
	return DayName(p.Day)
}

// Clock renders the contact time as HH:MM.
func (p Params) Clock() string {
	return fmt.Sprintf("%02d:%02d", p.Hour, p.Minute)
}

// Encode serialises p for round-tripping through a cookie or flag.
func (p Params) Encode() string {
	return fmt.Sprintf("%s/%d", p.Clock(), p.Day)
}

// Decode parses the output of Encode and validates it.
func Decode(s string) (Params, error) {
	clock, day, ok := strings.Cut(s, "/")
	if !ok {
		return Params{}, fmt.Errorf("%w: malformed encoded query %q", ErrInvalidInput, s)
	}
	hour, minute, err := parseClock(clock)
	if err != nil {
		return Params{}, err
	}
	d, err := ParseDay(day)
	if err != nil {
		return Params{}, err
	}
	p := Params{Hour: hour, Minute: minute, Day: d}
	return p, p.Validate()
}

// Resolve applies in on top of last, the caller-owned parameters of the
// previous interaction, and validates the outcome.
func Resolve(in Input, last Params) (Params, error) {
	p := last

	if t := strings.TrimSpace(in.Time); t != "" {
		hour, minute, err := parseClock(t)
		if err != nil {
			return Params{}, err
		}
		p.Hour, p.Minute = hour, minute
	}

	if h := strings.TrimSpace(in.Hour); h != "" {
		hour, err := strconv.Atoi(h)
		if err != nil {
			return Params{}, fmt.Errorf("%w: hour %q is not a number", ErrInvalidInput, h)
		}
		if strings.TrimSpace(in.Time) != "" && hour != p.Hour {
			return Params{}, fmt.Errorf("%w: hour %d disagrees with time %s", ErrInvalidInput, hour, in.Time)
		}
		if strings.TrimSpace(in.Time) == "" {
			p.Minute = 0
		}
		p.Hour = hour
	}

	if d := strings.TrimSpace(in.Day); d != "" {
		day, err := ParseDay(d)
		if err != nil {
			return Params{}, err
		}
		p.Day = day
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ParseDay accepts a day name (case-insensitive, three-letter prefixes
// allowed) or a Monday=0 index.
func ParseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("%w: day %d outside [0,6]", ErrInvalidInput, n)
		}
		return n, nil
	}
	lower := strings.ToLower(s)
	for i, name := range DayNames {
		n := strings.ToLower(name)
		if lower == n || (len(lower) >= 3 && strings.HasPrefix(n, lower)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, s)
}

// DayName returns the English name for a Monday=0 index, or "" when out of range.
func DayName(day int) string {
	if day < 0 || day >= len(DayNames) {
		return ""
	}
	return DayNames[day]
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidInput, s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q has a non-numeric hour", ErrInvalidInput, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q has a non-numeric minute", ErrInvalidInput, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time %q out of range", ErrInvalidInput, s)
	}
	return hour, minute, nil
}
