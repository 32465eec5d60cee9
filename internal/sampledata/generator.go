package sampledata

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/okian/surveytarget/internal/adapters/classifier"
	"github.com/okian/surveytarget/internal/domain/model"
)

const npiBase = 1_000_000_000

// Roster returns cfg.Records synthetic records. Output depends only on cfg.
func Roster(cfg Config) []model.Record {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	states := sortedStates()
	days := max(cfg.Days, 1)

	records := make([]model.Record, cfg.Records)
	for i := range records {
		state := states[rng.IntN(len(states))]
		login := cfg.Start.
			Add(time.Duration(rng.IntN(days)) * 24 * time.Hour).
			Add(time.Duration(loginHour(rng)) * time.Hour).
			Add(time.Duration(rng.IntN(60)) * time.Minute)

		r := model.Record{
			NPI:            strconv.Itoa(npiBase + i*7919%npiBase),
			State:          state,
			Region:         regionsByState[state],
			Speciality:     specialities[rng.IntN(len(specialities))],
			SurveyAttempts: float64(rng.IntN(8)),
			UsageMinutes:   math.Round(rng.ExpFloat64()*2500) / 100,
			LoginTime:      login,
		}
		r.Derive()
		records[i] = r
	}
	return records
}

// loginHour favours office hours.
func loginHour(rng *rand.Rand) int {
	if rng.Float64() < 0.7 {
		return 8 + rng.IntN(10)
	}
	return rng.IntN(24)
}

// Model returns a logistic artifact covering every level Roster can emit.
// Afternoons mid-week score highest; more survey attempts and usage help.
func Model() classifier.Artifact {
	a := classifier.Artifact{
		Name:      "doctor-attendance",
		Version:   "1",
		Intercept: -0.4,
		Categorical: map[string]map[string]float64{
			model.ColumnState:      {},
			model.ColumnRegion:     {"West": 0.15, "South": -0.1, "Northeast": 0.05, "Midwest": -0.05},
			model.ColumnSpeciality: {},
			model.ColumnLoginHour:  {},
			model.ColumnDayOfWeek:  {},
		},
		Numeric: map[string]classifier.Numeric{
			model.ColumnSurveyAttempts: {Mean: 3.5, Scale: 2.3, Weight: 0.6},
			model.ColumnUsageTime:      {Mean: 25, Scale: 25, Weight: 0.4},
		},
	}
	for i, s := range sortedStates() {
		a.Categorical[model.ColumnState][s] = float64(i%3-1) * 0.1
	}
	for i, s := range specialities {
		a.Categorical[model.ColumnSpeciality][s] = float64(i%4-1) * 0.15
	}
	for h := range 24 {
		// Peaks at 14:00, lowest around 02:00.
		a.Categorical[model.ColumnLoginHour][strconv.Itoa(h)] = 1.2 * math.Cos(2*math.Pi*float64(h-14)/24)
	}
	dayWeights := []float64{0.1, 0.4, 0.5, 0.3, -0.1, -0.8, -1.0}
	for d, w := range dayWeights {
		a.Categorical[model.ColumnDayOfWeek][strconv.Itoa(d)] = w
	}
	return a
}

func sortedStates() []string {
	states := make([]string, 0, len(regionsByState))
	for s := range regionsByState {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}
