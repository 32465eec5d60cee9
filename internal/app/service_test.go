package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/surveytarget/internal/adapters/export"
	"github.com/okian/surveytarget/internal/adapters/repository"
	service "github.com/okian/surveytarget/internal/app"
	"github.com/okian/surveytarget/internal/domain/model"
	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/domain/scoring"
	"github.com/okian/surveytarget/internal/domain/targeting"
	"github.com/okian/surveytarget/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// bySpeciality scores each row with the probability keyed by its speciality
// and records what it was asked.
type bySpeciality struct {
	probs map[string]float64
	calls atomic.Int32
	mu    sync.Mutex
	last  []model.FeatureRow
}

func (c *bySpeciality) PredictProbability(_ context.Context, rows []model.FeatureRow) ([]float64, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.last = rows
	c.mu.Unlock()
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = c.probs[r.Speciality]
	}
	return out, nil
}

func roster() []model.Record {
	login := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC) // Wednesday
	recs := []model.Record{
		{NPI: "1", State: "CA", Region: "West", Speciality: "low", LoginTime: login},
		{NPI: "2", State: "NY", Region: "Northeast", Speciality: "mid", LoginTime: login},
		{NPI: "3", State: "TX", Region: "South", Speciality: "high", LoginTime: login},
	}
	for i := range recs {
		recs[i].Derive()
	}
	return recs
}

func newClassifier() *bySpeciality {
	return &bySpeciality{probs: map[string]float64{"low": 0.2, "mid": 0.6, "high": 0.9}}
}

func started(t *testing.T, c scoring.Classifier, records []model.Record, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{
		service.WithStore(repository.NewMemoryStore("memory", records)),
		service.WithClassifier(c),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func npis(out targeting.Outcome) []string {
	ids := make([]string, 0, out.Result.Len())
	for _, m := range out.Result.Matches {
		ids = append(ids, m.NPI)
	}
	return ids
}

func TestService_Targets(t *testing.T) {
	ctx := context.Background()

	Convey("Given three records scoring 0.2, 0.6 and 0.9", t, func() {
		c := newClassifier()
		svc := started(t, c, roster())
		defer svc.Stop()

		Convey("When querying at the default threshold", func() {
			out, err := svc.Targets(ctx, query.Params{Hour: 14, Minute: 30, Day: 4})

			Convey("Then the two matching records are returned in roster order", func() {
				So(err, ShouldBeNil)
				So(npis(out), ShouldResemble, []string{"2", "3"})
				So(out.Result.Matches[0].Probability, ShouldEqual, 0.6)
				So(out.Result.Scored, ShouldEqual, 3)
				So(out.RunID, ShouldNotBeEmpty)
				So(out.DayScored, ShouldBeTrue)
			})

			Convey("And the query hour and day replaced every record's own", func() {
				for _, r := range c.last {
					So(r.LoginHour, ShouldEqual, 14)
					So(r.DayOfWeek, ShouldEqual, 4)
				}
			})

			Convey("And matched records keep their own login fields", func() {
				So(out.Result.Matches[0].LoginHour, ShouldEqual, 9)
				So(out.Result.Matches[0].DayOfWeek, ShouldEqual, 2)
			})
		})

		Convey("When repeating an identical query", func() {
			first, err := svc.Targets(ctx, query.Params{Hour: 10, Day: 1})
			So(err, ShouldBeNil)
			second, err := svc.Targets(ctx, query.Params{Hour: 10, Minute: 45, Day: 1})

			Convey("Then the memoised result is served without rescoring", func() {
				So(err, ShouldBeNil)
				So(second.Cached, ShouldBeTrue)
				So(second.RunID, ShouldEqual, first.RunID)
				So(second.Params.Minute, ShouldEqual, 45)
				So(c.calls.Load(), ShouldEqual, 1)
				So(npis(second), ShouldResemble, npis(first))
			})
		})

		Convey("When the hour is out of range", func() {
			_, err := svc.Targets(ctx, query.Params{Hour: 25})

			Convey("Then InvalidInput is returned before scoring", func() {
				So(errors.Is(err, query.ErrInvalidInput), ShouldBeTrue)
				So(c.calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When many identical queries arrive together", func() {
			var wg sync.WaitGroup
			errs := make([]error, 16)
			sizes := make([]int, 16)
			for i := range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					out, err := svc.Targets(ctx, query.Params{Hour: 11, Day: 3})
					errs[i], sizes[i] = err, out.Result.Len()
				}()
			}
			wg.Wait()

			Convey("Then every caller gets the same answer", func() {
				for i := range 16 {
					So(errs[i], ShouldBeNil)
					So(sizes[i], ShouldEqual, 2)
				}
			})
		})
	})

	Convey("Given ranking and a higher threshold", t, func() {
		svc := started(t, newClassifier(), roster(),
			service.WithRankByProbability(true),
			service.WithThreshold(0.7))
		defer svc.Stop()

		Convey("Then only the strongest record matches", func() {
			out, err := svc.Targets(ctx, query.Params{Hour: 8})
			So(err, ShouldBeNil)
			So(npis(out), ShouldResemble, []string{"3"})
			So(out.Result.Ranked, ShouldBeTrue)
		})
	})

	Convey("Given ranking at the default threshold", t, func() {
		svc := started(t, newClassifier(), roster(), service.WithRankByProbability(true))
		defer svc.Stop()

		Convey("Then matches are ordered by probability", func() {
			out, err := svc.Targets(ctx, query.Params{Hour: 8})
			So(err, ShouldBeNil)
			So(npis(out), ShouldResemble, []string{"3", "2"})
		})
	})

	Convey("Given day input is disabled", t, func() {
		c := newClassifier()
		svc := started(t, c, roster(), service.WithDayInput(false))
		defer svc.Stop()

		Convey("Then records keep their login day and the day does not split the memo", func() {
			out, err := svc.Targets(ctx, query.Params{Hour: 8, Day: 6})
			So(err, ShouldBeNil)
			So(out.DayScored, ShouldBeFalse)
			for _, r := range c.last {
				So(r.DayOfWeek, ShouldEqual, 2)
			}
			again, err := svc.Targets(ctx, query.Params{Hour: 8, Day: 0})
			So(err, ShouldBeNil)
			So(again.Cached, ShouldBeTrue)
			So(c.calls.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given a classifier that rejects a category", t, func() {
		failing := scoring.ClassifierFunc(func(context.Context, []model.FeatureRow) ([]float64, error) {
			return nil, scoring.ErrUnknownCategory
		})
		svc := started(t, failing, roster())
		defer svc.Stop()

		Convey("Then a scoring error is returned and nothing is memoised", func() {
			_, err := svc.Targets(ctx, query.Params{Hour: 8})
			So(errors.Is(err, scoring.ErrScoring), ShouldBeTrue)
			So(errors.Is(err, scoring.ErrUnknownCategory), ShouldBeTrue)
			So(svc.GetStats()["cachedQueries"], ShouldEqual, 0)
		})
	})

	Convey("Given an empty roster", t, func() {
		c := newClassifier()
		svc := started(t, c, nil)
		defer svc.Stop()

		Convey("Then the result is empty without error", func() {
			out, err := svc.Targets(ctx, query.Params{Hour: 8})
			So(err, ShouldBeNil)
			So(out.Result.Empty(), ShouldBeTrue)
			So(c.calls.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then queries fail", func() {
			_, err := svc.Targets(ctx, query.Params{Hour: 8})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := started(t, newClassifier(), roster())
		defer svc.Stop()

		Convey("When exporting as CSV", func() {
			var buf bytes.Buffer
			out, err := svc.Export(ctx, query.Params{Hour: 15, Day: 0}, export.FormatCSV, &buf)

			Convey("Then the file round-trips to the same matches", func() {
				So(err, ShouldBeNil)
				got, err := export.ReadCSV(&buf)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, out.Result.Len())
				for i, m := range out.Result.Matches {
					So(got[i].NPI, ShouldEqual, m.NPI)
					So(got[i].Probability, ShouldEqual, m.Probability)
				}
			})
		})

		Convey("When exporting an invalid query", func() {
			var buf bytes.Buffer
			_, err := svc.Export(ctx, query.Params{Day: 9}, export.FormatCSV, &buf)

			Convey("Then nothing is written", func() {
				So(errors.Is(err, query.ErrInvalidInput), ShouldBeTrue)
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given missing input files", t, func() {
		svc := service.New(
			service.WithDataset("/nonexistent/roster.xlsx", ""),
			service.WithModelPath("/nonexistent/model.yaml"))

		Convey("Then Start fails with a load error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrLoad), ShouldBeTrue)
			So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given a started service", t, func() {
		svc := started(t, newClassifier(), roster())

		Convey("Then stats describe the loaded roster", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["records"], ShouldEqual, 3)
			So(stats["dataset"], ShouldEqual, "memory")
			So(stats["threshold"], ShouldEqual, 0.5)
		})

		Convey("And Stop is idempotent", func() {
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})
}
