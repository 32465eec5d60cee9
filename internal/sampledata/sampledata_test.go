package sampledata_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/surveytarget/internal/adapters/classifier"
	"github.com/okian/surveytarget/internal/adapters/repository"
	"github.com/okian/surveytarget/internal/domain/features"
	"github.com/okian/surveytarget/internal/domain/model"
	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/sampledata"
	"github.com/okian/surveytarget/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRoster(t *testing.T) {
	Convey("Given a seeded configuration", t, func() {
		cfg := sampledata.DefaultConfig()
		cfg.Records = 200

		Convey("Then generation is deterministic", func() {
			So(sampledata.Roster(cfg), ShouldResemble, sampledata.Roster(cfg))
		})

		Convey("And identifiers are unique with consistent derived fields", func() {
			seen := map[string]bool{}
			for _, r := range sampledata.Roster(cfg) {
				So(seen[r.NPI], ShouldBeFalse)
				seen[r.NPI] = true
				So(len(r.NPI), ShouldEqual, 10)
				So(r.LoginHour, ShouldEqual, r.LoginTime.Hour())
				So(r.DayOfWeek, ShouldEqual, model.MondayIndex(r.LoginTime.Weekday()))
			}
		})

		Convey("And the model covers every generated level", func() {
			m, err := classifier.New(sampledata.Model())
			So(err, ShouldBeNil)
			rows := features.NewAssembler().Assemble(sampledata.Roster(cfg), query.Params{Hour: 3, Day: 6})
			probs, err := m.PredictProbability(context.Background(), rows)
			So(err, ShouldBeNil)
			So(len(probs), ShouldEqual, 200)
		})
	})
}

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, ext := range []string{".xlsx", ".csv"} {
		Convey("Given output paths ending in "+ext, t, func() {
			dir := t.TempDir()
			cfg := sampledata.DefaultConfig()
			cfg.Records = 25
			cfg.RosterPath = filepath.Join(dir, "roster"+ext)
			cfg.ModelPath = filepath.Join(dir, "model.yaml")

			Convey("When running the generator", func() {
				So(sampledata.Run(ctx, cfg), ShouldBeNil)

				Convey("Then the roster loads back unchanged", func() {
					store, err := repository.Load(ctx, cfg.RosterPath)
					So(err, ShouldBeNil)
					want := sampledata.Roster(cfg)
					got := store.All(ctx)
					So(len(got), ShouldEqual, len(want))
					for i := range want {
						So(got[i].NPI, ShouldEqual, want[i].NPI)
						So(got[i].UsageMinutes, ShouldEqual, want[i].UsageMinutes)
						So(got[i].LoginTime.Equal(want[i].LoginTime), ShouldBeTrue)
					}
				})

				Convey("And the model artifact loads", func() {
					_, err := classifier.Load(cfg.ModelPath)
					So(err, ShouldBeNil)
				})
			})
		})
	}
}
