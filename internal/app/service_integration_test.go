package service_test

import (
	"context"
	"path/filepath"
	"testing"

	service "github.com/okian/surveytarget/internal/app"
	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_Integration(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated roster and model on disk", t, func() {
		dir := t.TempDir()
		cfg := sampledata.DefaultConfig()
		cfg.Records = 300
		cfg.RosterPath = filepath.Join(dir, "roster.xlsx")
		cfg.ModelPath = filepath.Join(dir, "model.yaml")
		So(sampledata.Run(ctx, cfg), ShouldBeNil)

		svc := service.New(
			service.WithDataset(cfg.RosterPath, ""),
			service.WithModelPath(cfg.ModelPath))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When scoring a weekday afternoon and a weekend night", func() {
			day, err := svc.Targets(ctx, query.Params{Hour: 14, Day: 2})
			So(err, ShouldBeNil)
			night, err := svc.Targets(ctx, query.Params{Hour: 2, Day: 6})
			So(err, ShouldBeNil)

			Convey("Then every probability is valid and meets the threshold", func() {
				for _, m := range append(day.Result.Matches, night.Result.Matches...) {
					So(m.Probability, ShouldBeBetweenOrEqual, 0.5, 1.0)
				}
			})

			Convey("And the busier slot targets more doctors", func() {
				So(day.Result.Len(), ShouldBeGreaterThan, night.Result.Len())
				So(day.Result.Scored, ShouldEqual, 300)
			})
		})

		Convey("When the same query runs twice", func() {
			a, err := svc.Targets(ctx, query.Params{Hour: 9, Day: 0})
			So(err, ShouldBeNil)
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
			b, err := svc.Targets(ctx, query.Params{Hour: 9, Day: 0})
			So(err, ShouldBeNil)

			Convey("Then the results are identical", func() {
				So(b.Cached, ShouldBeFalse)
				So(b.Result.Matches, ShouldResemble, a.Result.Matches)
			})
		})
	})
}
