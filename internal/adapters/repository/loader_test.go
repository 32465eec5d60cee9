package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/surveytarget/internal/adapters/repository"
	"github.com/okian/surveytarget/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var header = []any{"NPI", "State", "Region", "Speciality", "Count of Survey Attempts", "Usage Time (mins)", "Login Time"}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Workbook(t *testing.T) {
	ctx := context.Background()

	Convey("Given a workbook roster with a datetime login column", t, func() {
		path := writeWorkbook(t, [][]any{
			header,
			{1234567890, "CA", "West", "Cardiology", 3, 42.5, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)},
			{},
			{1234567891, "NY", "Northeast", "Oncology", 0, 5, time.Date(2024, 3, 10, 21, 45, 0, 0, time.UTC)},
		})

		Convey("When loading it", func() {
			store, err := repository.Load(ctx, path)

			Convey("Then records are materialised and blank rows skipped", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 2)
				So(store.Source(), ShouldEqual, path)
			})

			Convey("And the derived login fields are consistent with the timestamp", func() {
				recs := store.All(ctx)
				So(recs[0].NPI, ShouldEqual, "1234567890")
				So(recs[0].UsageMinutes, ShouldEqual, 42.5)
				So(recs[0].LoginHour, ShouldEqual, 9)
				So(recs[0].DayOfWeek, ShouldEqual, 2) // Wednesday
				So(recs[1].LoginHour, ShouldEqual, 21)
				So(recs[1].DayOfWeek, ShouldEqual, 6) // Sunday
				for _, r := range recs {
					So(r.LoginHour, ShouldEqual, r.LoginTime.Hour())
					So(r.DayOfWeek, ShouldEqual, model.MondayIndex(r.LoginTime.Weekday()))
				}
			})

			Convey("And mutating a returned slice does not affect the store", func() {
				recs := store.All(ctx)
				recs[0].State = "XX"
				So(store.All(ctx)[0].State, ShouldEqual, "CA")
			})
		})

		Convey("When the requested sheet does not exist", func() {
			_, err := repository.Load(ctx, path, repository.WithSheet("Nope"))

			Convey("Then a load error is returned", func() {
				So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
			})
		})
	})

	Convey("Given a workbook with only a header row", t, func() {
		path := writeWorkbook(t, [][]any{header})

		Convey("Then it loads as an empty roster", func() {
			store, err := repository.Load(ctx, path)
			So(err, ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 0)
			So(store.All(ctx), ShouldNotBeNil)
		})
	})
}

func TestLoad_CSV(t *testing.T) {
	ctx := context.Background()

	Convey("Given a CSV roster with text timestamps", t, func() {
		path := writeFile(t, "roster.csv", "\ufeffNPI,State,Region,Speciality,Count of Survey Attempts,Usage Time (mins),Login Time\n"+
			"1000000001.0,TX,South,Neurology,2,30,2024-03-04 07:15:00\n"+
			"1000000002,WA, West ,Pediatrics,1,12.25,2024-03-09T18:00:00\n")

		Convey("When loading it", func() {
			store, err := repository.Load(ctx, path)

			Convey("Then values are parsed and trimmed", func() {
				So(err, ShouldBeNil)
				recs := store.All(ctx)
				So(len(recs), ShouldEqual, 2)
				So(recs[0].NPI, ShouldEqual, "1000000001")
				So(recs[0].LoginHour, ShouldEqual, 7)
				So(recs[0].DayOfWeek, ShouldEqual, 0) // Monday
				So(recs[1].Region, ShouldEqual, "West")
				So(recs[1].UsageMinutes, ShouldEqual, 12.25)
				So(recs[1].DayOfWeek, ShouldEqual, 5) // Saturday
			})
		})
	})

	Convey("Given rosters that violate the schema", t, func() {
		Convey("When a required column is missing", func() {
			path := writeFile(t, "roster.csv", "NPI,State,Region,Speciality,Usage Time (mins),Login Time\n1,CA,West,X,1,2024-01-01 08:00\n")
			_, err := repository.Load(ctx, path)

			Convey("Then the load error names the column", func() {
				var le *repository.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Column, ShouldEqual, "Count of Survey Attempts")
				So(errors.Is(err, repository.ErrMissingColumn), ShouldBeTrue)
				So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When a timestamp cannot be parsed", func() {
			path := writeFile(t, "roster.csv", "NPI,State,Region,Speciality,Count of Survey Attempts,Usage Time (mins),Login Time\n1,CA,West,X,1,1,yesterday\n")
			_, err := repository.Load(ctx, path)

			Convey("Then the load error names the row", func() {
				var le *repository.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Row, ShouldEqual, 2)
				So(le.Column, ShouldEqual, "Login Time")
			})
		})

		Convey("When a numeric cell is not a number", func() {
			path := writeFile(t, "roster.csv", "NPI,State,Region,Speciality,Count of Survey Attempts,Usage Time (mins),Login Time\n1,CA,West,X,many,1,2024-01-01 08:00\n")
			_, err := repository.Load(ctx, path)
			So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
		})

		Convey("When the file is missing", func() {
			_, err := repository.Load(ctx, filepath.Join(t.TempDir(), "absent.xlsx"))
			So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
		})

		Convey("When the extension is unsupported", func() {
			_, err := repository.Load(ctx, writeFile(t, "roster.json", "[]"))
			So(errors.Is(err, repository.ErrUnsupported), ShouldBeTrue)
		})

		Convey("When the file is empty", func() {
			_, err := repository.Load(ctx, writeFile(t, "roster.csv", ""))
			So(errors.Is(err, repository.ErrLoad), ShouldBeTrue)
		})
	})
}

func TestParseTimestamp(t *testing.T) {
	Convey("Given an Excel serial date", t, func() {
		// 45357.375 is 2024-03-06 09:00.
		ts, err := repository.ParseTimestamp("45357.375", time.UTC)

		Convey("Then it converts to the wall-clock time", func() {
			So(err, ShouldBeNil)
			So(ts.Equal(time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})
	})

	Convey("Given an RFC3339 timestamp with an offset", t, func() {
		ts, err := repository.ParseTimestamp("2024-03-06T09:00:00+02:00", time.UTC)

		Convey("Then the offset is preserved", func() {
			So(err, ShouldBeNil)
			So(ts.Hour(), ShouldEqual, 9)
		})
	})
}
