package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/surveytarget/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTargetListWireNames(t *testing.T) {
	Convey("Given a target list", t, func() {
		list := types.TargetList{
			RunID:     "run",
			Query:     types.Query{Hour: 14, Minute: 30, Day: 4, DayName: "Friday"},
			Threshold: 0.5,
			Count:     1,
			Targets: []types.Target{
				{NPI: "1234567890", State: "CA", Region: "West", Speciality: "Cardiology", AttendanceProbability: 0.75},
			},
		}

		Convey("When encoding it as JSON", func() {
			raw, err := json.Marshal(list)
			So(err, ShouldBeNil)
			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			Convey("Then the field names the dashboard reads are used", func() {
				for _, k := range []string{"run_id", "query", "threshold", "ranked", "count", "empty", "message", "targets"} {
					So(doc, ShouldContainKey, k)
				}
				q := doc["query"].(map[string]any)
				So(q["day_name"], ShouldEqual, "Friday")
				target := doc["targets"].([]any)[0].(map[string]any)
				So(target["attendance_probability"], ShouldEqual, 0.75)
				So(target["npi"], ShouldEqual, "1234567890")
			})
		})
	})
}
