package config_test

import (
	"errors"
	"testing"

	"github.com/okian/surveytarget/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Threshold, convey.ShouldEqual, 0.5)
			convey.So(cfg.DayInput, convey.ShouldBeTrue)
			convey.So(cfg.RankByProbability, convey.ShouldBeFalse)
			convey.So(cfg.UnknownCategory, convey.ShouldEqual, config.UnknownCategoryError)
			convey.So(cfg.DefaultHour, convey.ShouldEqual, 8)
			convey.So(cfg.DefaultDay, convey.ShouldEqual, 0)
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "dummy_npi_data.xlsx")
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one constraint each", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"empty dataset", func(c *config.Config) { c.DatasetPath = " " }},
			{"empty model", func(c *config.Config) { c.ModelPath = "" }},
			{"threshold above 1", func(c *config.Config) { c.Threshold = 1.5 }},
			{"negative threshold", func(c *config.Config) { c.Threshold = -0.1 }},
			{"hour out of range", func(c *config.Config) { c.DefaultHour = 24 }},
			{"day out of range", func(c *config.Config) { c.DefaultDay = 7 }},
			{"negative burst", func(c *config.Config) { c.RateLimitBurst = -1 }},
			{"unknown policy", func(c *config.Config) { c.UnknownCategory = "guess" }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected as invalid config", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
