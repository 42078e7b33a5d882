package layout_test

import (
	"math"
	"testing"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestThreshold(t *testing.T) {
	Convey("Given the default engine config", t, func() {
		cfg := layout.DefaultConfig()

		Convey("When fully zoomed out", func() {
			So(layout.Threshold(cfg, cfg.MinK), ShouldEqual, cfg.MaxScore)
		})

		Convey("When fully zoomed in", func() {
			So(layout.Threshold(cfg, cfg.MaxK), ShouldEqual, cfg.MinScore)
		})

		Convey("When halfway through the zoom extent", func() {
			So(layout.Threshold(cfg, (cfg.MinK+cfg.MaxK)/2), ShouldEqual, 55)
		})

		Convey("When the scale leaves the zoom extent it is clamped", func() {
			So(layout.Threshold(cfg, 0.25), ShouldEqual, cfg.MaxScore)
			So(layout.Threshold(cfg, 1000), ShouldEqual, cfg.MinScore)
			So(layout.Threshold(cfg, math.NaN()), ShouldEqual, cfg.MaxScore)
		})

		Convey("Then the threshold never increases as the scale grows", func() {
			prev := layout.Threshold(cfg, cfg.MinK)
			for k := cfg.MinK; k <= cfg.MaxK; k += 0.25 {
				cur := layout.Threshold(cfg, k)
				So(cur, ShouldBeLessThanOrEqualTo, prev)
				So(cur, ShouldBeBetweenOrEqual, cfg.MinScore, cfg.MaxScore)
				prev = cur
			}
		})

		Convey("When MinK equals MaxK", func() {
			cfg.MaxK = cfg.MinK
			So(layout.Threshold(cfg, 5), ShouldEqual, cfg.MaxScore)
		})
	})
}

func TestRelaxedThreshold(t *testing.T) {
	Convey("Given candidates with scattered prominence", t, func() {
		cfg := layout.DefaultConfig()
		candidates := []model.Record{
			{ID: "a", Prominence: 50},
			{ID: "b", Prominence: 50},
			{ID: "c", Prominence: 30},
			{ID: "d", Prominence: 5},
		}

		Convey("When enough candidates already pass", func() {
			cfg.MinInitialRows = 2
			So(layout.RelaxedThreshold(cfg, 50, candidates), ShouldEqual, 50)
		})

		Convey("When too few pass the base threshold", func() {
			cfg.MinInitialRows = 3
			So(layout.RelaxedThreshold(cfg, 100, candidates), ShouldEqual, 30)
		})

		Convey("When candidates run out before the minimum is met", func() {
			cfg.MinInitialRows = 10
			Convey("Then it stops at the lowest score above the floor", func() {
				So(layout.RelaxedThreshold(cfg, 100, candidates), ShouldEqual, 30)
			})
		})

		Convey("When there are no candidates", func() {
			So(layout.RelaxedThreshold(cfg, 80, nil), ShouldEqual, 80)
		})

		Convey("When relaxation is disabled", func() {
			cfg.MinInitialRows = 0
			So(layout.RelaxedThreshold(cfg, 100, candidates), ShouldEqual, 100)
		})
	})
}
