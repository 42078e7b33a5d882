package layout_test

import (
	"testing"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVisible(t *testing.T) {
	Convey("Given records spread over the whole domain", t, func() {
		cfg := layout.DefaultConfig()
		cfg.CurrentYear = 2025
		v := model.Viewport{Width: 1000, Height: 400}
		records := []model.Record{
			{ID: "ancient", BirthYear: -700, DeathYear: model.Year(-650), Prominence: 100},
			{ID: "modern", BirthYear: 1800, DeathYear: model.Year(1850), Prominence: 100},
		}

		Convey("When zoomed in on the 18th century", func() {
			base, ok := layout.NewBaseScale(cfg, v)
			So(ok, ShouldBeTrue)
			k := 10.0
			zoom := model.ZoomTransform{Scale: k, TranslateX: -k * (1700*base.PixelsPerYear + base.Offset)}

			start, _, ok := layout.VisibleYearRange(zoom, v, cfg)
			So(ok, ShouldBeTrue)
			So(start, ShouldAlmostEqual, 1700, 1e-6)

			Convey("Then records far outside the buffered range are dropped", func() {
				got := layout.Visible(records, zoom, v, cfg)
				So(len(got), ShouldEqual, 1)
				So(got[0].ID, ShouldEqual, "modern")
			})
		})

		Convey("When the viewport is degenerate", func() {
			So(layout.Visible(records, model.Identity, model.Viewport{Width: 1000}, cfg), ShouldBeNil)
		})

		Convey("When the transform has no scale", func() {
			So(func() { layout.Visible(records, model.ZoomTransform{Scale: 0}, v, cfg) }, ShouldPanic)
		})

		Convey("When the config is invalid", func() {
			cfg.RowHeight = 0
			So(func() { layout.Visible(records, model.Identity, v, cfg) }, ShouldPanic)
		})
	})

	Convey("Given more qualifying records than rows", t, func() {
		cfg := layout.DefaultConfig()
		cfg.CurrentYear = 2025
		v := model.Viewport{Width: 1000, Height: 400}
		var records []model.Record
		for i := 0; i < 40; i++ {
			records = append(records, model.Record{
				ID:         string(rune('A' + i)),
				BirthYear:  1500 + i*5,
				DeathYear:  model.Year(1560 + i*5),
				Prominence: 60 + i,
			})
		}

		Convey("When the threshold lets every record through", func() {
			cfg.MaxScore = cfg.MinScore
			got := layout.Visible(records, model.Identity, v, cfg)

			Convey("Then the row budget keeps the most prominent ones", func() {
				So(cfg.RowBudget(v.Height), ShouldEqual, 15)
				So(len(got), ShouldEqual, 15)
				for _, r := range got {
					So(r.Prominence, ShouldBeGreaterThanOrEqualTo, 85)
				}
			})

			Convey("And the result is chronological", func() {
				for i := 1; i < len(got); i++ {
					So(got[i-1].BirthYear, ShouldBeLessThanOrEqualTo, got[i].BirthYear)
				}
			})
		})
	})
}
