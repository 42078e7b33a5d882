package layout_test

import (
	"testing"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func identityX(year float64) float64 { return year }

func TestPack(t *testing.T) {
	Convey("Given overlapping lifespans on a one-pixel-per-year scale", t, func() {
		cfg := layout.DefaultConfig()
		cfg.CurrentYear = 2025
		records := []model.Record{
			{ID: "late", BirthYear: 1860, DeathYear: model.Year(1900)},
			{ID: "early", BirthYear: 1800, DeathYear: model.Year(1850)},
			{ID: "mid", BirthYear: 1820, DeathYear: model.Year(1870)},
		}

		Convey("When packing", func() {
			lanes := layout.Pack(records, identityX, cfg)

			Convey("Then each record takes the lowest free lane", func() {
				So(lanes, ShouldResemble, map[string]int{"early": 0, "mid": 1, "late": 0})
			})
		})

		Convey("When the gap forbids reusing a lane", func() {
			cfg.MinGap = 20
			slots, n := layout.PackSlots(records, identityX, cfg)

			So(n, ShouldEqual, 3)
			So(slots[0].Record.ID, ShouldEqual, "early")
			So(slots[2].Record.ID, ShouldEqual, "late")
			So(slots[2].Lane, ShouldEqual, 2)
		})

		Convey("When the input is empty", func() {
			slots, n := layout.PackSlots(nil, identityX, cfg)
			So(slots, ShouldBeEmpty)
			So(n, ShouldEqual, 0)
		})

		Convey("Then the caller's slice is left untouched", func() {
			layout.Pack(records, identityX, cfg)
			So(records[0].ID, ShouldEqual, "late")
		})
	})

	Convey("Given records with equal birth years", t, func() {
		cfg := layout.DefaultConfig()
		cfg.CurrentYear = 2025
		records := []model.Record{
			{ID: "b", BirthYear: 1900, DeathYear: model.Year(1950)},
			{ID: "a", BirthYear: 1900, DeathYear: model.Year(1950)},
		}

		Convey("Then ID breaks the tie", func() {
			So(layout.Pack(records, identityX, cfg), ShouldResemble, map[string]int{"a": 0, "b": 1})
		})
	})
}
