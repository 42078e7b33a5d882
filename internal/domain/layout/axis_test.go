package layout

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAxisTicks(t *testing.T) {
	Convey("AxisTicks", t, func() {
		Convey("picks round steps", func() {
			So(AxisTicks(1800, 2000, 4), ShouldResemble, []int{1800, 1850, 1900, 1950, 2000})
			So(AxisTicks(-800, 2030, 6), ShouldResemble, []int{-500, 0, 500, 1000, 1500, 2000})
		})

		Convey("never steps below a year", func() {
			So(AxisTicks(1900.2, 1903.5, 20), ShouldResemble, []int{1901, 1902, 1903})
		})

		Convey("returns nothing for empty ranges", func() {
			So(AxisTicks(10, 10, 5), ShouldBeNil)
			So(AxisTicks(0, 100, 0), ShouldBeNil)
		})
	})
}
