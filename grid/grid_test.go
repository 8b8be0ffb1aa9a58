package grid

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCell(t *testing.T) {
	Convey("Given a logical cell", t, func() {
		c := Cell{Col: 3, Row: 5}

		Convey("Doubled returns the cell scaled by two", func() {
			So(c.Doubled(), ShouldResemble, Cell{Col: 6, Row: 10})
		})

		Convey("IsUnset is false for any real cell", func() {
			So(c.IsUnset(), ShouldBeFalse)
		})

		Convey("Unset reports itself as unset", func() {
			So(Unset.IsUnset(), ShouldBeTrue)
		})
	})
}

func TestFromLines(t *testing.T) {
	Convey("Given a rectangular doubled-grid text maze", t, func() {
		lines := []string{
			"X0X",
			"0X0",
		}

		g, err := FromLines(lines)

		Convey("It parses without error", func() {
			So(err, ShouldBeNil)
			So(g.Rows(), ShouldEqual, 2)
			So(g.Cols(), ShouldEqual, 3)
		})

		Convey("Passage cells are recognized by the '0' byte", func() {
			So(g.IsPassage(1, 0), ShouldBeTrue)
			So(g.IsPassage(0, 0), ShouldBeFalse)
			So(g.IsPassage(0, 1), ShouldBeTrue)
		})

		Convey("Out-of-range coordinates are walls, not errors", func() {
			So(g.IsPassage(-1, 0), ShouldBeFalse)
			So(g.IsPassage(99, 99), ShouldBeFalse)
		})
	})

	Convey("Given rows of mismatched length", t, func() {
		_, err := FromLines([]string{"X0X", "0X"})

		Convey("It returns an error", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given no lines", t, func() {
		g, err := FromLines(nil)

		Convey("It yields an empty grid", func() {
			So(err, ShouldBeNil)
			So(g.Empty(), ShouldBeTrue)
		})
	})
}
