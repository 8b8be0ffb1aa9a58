package engine

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"labyrinth/grid"
	"labyrinth/patherr"
)

func mustGrid(t *testing.T, lines []string) *grid.Grid {
	t.Helper()
	g, err := grid.FromLines(lines)
	if err != nil {
		t.Fatalf("building test grid: %v", err)
	}
	return g
}

// corridor is a 1x3 logical room (doubled 2x6): three passage cells in a
// row, joined by passages, with an unused wall row beneath them.
var corridor = []string{
	"000000",
	"XXXXXX",
}

// brokenCorridor is the same shape but with a wall between logical cells
// (0,0) and (1,0), cutting (0,0) off from the rest of the corridor.
var brokenCorridor = []string{
	"0X0000",
	"XXXXXX",
}

func TestSetStartSetEnd(t *testing.T) {
	Convey("Given an engine over a trivial open corridor", t, func() {
		e := NewWithRNG(rand.New(rand.NewSource(1)))
		e.SetMaze(mustGrid(t, corridor))

		Convey("Setting only the start leaves state at OneEndpoint", func() {
			err := e.SetStart(Point{X: 0, Y: 0}, 1, 1)
			So(err, ShouldBeNil)
			So(e.State(), ShouldEqual, OneEndpoint)
		})

		Convey("Setting both endpoints with a clear path pathes them", func() {
			So(e.SetStart(Point{X: 0, Y: 0}, 1, 1), ShouldBeNil)
			err := e.SetEnd(Point{X: 2, Y: 0}, 1, 1)
			So(err, ShouldBeNil)
			So(e.State(), ShouldEqual, BothEndpointsPathed)
			So(len(e.Path()), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given an engine over a trivial open corridor", t, func() {
		e := NewWithRNG(rand.New(rand.NewSource(1)))
		e.SetMaze(mustGrid(t, corridor))

		Convey("A click past the maze's logical bounds is rejected, not stored", func() {
			err := e.SetStart(Point{X: 100, Y: 0}, 1, 1)
			So(err, ShouldEqual, patherr.ErrIncorrectPoint)
			So(e.Start().IsUnset(), ShouldBeTrue)
			So(e.State(), ShouldEqual, Idle)
		})

		Convey("A click with a negative logical coordinate is rejected, not stored", func() {
			err := e.SetStart(Point{X: -1, Y: 0}, 1, 1)
			So(err, ShouldEqual, patherr.ErrIncorrectPoint)
			So(e.Start().IsUnset(), ShouldBeTrue)
			So(e.State(), ShouldEqual, Idle)
		})
	})

	Convey("Given an engine over a maze where the endpoints are isolated", t, func() {
		e := NewWithRNG(rand.New(rand.NewSource(1)))
		e.SetMaze(mustGrid(t, brokenCorridor))

		Convey("Setting both endpoints restores the previous one on failure", func() {
			So(e.SetStart(Point{X: 0, Y: 0}, 1, 1), ShouldBeNil)
			err := e.SetEnd(Point{X: 2, Y: 0}, 1, 1)

			So(err, ShouldEqual, patherr.ErrPathNotFound)
			So(e.State(), ShouldEqual, BothEndpointsFailed)
			// The just-set end is rolled back to unset, since it was the
			// previous value before this call.
			So(e.End().IsUnset(), ShouldBeTrue)
			So(e.Start(), ShouldResemble, grid.Cell{Col: 0, Row: 0})
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given an engine with no maze set", t, func() {
		e := New()

		Convey("Render returns an empty config", func() {
			cfg := e.Render(100, 100)
			So(cfg.Points, ShouldBeEmpty)
			So(cfg.Path, ShouldBeEmpty)
		})
	})

	Convey("Given an engine with both endpoints pathed", t, func() {
		e := NewWithRNG(rand.New(rand.NewSource(1)))
		e.SetMaze(mustGrid(t, corridor))
		So(e.SetStart(Point{X: 0, Y: 0}, 1, 1), ShouldBeNil)
		So(e.SetEnd(Point{X: 2, Y: 0}, 1, 1), ShouldBeNil)

		Convey("Render produces two markers and a non-empty polyline", func() {
			cfg := e.Render(100, 20)
			So(len(cfg.Points), ShouldEqual, 2)
			So(len(cfg.Path), ShouldBeGreaterThan, 0)
		})
	})
}

func TestQFind(t *testing.T) {
	Convey("Given an engine over a fully open room", t, func() {
		e := NewWithRNG(rand.New(rand.NewSource(7)))
		e.SetMaze(mustGrid(t, []string{
			"0000",
			"0000",
			"0000",
			"0000",
		}))

		Convey("QFind with an out-of-bounds goal fails with IncorrectPoint", func() {
			result := e.QFind(grid.Cell{Col: 0, Row: 0}, grid.Cell{Col: 9, Row: 9})
			So(result.OK, ShouldBeFalse)
			So(result.Message, ShouldEqual, patherr.MsgIncorrectPoint)
		})

		Convey("QFind between in-bounds cells adopts the extracted path", func() {
			result := e.QFind(grid.Cell{Col: 0, Row: 0}, grid.Cell{Col: 1, Row: 1})
			So(result.OK, ShouldBeTrue)
			So(e.State(), ShouldEqual, BothEndpointsPathed)
			So(len(e.Path()), ShouldBeGreaterThan, 0)
		})
	})
}
