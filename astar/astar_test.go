package astar

import (
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

func TestSearch(t *testing.T) {
	Convey("Given a trivial 1x3 corridor with no walls between the endpoints", t, func() {
		g := mustGrid(t, []string{
			"00000",
		})
		start := grid.Cell{Col: 0, Row: 0}
		end := grid.Cell{Col: 4, Row: 0}

		path, err := Search(g, start, end)

		Convey("It finds a path goal-first, start-last", func() {
			So(err, ShouldBeNil)
			So(path[0], ShouldResemble, end)
			So(path[len(path)-1], ShouldResemble, start)
		})

		Convey("Every step in the path is 4-adjacent to the next", func() {
			for i := 0; i+1 < len(path); i++ {
				dc := abs(path[i].Col - path[i+1].Col)
				dr := abs(path[i].Row - path[i+1].Row)
				So(dc+dr, ShouldEqual, 1)
			}
		})
	})

	Convey("Given a maze where a wall isolates the goal", t, func() {
		g := mustGrid(t, []string{
			"0X0",
		})
		start := grid.Cell{Col: 0, Row: 0}
		end := grid.Cell{Col: 2, Row: 0}

		_, err := Search(g, start, end)

		Convey("It returns PathNotFound", func() {
			So(err, ShouldEqual, patherr.ErrPathNotFound)
		})
	})

	Convey("Given a start that equals the end", t, func() {
		g := mustGrid(t, []string{"0"})
		start := grid.Cell{Col: 0, Row: 0}

		path, err := Search(g, start, start)

		Convey("It returns a single-cell path with no error", func() {
			So(err, ShouldBeNil)
			So(path, ShouldResemble, []grid.Cell{start})
		})
	})
}
