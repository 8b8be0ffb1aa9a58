package qlearn

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"labyrinth/grid"
	"labyrinth/patherr"
)

func TestQActionsArgmax(t *testing.T) {
	Convey("Given tied Q-values", t, func() {
		qa := QActions{0, 0, 0, 0}

		Convey("Argmax breaks ties toward the lowest action index", func() {
			So(qa.Argmax(), ShouldEqual, Left)
		})
	})

	Convey("Given a clear maximum", t, func() {
		qa := QActions{1, 5, 2, 0}

		Convey("Argmax returns it", func() {
			So(qa.Argmax(), ShouldEqual, Up)
			So(qa.Max(), ShouldEqual, 5.0)
		})
	})
}

func TestEpisodeBudget(t *testing.T) {
	Convey("Given the three-way schedule over M=max(R,C)", t, func() {
		Convey("Small mazes use the floor(M*1.55*100) branch", func() {
			So(episodeBudget(10), ShouldEqual, 1550)
		})
		Convey("Mid-size mazes use M*200", func() {
			So(episodeBudget(35), ShouldEqual, 7000)
		})
		Convey("Large mazes use M*200+500", func() {
			So(episodeBudget(50), ShouldEqual, 10500)
		})
	})
}

func TestTrainValidation(t *testing.T) {
	Convey("Given a maze and an out-of-bounds start", t, func() {
		g, _ := grid.FromLines([]string{"000", "000", "000"})
		rng := rand.New(rand.NewSource(1))

		_, err := Train(g, grid.Cell{Col: 9, Row: 9}, grid.Cell{Col: 0, Row: 0}, rng)

		Convey("It returns ErrIncorrectPoint", func() {
			So(err, ShouldEqual, patherr.ErrIncorrectPoint)
		})
	})

	Convey("Given an empty maze", t, func() {
		g, _ := grid.FromLines(nil)
		rng := rand.New(rand.NewSource(1))

		_, err := Train(g, grid.Cell{Col: 0, Row: 0}, grid.Cell{Col: 0, Row: 0}, rng)

		Convey("It returns ErrIncorrectPoint without panicking", func() {
			So(err, ShouldEqual, patherr.ErrIncorrectPoint)
		})
	})
}

func TestTrainAndExtractPath(t *testing.T) {
	Convey("Given a fully open 2x2 logical room and a seeded RNG", t, func() {
		g, _ := grid.FromLines([]string{
			"0000",
			"0000",
			"0000",
			"0000",
		})
		start := grid.Cell{Col: 0, Row: 0}
		goal := grid.Cell{Col: 1, Row: 1}
		rng := rand.New(rand.NewSource(42))

		table, err := Train(g, start, goal, rng)
		So(err, ShouldBeNil)

		Convey("ExtractPath follows the greedy policy to the goal", func() {
			path, err := ExtractPath(g, table, start, goal)
			So(err, ShouldBeNil)
			So(path[0], ShouldResemble, goal.Doubled())
			So(path[len(path)-1], ShouldResemble, start.Doubled())
		})
	})
}

func TestExtractPathUntrainedCell(t *testing.T) {
	Convey("Given a table whose start row was never visited during training", t, func() {
		g, _ := grid.FromLines([]string{
			"0000",
			"0000",
			"0000",
			"0000",
		})
		start := grid.Cell{Col: 0, Row: 0}
		goal := grid.Cell{Col: 1, Row: 1}

		// All-zero QActions at the doubled start cell: Argmax ties toward
		// Left, which walks off the grid (col -1), a wall by IsPassageCell's
		// out-of-range convention. A real Train run leaves rarely-visited
		// cells exactly this way.
		table := newTable(g.Rows(), g.Cols())

		Convey("ExtractPath reports PathNotFound instead of indexing the off-grid cell", func() {
			_, err := ExtractPath(g, table, start, goal)
			So(err, ShouldEqual, patherr.ErrPathNotFound)
		})
	})
}
