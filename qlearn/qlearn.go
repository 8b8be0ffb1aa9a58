// Package qlearn implements tabular Q-Learning over a doubled-grid maze:
// fixed hyperparameters, epsilon-greedy exploration decayed exponentially
// per episode, and greedy-rollout path extraction. Train is synchronous and
// deterministic given a seeded RNG — the reference implementation created a
// fresh RNG per action selection, burning entropy and precluding
// reproducible runs; this package instead takes one *rand.Rand per call and
// threads it through the whole episode loop, so the same grid/endpoints/RNG
// state always produce the same Q-table and extracted path.
package qlearn

import (
	"math"
	"math/rand"

	"labyrinth/grid"
	"labyrinth/patherr"
)

// Fixed hyperparameters. These are constants, not configuration: spec.md
// names them as fixed, and the devserver's config layer does not expose
// them for override.
const (
	Alpha    = 0.9  // learning rate
	Gamma    = 0.98 // discount
	Epsilon0 = 1.0  // initial exploration rate
	Lambda   = 0.01 // decay rate

	goalReward = 10.0
	wallReward = -10.0
	stepReward = -0.1

	// MaxRolloutSteps bounds the greedy-rollout path extraction; exceeding
	// it without reaching the goal is treated as PathNotFound.
	MaxRolloutSteps = 40000
)

// Action is one of the four cardinal moves.
type Action int

const (
	Left Action = iota
	Up
	Right
	Down
)

// displacements mirrors astar's neighbor scan order; LEFT/UP/RIGHT/DOWN map
// to actions 0..3 respectively, per the action alphabet's fixed ordering.
var displacements = [4]grid.Cell{
	{Col: -1, Row: 0},
	{Col: 0, Row: -1},
	{Col: 1, Row: 0},
	{Col: 0, Row: 1},
}

// QActions holds the four Q(s,a) values for one doubled cell.
type QActions [4]float64

// Argmax returns the action with the largest value, breaking ties by first
// occurrence (lowest action index).
func (qa *QActions) Argmax() Action {
	best := 0
	for i := 1; i < len(qa); i++ {
		if qa[i] > qa[best] {
			best = i
		}
	}
	return Action(best)
}

// Max returns the largest of the four Q-values.
func (qa *QActions) Max() float64 {
	return qa[qa.Argmax()]
}

// Table is a dense Q(s,a) table indexed by doubled coordinate, scoped to a
// single Train call.
type Table struct {
	rows, cols int
	data       [][]QActions
}

func newTable(rows, cols int) *Table {
	data := make([][]QActions, rows)
	for r := range data {
		data[r] = make([]QActions, cols)
	}
	return &Table{rows: rows, cols: cols, data: data}
}

// At returns the QActions row for cell c. Callers must only pass in-range
// doubled coordinates; Train/episode logic guarantees this by rewriting
// out-of-range transitions back onto the current cell before ever indexing.
func (t *Table) At(c grid.Cell) *QActions {
	return &t.data[c.Row][c.Col]
}

// episodeBudget implements spec.md's three-way schedule over M=max(R,C).
func episodeBudget(m int) int {
	switch {
	case m <= 30:
		return int(math.Floor(float64(m) * 1.55 * 100))
	case m > 40:
		return m*200 + 500
	default:
		return m * 200
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Train runs the full episode schedule for a doubled grid g with logical
// start/goal cells, using rng for all exploration decisions. It validates
// that start and goal lie within the maze's logical bounds before training.
func Train(g *grid.Grid, start, goal grid.Cell, rng *rand.Rand) (*Table, error) {
	return TrainWithProgress(g, start, goal, rng, nil)
}

// TrainWithProgress is Train plus an optional progress callback invoked after
// every episode with the episode index (0-based) and the table trained so
// far. devserver's background trainer uses this to publish periodic
// snapshots; progress may be nil, in which case this is exactly Train.
func TrainWithProgress(
	g *grid.Grid,
	start, goal grid.Cell,
	rng *rand.Rand,
	progress func(episode int, table *Table),
) (*Table, error) {
	rows, cols := g.Rows(), g.Cols()
	r, c := rows/2, cols/2

	if !inLogicalBounds(start, r, c) || !inLogicalBounds(goal, r, c) {
		return nil, patherr.ErrIncorrectPoint
	}

	doubledStart := start.Doubled()
	doubledGoal := goal.Doubled()

	table := newTable(rows, cols)
	m := maxInt(r, c)
	episodes := episodeBudget(m)

	// The first episode runs fully greedy (epsilon==0, its Go zero value);
	// epsilon is then set from the just-completed episode's index, so
	// episode 1 runs with epsilon=Epsilon0 (fully random). This quirk is
	// preserved intentionally; see SPEC_FULL.md §9.
	var epsilon float64
	for ep := 0; ep < episodes; ep++ {
		runEpisode(g, table, doubledStart, doubledGoal, epsilon, rng)
		epsilon = Epsilon0 * math.Exp(-Lambda*float64(ep))
		if progress != nil {
			progress(ep, table)
		}
	}

	return table, nil
}

func inLogicalBounds(c grid.Cell, rows, cols int) bool {
	return c.Col >= 0 && c.Col < cols && c.Row >= 0 && c.Row < rows
}

// runEpisode plays one episode to completion, updating table in place.
func runEpisode(g *grid.Grid, table *Table, start, goal grid.Cell, epsilon float64, rng *rand.Rand) {
	current := start
	for {
		action := selectAction(table, current, epsilon, rng)
		next := grid.Cell{
			Col: current.Col + displacements[action].Col,
			Row: current.Row + displacements[action].Row,
		}

		var reward float64
		done := false
		switch {
		case next == goal:
			reward = goalReward
			done = true
		case !g.IsPassageCell(next):
			reward = wallReward
			done = true
			next = current // bootstrap targets the cell's own row
		default:
			reward = stepReward
		}

		qa := table.At(current)
		maxNext := table.At(next).Max()
		qa[action] += Alpha * (reward + Gamma*maxNext - qa[action])

		current = next
		if done {
			return
		}
	}
}

func selectAction(table *Table, cell grid.Cell, epsilon float64, rng *rand.Rand) Action {
	if rng.Float64() < epsilon {
		return Action(rng.Intn(len(displacements)))
	}
	return table.At(cell).Argmax()
}

// ExtractPath performs the greedy rollout from logical start to logical
// goal, recording parents as it goes, and reconstructs the path the same
// way astar.Search does: goal-first, start-last. Aborts with
// patherr.ErrPathNotFound if the rollout exceeds MaxRolloutSteps without
// reaching the goal.
func ExtractPath(g *grid.Grid, table *Table, start, goal grid.Cell) ([]grid.Cell, error) {
	doubledStart := start.Doubled()
	doubledGoal := goal.Doubled()

	parent := map[grid.Cell]grid.Cell{}
	current := doubledStart
	for steps := 0; current != doubledGoal; steps++ {
		if steps >= MaxRolloutSteps {
			return nil, patherr.ErrPathNotFound
		}
		action := table.At(current).Argmax()
		next := grid.Cell{
			Col: current.Col + displacements[action].Col,
			Row: current.Row + displacements[action].Row,
		}
		if !g.IsPassageCell(next) {
			// Same rule as runEpisode: an untrained or wall-bound cell's
			// greedy action can point off the passage network entirely.
			// There's nowhere further to roll out from here.
			return nil, patherr.ErrPathNotFound
		}
		parent[next] = current
		current = next
	}

	return reconstruct(parent, doubledStart, doubledGoal), nil
}

func reconstruct(parent map[grid.Cell]grid.Cell, start, end grid.Cell) []grid.Cell {
	path := []grid.Cell{end}
	current := end
	for current != start {
		p, ok := parent[current]
		if !ok {
			return path
		}
		current = p
		path = append(path, current)
	}
	return path
}
