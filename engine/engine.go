// Package engine is the pathfinding facade: it owns the current maze,
// start/end endpoints, and solved path, dispatches A* on endpoint changes,
// runs Q-Learning on demand, and answers render queries with viewport
// geometry. It is strictly single-threaded and synchronous — no operation
// suspends, and no state is shared across Engine instances. See
// devserver.Trainer for the one place this module introduces real
// concurrency, kept deliberately outside this package.
package engine

import (
	"math/rand"
	"time"

	"labyrinth/astar"
	"labyrinth/geometry"
	"labyrinth/grid"
	"labyrinth/patherr"
	"labyrinth/qlearn"
)

// State is the facade's coarse state machine.
type State int

const (
	Idle State = iota
	OneEndpoint
	BothEndpointsPathed
	BothEndpointsFailed
)

// Point is a viewport-pixel coordinate, as supplied by a click in the
// collaborating visualization layer.
type Point struct {
	X, Y float64
}

// PathRenderConfig is the render-ready geometric description handed back to
// the visualization layer: start/end markers plus a path polyline, all in
// viewport pixels.
type PathRenderConfig struct {
	Points []geometry.Rect
	Path   []geometry.Segment
}

// OpResult is the uniform result of an operation that can fail with a fixed,
// user-visible message.
type OpResult struct {
	OK      bool
	Message string
}

// Engine holds the maze, endpoints, and solved path exclusively: it shares
// no mutable state with any other Engine instance.
type Engine struct {
	maze  *grid.Grid
	start grid.Cell // logical; grid.Unset when unset
	end   grid.Cell // logical; grid.Unset when unset
	path  []grid.Cell // doubled, goal-first
	state State
	rng   *rand.Rand
}

// New returns an Engine seeded from a non-deterministic source, matching the
// reference implementation's default behavior.
func New() *Engine {
	return NewWithRNG(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRNG returns an Engine whose Q-Learning trainer draws from rng. Tests
// requiring byte-identical Q-tables/paths should construct the Engine this
// way with a fixed-seed rng.
func NewWithRNG(rng *rand.Rand) *Engine {
	return &Engine{
		start: grid.Unset,
		end:   grid.Unset,
		state: Idle,
		rng:   rng,
	}
}

// SetMaze transfers ownership of g to the engine and resets start, end, and
// path to unset/empty.
func (e *Engine) SetMaze(g *grid.Grid) {
	e.maze = g
	e.start = grid.Unset
	e.end = grid.Unset
	e.path = nil
	e.state = Idle
}

// SetStart converts point to a logical cell using the supplied viewport
// ratios, and triggers A* if an end is already set. A point that projects
// outside the maze's logical bounds is rejected with patherr.ErrIncorrectPoint
// and leaves the previous start untouched. On PathNotFound the previous start
// is restored and the error is returned.
func (e *Engine) SetStart(point Point, wRatio, hRatio float64) error {
	return e.setEndpoint(&e.start, point, wRatio, hRatio)
}

// SetEnd is the symmetric counterpart to SetStart for the end endpoint.
func (e *Engine) SetEnd(point Point, wRatio, hRatio float64) error {
	return e.setEndpoint(&e.end, point, wRatio, hRatio)
}

func (e *Engine) setEndpoint(slot *grid.Cell, point Point, wRatio, hRatio float64) error {
	if e.maze == nil || e.maze.Empty() {
		return nil
	}

	candidate := geometry.CellFromPoint(point.X, point.Y, wRatio, hRatio)
	r, c := e.maze.Rows()/2, e.maze.Cols()/2
	if candidate.IsUnset() || outOfLogicalBounds(candidate, r, c) {
		return patherr.ErrIncorrectPoint
	}

	previous := *slot
	*slot = candidate

	if !e.start.IsUnset() && !e.end.IsUnset() {
		if err := e.search(); err != nil {
			*slot = previous
			e.state = BothEndpointsFailed
			return err
		}
		e.state = BothEndpointsPathed
		return nil
	}

	e.state = OneEndpoint
	return nil
}

func (e *Engine) search() error {
	path, err := astar.Search(e.maze, e.start.Doubled(), e.end.Doubled())
	if err != nil {
		// Keep the previous path: the caller restores the previous endpoint,
		// so start, end, and path stay the pair that was last solved.
		return err
	}
	e.path = path
	return nil
}

// QFind runs Q-Learning training for logical start/goal and, on success,
// extracts a greedy-rollout path and adopts it as the engine's current
// path/endpoints. Unlike SetStart/SetEnd, start and goal are given directly
// in logical coordinates rather than derived from a viewport click.
func (e *Engine) QFind(start, goal grid.Cell) OpResult {
	table, err := qlearn.Train(e.maze, start, goal, e.rng)
	if err != nil {
		return OpResult{OK: false, Message: patherr.MsgIncorrectPoint}
	}

	path, err := qlearn.ExtractPath(e.maze, table, start, goal)
	if err != nil {
		return OpResult{OK: false, Message: patherr.MsgPathNotFound}
	}

	e.start = start
	e.end = goal
	e.path = path
	e.state = BothEndpointsPathed
	return OpResult{OK: true}
}

// State returns the facade's current coarse state.
func (e *Engine) State() State {
	return e.state
}

// Start returns the current logical start cell (grid.Unset if unset).
func (e *Engine) Start() grid.Cell { return e.start }

// End returns the current logical end cell (grid.Unset if unset).
func (e *Engine) End() grid.Cell { return e.end }

// Path returns the current doubled-space path, goal-first.
func (e *Engine) Path() []grid.Cell { return e.path }

// Render projects the current start, end, and path onto a viewport of size
// (width,height). If either endpoint's logical coordinate is out of the
// maze's logical bounds, or the maze is empty, it returns an empty config.
func (e *Engine) Render(width, height float64) PathRenderConfig {
	if e.maze == nil || e.maze.Empty() {
		return PathRenderConfig{}
	}

	r, c := e.maze.Rows()/2, e.maze.Cols()/2
	if outOfLogicalBounds(e.start, r, c) || outOfLogicalBounds(e.end, r, c) {
		return PathRenderConfig{}
	}

	proj := geometry.NewProjector(width, height, e.maze.Rows(), e.maze.Cols())

	cfg := PathRenderConfig{}
	if m, ok := proj.Marker(e.start); ok {
		cfg.Points = append(cfg.Points, m)
	}
	if m, ok := proj.Marker(e.end); ok {
		cfg.Points = append(cfg.Points, m)
	}
	for i := 0; i+1 < len(e.path); i++ {
		cfg.Path = append(cfg.Path, proj.Segment(e.path[i], e.path[i+1]))
	}
	return cfg
}

func outOfLogicalBounds(c grid.Cell, rows, cols int) bool {
	if c.IsUnset() {
		return false
	}
	return c.Col < 0 || c.Col >= cols || c.Row < 0 || c.Row >= rows
}
