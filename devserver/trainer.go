package devserver

import (
	"context"
	"math/rand"

	"labyrinth/devserver/atomicfloat"
	"labyrinth/grid"
	"labyrinth/patherr"
	"labyrinth/qlearn"
)

// Snapshot is one published view of training progress: the episode just
// completed, the greedy value (max over actions) at every doubled cell, and
// the path extracted so far if training has finished.
type Snapshot struct {
	Episode int         `json:"episode"`
	MaxQ    [][]float64 `json:"maxQ"`
	Done    bool        `json:"done"`
	Path    []grid.Cell `json:"path,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Trainer runs qlearn training in a background goroutine, maintaining a
// concurrently-readable snapshot of the greedy value function so a
// websocket publisher can push live progress without taking a lock over the
// whole table. This is the one place in the module with real concurrency;
// qlearn.Train itself stays synchronous and single-threaded.
type Trainer struct {
	maze         *grid.Grid
	start, goal  grid.Cell
	rng          *rand.Rand
	publishEvery int

	maxQ [][]*atomicfloat.Float64 // rows x cols, doubled coordinates

	updates chan Snapshot
}

// NewTrainer prepares a Trainer for g, start, and goal. publishEvery caps how
// often (in episodes) a Snapshot is pushed onto Updates(); it is normally
// config.Config.PublishIntervalEpisodes. Values less than 1 (including an
// unset 0 from a misconfigured config.yaml) are treated as 1, publishing
// every episode, rather than dividing by zero in Run's progress callback.
func NewTrainer(g *grid.Grid, start, goal grid.Cell, rng *rand.Rand, publishEvery int) *Trainer {
	if publishEvery < 1 {
		publishEvery = 1
	}

	rows, cols := g.Rows(), g.Cols()
	maxQ := make([][]*atomicfloat.Float64, rows)
	for r := range maxQ {
		maxQ[r] = make([]*atomicfloat.Float64, cols)
		for c := range maxQ[r] {
			maxQ[r][c] = atomicfloat.New(0)
		}
	}

	return &Trainer{
		maze:         g,
		start:        start,
		goal:         goal,
		rng:          rng,
		publishEvery: publishEvery,
		maxQ:         maxQ,
		updates:      make(chan Snapshot, 1),
	}
}

// Updates returns the channel of published Snapshots. It is closed when Run
// returns.
func (t *Trainer) Updates() <-chan Snapshot {
	return t.updates
}

// Run trains to completion and extracts the greedy path, publishing a
// Snapshot onto Updates() every publishEvery episodes and a final Snapshot
// with Done=true. Cancelling ctx stops the publishing but not the training
// or the path extraction: Run returns only once both are done. Run owns the updates
// channel: it closes it before returning, so callers should finish draining
// Updates() only after Run returns.
func (t *Trainer) Run(ctx context.Context) (*qlearn.Table, error) {
	defer close(t.updates)

	table, err := qlearn.TrainWithProgress(t.maze, t.start, t.goal, t.rng, func(episode int, tbl *qlearn.Table) {
		if ctx.Err() != nil {
			return
		}
		if episode%t.publishEvery != 0 {
			return
		}
		t.publishValues(tbl)
		t.send(ctx, Snapshot{Episode: episode, MaxQ: t.snapshotValues()})
	})
	if err != nil {
		t.send(ctx, Snapshot{Done: true, Message: patherr.MsgIncorrectPoint})
		return nil, err
	}

	path, err := qlearn.ExtractPath(t.maze, table, t.start, t.goal)
	if err != nil {
		t.send(ctx, Snapshot{Done: true, Message: patherr.MsgPathNotFound})
		return table, err
	}

	t.publishValues(table)
	t.send(ctx, Snapshot{Done: true, MaxQ: t.snapshotValues(), Path: path})
	return table, nil
}

// publishValues writes tbl's per-cell greedy value into the atomic grid, safe
// for concurrent reads by snapshotValues.
func (t *Trainer) publishValues(tbl *qlearn.Table) {
	for r := range t.maxQ {
		for c := range t.maxQ[r] {
			cell := grid.Cell{Col: c, Row: r}
			if !t.maze.IsPassageCell(cell) {
				continue
			}
			t.maxQ[r][c].Store(tbl.At(cell).Max())
		}
	}
}

func (t *Trainer) snapshotValues() [][]float64 {
	out := make([][]float64, len(t.maxQ))
	for r := range t.maxQ {
		out[r] = make([]float64, len(t.maxQ[r]))
		for c := range t.maxQ[r] {
			out[r][c] = t.maxQ[r][c].Load()
		}
	}
	return out
}

func (t *Trainer) send(ctx context.Context, s Snapshot) {
	select {
	case t.updates <- s:
	case <-ctx.Done():
	default:
		// Drop rather than block training on a slow/absent subscriber: the
		// channel is buffered by one, so this only drops when a consumer is
		// falling behind.
	}
}
