// Package astar implements a deterministic A* search over a doubled-grid
// maze (see package grid). The open set is a binary min-heap keyed on
// f=g+h; a cell is marked discovered (and thus never re-enqueued) the
// instant it is first reached, so the search never re-opens a node even if
// a cheaper path to it is found later. This mirrors the reference
// implementation's behavior exactly: the g accumulator below is a
// straight-line-to-start approximation, not a true accumulated path cost,
// so the first path found is returned even when it is not provably optimal.
package astar

import (
	"container/heap"

	"labyrinth/grid"
	"labyrinth/patherr"
)

// neighborOffsets is the fixed LEFT, UP, RIGHT, DOWN scan order, applied as
// (dcol,drow). Keeping this order fixed is what makes tie-breaks in the open
// set reproducible across runs of the same maze.
var neighborOffsets = [4]grid.Cell{
	{Col: -1, Row: 0}, // LEFT
	{Col: 0, Row: -1}, // UP
	{Col: 1, Row: 0},  // RIGHT
	{Col: 0, Row: 1},  // DOWN
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// manhattan is both the search heuristic and the step-cost function: step
// cost between 4-adjacent cells and Manhattan distance coincide for a unit
// step, so the same helper serves both roles per the algorithm's definition.
func manhattan(a, b grid.Cell) int {
	return abs(a.Col-b.Col) + abs(a.Row-b.Row)
}

// node is one entry in the open-set heap.
type node struct {
	cell  grid.Cell
	f     int
	index int
}

// openHeap implements container/heap.Interface, ordered by ascending f.
type openHeap []*node

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Search finds a path from start to end, both given in doubled coordinates,
// over g's passage cells. On success it returns the path goal-first,
// start-last (path[0]==end, path[len-1]==start), every entry a passage cell,
// consecutive entries 4-adjacent. On exhaustion it returns
// patherr.ErrPathNotFound.
func Search(g *grid.Grid, start, end grid.Cell) ([]grid.Cell, error) {
	discovered := map[grid.Cell]bool{start: true}
	parent := map[grid.Cell]grid.Cell{}

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &node{cell: start, f: manhattan(start, end)})

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)

		if current.cell == end {
			return reconstruct(parent, start, end), nil
		}

		for _, off := range neighborOffsets {
			next := grid.Cell{Col: current.cell.Col + off.Col, Row: current.cell.Row + off.Row}
			if discovered[next] {
				continue
			}
			if !g.IsPassageCell(next) {
				continue
			}

			discovered[next] = true
			parent[next] = current.cell

			// g_new = g(current,next) + g(start,current): a straight-line
			// approximation, preserved intentionally (see package doc).
			gNew := manhattan(current.cell, next) + manhattan(start, current.cell)
			h := manhattan(next, end)
			heap.Push(open, &node{cell: next, f: gNew + h})
		}
	}

	return nil, patherr.ErrPathNotFound
}

// reconstruct walks the parent map from end back to start, building the
// path goal-first. If a predecessor is missing before start is reached, it
// stops silently and returns the truncated path rather than failing — this
// matches the documented reconstruction behavior exactly.
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
