// Package consoleview renders a maze and its solved path to a terminal using
// VT100 line-drawing escapes, the same technique and intersection-lookup
// table as the maze generator this package is modeled on. Where that
// generator walked an in-place int32 array keyed by odd/even coordinate
// parity, this package walks a grid.Grid directly, since grid.Grid already
// uses the same doubled convention.
package consoleview

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh/terminal"

	"labyrinth/grid"
)

// Wall glyphs are VT100 DEC special graphics codes, drawn while the
// "\033(0" line-drawing mode is active.
const (
	blank        = ' '
	rightBottom  = 'j'
	rightTop     = 'k'
	leftTop      = 'l'
	leftBottom   = 'm'
	intersection = 'n'
	horizontal   = 'q'
	rightTee     = 't'
	leftTee      = 'u'
	upTee        = 'v'
	downTee      = 'w'
	vertical     = 'x'
	pathMark     = '*'
)

// outputLookup maps a 4-bit neighbor-is-wall bitmask (left,up,right,down) to
// the VT100 line-drawing character for that intersection shape.
var outputLookup = [16]byte{
	blank, horizontal, vertical, rightBottom,
	horizontal, horizontal, leftBottom, upTee,
	vertical, rightTop, vertical, leftTee,
	leftTop, downTee, rightTee, intersection,
}

// Size returns the current terminal's (rows, cols), falling back to 24x80 if
// the underlying ioctl fails (e.g. output is redirected to a file).
func Size() (rows, cols int) {
	cols, rows, err := terminal.GetSize(0)
	if err != nil {
		return 24, 80
	}
	return rows, cols
}

func bool2int(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Render writes g, with path cells highlighted, to w using VT100 line
// drawing. path is the doubled-coordinate cell list as returned by
// astar.Search or qlearn.ExtractPath (order does not matter for rendering).
func Render(w io.Writer, g *grid.Grid, path []grid.Cell) error {
	bw := bufio.NewWriter(w)

	onPath := make(map[grid.Cell]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	fmt.Fprint(bw, "\033(0")
	rows, cols := g.Rows(), g.Cols()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cell := grid.Cell{Col: j, Row: i}
			if g.IsPassageCell(cell) {
				if onPath[cell] {
					fmt.Fprint(bw, "\033(B")
					bw.WriteByte(pathMark)
					fmt.Fprint(bw, "\033(0")
				} else {
					bw.WriteByte(blank)
				}
				continue
			}
			bw.WriteByte(wallChar(g, i, j))
		}
		bw.WriteByte('\n')
	}
	fmt.Fprint(bw, "\033(B")

	return bw.Flush()
}

// wallChar computes the line-drawing glyph for the wall cell at (row,col) by
// inspecting which of its four doubled-grid neighbors are also walls, the
// same bitmask scheme the original generator uses: (left<<0)|(up<<1)|
// (right<<2)|(down<<3).
func wallChar(g *grid.Grid, row, col int) byte {
	mask := bool2int(isWall(g, row, col-1)) |
		bool2int(isWall(g, row-1, col))<<1 |
		bool2int(isWall(g, row, col+1))<<2 |
		bool2int(isWall(g, row+1, col))<<3
	return outputLookup[mask]
}

func isWall(g *grid.Grid, row, col int) bool {
	if row < 0 || col < 0 || row >= g.Rows() || col >= g.Cols() {
		return true
	}
	return !g.IsPassageCell(grid.Cell{Col: col, Row: row})
}
