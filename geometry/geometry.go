// Package geometry projects logical and doubled maze cells onto a pixel
// viewport, producing the marker rectangles and polyline segments that make
// up an engine.PathRenderConfig. The consoleview and imageview packages do
// not use it: they draw one character or one pixel square per doubled cell.
package geometry

import "labyrinth/grid"

// Rect is a filled square, in viewport pixels, used for start/end markers.
type Rect struct {
	X, Y, W, H float64
}

// Segment is a line between two cell centers, in viewport pixels.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Projector maps logical and doubled maze cells to viewport pixel geometry
// for one fixed viewport size and maze dimension.
type Projector struct {
	width, height float64
	rows, cols    float64 // logical R, C (doubled dims halved)

	baseCellSize float64
	squareSize   float64
	scaleX       float64
	scaleY       float64
}

// NewProjector derives the projection constants for a viewport of size
// (width,height) and a maze whose doubled dimensions are (doubledRows,
// doubledCols). For a zero-dimension maze the divisions here yield infinite
// or NaN constants, so Marker and Segment then return NaN coordinates
// without panicking; engine.Render guards on grid.Empty before calling this.
func NewProjector(width, height float64, doubledRows, doubledCols int) *Projector {
	r := float64(doubledRows) / 2
	c := float64(doubledCols) / 2

	p := &Projector{
		width:  width,
		height: height,
		rows:   r,
		cols:   c,
	}
	p.baseCellSize = min(width/c, height/r)
	p.squareSize = p.baseCellSize / 4
	p.scaleX = width / (p.baseCellSize * c)
	p.scaleY = height / (p.baseCellSize * r)
	return p
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// center returns the pixel center of logical cell (c,r).
func (p *Projector) center(c, r int) (x, y float64) {
	x = (float64(c) + 0.5) * p.baseCellSize * p.scaleX
	y = (float64(r) + 0.5) * p.baseCellSize * p.scaleY
	return
}

// Marker returns the filled square centered on a logical cell, side
// squareSize. Sentinel (-1,-1) cells are skipped: ok is false.
func (p *Projector) Marker(cell grid.Cell) (rect Rect, ok bool) {
	if cell.IsUnset() {
		return Rect{}, false
	}
	cx, cy := p.center(cell.Col, cell.Row)
	return Rect{
		X: cx - p.squareSize/2,
		Y: cy - p.squareSize/2,
		W: p.squareSize,
		H: p.squareSize,
	}, true
}

// Segment returns the line between the centers of two doubled cells. A
// doubled cell (c,r) projects as if its logical coordinate were (c/2,r/2)
// (integer division): intermediate wall cells collapse onto an adjacent
// logical center, which is intentional — successive doubled-grid path steps
// alternate between a logical cell and its adjacent wall cell, so this
// produces a continuous polyline along logical cell centers.
func (p *Projector) Segment(a, b grid.Cell) Segment {
	ax, ay := p.center(a.Col/2, a.Row/2)
	bx, by := p.center(b.Col/2, b.Row/2)
	return Segment{X1: ax, Y1: ay, X2: bx, Y2: by}
}

// CellFromPoint inverts a viewport pixel point back to a logical cell, given
// the conversion ratios wRatio/hRatio supplied by the collaborator (usually
// baseCellSize*scaleX / baseCellSize*scaleY for the same maze and viewport).
// This is used by engine.SetStart/SetEnd to translate clicks to cells.
func CellFromPoint(x, y, wRatio, hRatio float64) grid.Cell {
	return grid.Cell{
		Col: int(x / wRatio),
		Row: int(y / hRatio),
	}
}
