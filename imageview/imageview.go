// Package imageview rasterizes a maze and its solved path to a PNG image,
// using the same composite-image and directional-arrow technique as the
// maze image exporter this package is modeled on: a base raster plus
// image_utils-drawn arrows marking the start and end, composited and
// border-decorated before encoding.
package imageview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/yalue/image_utils"

	"labyrinth/grid"
)

var (
	wallColor    = color.RGBA{20, 20, 20, 255}
	passageColor = color.White
	pathColor    = color.RGBA{220, 60, 60, 255}
	startColor   = color.RGBA{40, 180, 70, 255}
	endColor     = color.RGBA{100, 120, 255, 255}
)

const arrowLength = 16

// direction mirrors astar's fixed LEFT/UP/RIGHT/DOWN neighbor order.
type direction int

const (
	left direction = iota
	up
	right
	down
)

func directionOf(from, to grid.Cell) direction {
	switch {
	case to.Col < from.Col:
		return left
	case to.Col > from.Col:
		return right
	case to.Row < from.Row:
		return up
	default:
		return down
	}
}

func arrowFor(dir direction, c color.Color) image.Image {
	switch dir {
	case left:
		return image_utils.LeftArrow(c)
	case up:
		return image_utils.UpArrow(c)
	case right:
		return image_utils.RightArrow(c)
	default:
		return image_utils.DownArrow(c)
	}
}

// Render rasterizes g at cellPixels pixels per doubled cell, draws path in
// pathColor, and overlays directional arrows at the start and end if path
// has at least two points. It writes the encoded PNG to w.
func Render(w io.Writer, g *grid.Grid, path []grid.Cell, cellPixels int) error {
	if g == nil || g.Empty() {
		return fmt.Errorf("imageview: empty maze")
	}

	base := rasterize(g, path, cellPixels)

	decorated := image_utils.NewCompositeImage()
	if err := decorated.AddImage(base, image.Pt(0, 0)); err != nil {
		return fmt.Errorf("imageview: compositing base maze image: %w", err)
	}

	if len(path) >= 2 {
		// path is goal-first, start-last: the last two entries point away
		// from start, the first two point into the goal.
		n := len(path)
		startDir := directionOf(path[n-1], path[n-2])
		endDir := directionOf(path[1], path[0])

		startArrow := image_utils.ResizeImage(arrowFor(startDir, startColor), arrowLength, arrowLength)
		endArrow := image_utils.ResizeImage(arrowFor(endDir, endColor), arrowLength, arrowLength)

		sx, sy := cellCenter(path[n-1], cellPixels)
		ex, ey := cellCenter(path[0], cellPixels)

		if err := decorated.AddImage(startArrow, image.Pt(sx-arrowLength/2, sy-arrowLength/2)); err != nil {
			return fmt.Errorf("imageview: adding start arrow: %w", err)
		}
		if err := decorated.AddImage(endArrow, image.Pt(ex-arrowLength/2, ey-arrowLength/2)); err != nil {
			return fmt.Errorf("imageview: adding end arrow: %w", err)
		}
	}

	bordered := image_utils.AddImageBorder(image_utils.ToRGBA(decorated), color.Black, 2)
	return png.Encode(w, bordered)
}

func cellCenter(c grid.Cell, cellPixels int) (x, y int) {
	return c.Col*cellPixels + cellPixels/2, c.Row*cellPixels + cellPixels/2
}

// rasterize paints one cellPixels x cellPixels square per doubled grid cell:
// walls in wallColor, passages in passageColor, path cells in pathColor.
func rasterize(g *grid.Grid, path []grid.Cell, cellPixels int) *image.RGBA {
	onPath := make(map[grid.Cell]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	rows, cols := g.Rows(), g.Cols()
	img := image.NewRGBA(image.Rect(0, 0, cols*cellPixels, rows*cellPixels))

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := grid.Cell{Col: c, Row: r}
			col := wallColor
			switch {
			case onPath[cell]:
				col = pathColor
			case g.IsPassageCell(cell):
				col = passageColor
			}
			fillCell(img, c, r, cellPixels, col)
		}
	}
	return img
}

func fillCell(img *image.RGBA, col, row, cellPixels int, c color.Color) {
	x0, y0 := col*cellPixels, row*cellPixels
	for y := y0; y < y0+cellPixels; y++ {
		for x := x0; x < x0+cellPixels; x++ {
			img.Set(x, y, c)
		}
	}
}
