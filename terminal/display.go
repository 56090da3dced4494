// terminal renders observations in a terminal and lets a person play episodes
// from the keyboard.
package terminal

import (
	"image"
	"image/color"

	"iconclick/raster"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"
)

// upperHalf draws the top pixel of a cell in the foreground and the bottom one in the background.
const upperHalf = '▀'

// Cell is one terminal cell of a rendered frame: two vertically stacked pixels.
type Cell struct {
	Top, Bottom color.RGBA
}

// Display renders frames on a tcell screen, keeping the last row for a status line.
type Display struct {
	screen tcell.Screen
	status string
}

func NewDisplay(screen tcell.Screen) *Display {
	return &Display{screen: screen}
}

// Render downsamples frame to the screen, two pixels per cell, and redraws the status line.
func (d *Display) Render(frame image.Image) error {
	cols, rows := d.screen.Size()
	d.screen.Clear()
	for y, row := range Cells(frame, cols, rows-1) {
		for x, cell := range row {
			style := tcell.StyleDefault.
				Foreground(rgb(cell.Top)).
				Background(rgb(cell.Bottom))
			d.screen.SetContent(x, y, upperHalf, nil, style)
		}
	}
	d.drawStatus(cols, rows)
	d.screen.Show()
	return nil
}

// SetStatus replaces the status line; it is drawn on the next Render.
func (d *Display) SetStatus(status string) {
	d.status = status
}

func (d *Display) drawStatus(cols, rows int) {
	if rows <= 0 {
		return
	}
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range d.status {
		if x >= cols {
			break
		}
		d.screen.SetContent(x, rows-1, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		d.screen.SetContent(x, rows-1, ' ', nil, style)
	}
}

// Cells scales frame to cols x 2*rows pixels and pairs them into cells, indexed [row][col].
func Cells(frame image.Image, cols, rows int) [][]Cell {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	img := raster.Scale(frame, cols, 2*rows, draw.ApproxBiLinear)
	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
		for x := range cells[y] {
			cells[y][x] = Cell{
				Top:    img.RGBAAt(x, 2*y),
				Bottom: img.RGBAAt(x, 2*y+1),
			}
		}
	}
	return cells
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
