package scenario

import (
	"image"
	"image/color"

	"iconclick/raster"

	"golang.org/x/exp/rand"
)

// PaletteSize is the number of background colors drawn once per generator.
const PaletteSize = 1000

// Backgrounds generates monochrome canvases from a fixed random palette.
type Backgrounds struct {
	palette []color.RGBA
	rng     *rand.Rand
}

// NewBackgrounds draws the palette from rng. The palette is never regenerated.
func NewBackgrounds(rng *rand.Rand) *Backgrounds {
	palette := make([]color.RGBA, PaletteSize)
	for i := range palette {
		palette[i] = color.RGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 0xff,
		}
	}
	return &Backgrounds{palette: palette, rng: rng}
}

// Generate returns a width x height canvas filled with one palette color.
func (bg *Backgrounds) Generate(width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	raster.Fill(canvas, bg.palette[bg.rng.Intn(len(bg.palette))])
	return canvas
}

// Palette returns a copy of the palette.
func (bg *Backgrounds) Palette() []color.RGBA {
	return append([]color.RGBA(nil), bg.palette...)
}
