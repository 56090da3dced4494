package cursor

import (
	"image"
	"image/color"

	"iconclick/raster"

	"golang.org/x/image/draw"
)

// Default cursor size, matching the pointer sprite the environment was designed around.
const (
	DefaultWidth  = 12
	DefaultHeight = 20
)

// Sprite is the cursor image and its opacity mask, derived once from the alpha channel.
type Sprite struct {
	Image *image.RGBA
	Mask  *raster.Mask
}

// Size returns the sprite's width and height.
func (s *Sprite) Size() image.Point {
	return s.Image.Bounds().Size()
}

// NewSprite resamples src to w x h with a cubic kernel and derives its mask (alpha > 0).
func NewSprite(src image.Image, w, h int) *Sprite {
	img := raster.Scale(src, w, h, draw.CatmullRom)
	return &Sprite{
		Image: img,
		Mask:  raster.MaskFromAlpha(img),
	}
}

// ArrowSprite draws a black-outlined white arrow pointer at twice the passed size
// and scales it down to w x h.
func ArrowSprite(w, h int) *Sprite {
	return NewSprite(arrow(2*w, 2*h), w, h)
}

func DefaultSprite() *Sprite {
	return ArrowSprite(DefaultWidth, DefaultHeight)
}

// arrow rasterizes the classic pointer: a left-edge-aligned triangle with a tail,
// on a transparent background.
func arrow(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	outline := color.NRGBA{A: 0xff}
	fill := color.NRGBA{0xff, 0xff, 0xff, 0xff}

	fw, fh := float64(w), float64(h)
	head := fh * 0.75
	inHead := func(x, y float64) bool {
		// triangle (0,0), (0,head), (w,head)
		return y >= 0 && y <= head && x >= 0 && x <= y*fw/head
	}
	inTail := func(x, y float64) bool {
		return y >= head*0.6 && y <= fh && x >= fw*0.25 && x <= fw*0.55
	}
	inside := func(x, y float64) bool {
		return inHead(x, y) || inTail(x, y)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if !inside(px, py) {
				continue
			}
			// A pixel is outline when any 2px neighbour falls outside the shape.
			edge := !inside(px-2, py) || !inside(px+2, py) || !inside(px, py-2) || !inside(px, py+2)
			if edge {
				img.SetNRGBA(x, y, outline)
			} else {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img
}
