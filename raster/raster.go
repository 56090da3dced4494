// raster holds the pixel-buffer primitives shared by scene composition and
// the cursor: canvases are *image.RGBA, kept opaque, and every compositing
// function here returns a new buffer rather than writing into its inputs
// (Paste and Fill being the two deliberate exceptions, used while building scenes).
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrShapeMismatch is returned when two buffers that must share a shape do not.
var ErrShapeMismatch = errors.New("buffers differ in shape")

// ErrOutOfBounds is returned when a sprite would be written outside of its canvas.
var ErrOutOfBounds = errors.New("region exceeds canvas bounds")

// NewCanvas returns an opaque black canvas of the given size.
func NewCanvas(width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	Fill(canvas, color.RGBA{A: 0xff})
	return canvas
}

// Fill overwrites every pixel of dst with c.
func Fill(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// Clone returns a deep copy of src, with the same bounds.
func Clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Paste overwrites the pixels of dst covered by src placed with its top-left corner at @at.
// Pixels of src falling outside dst are clipped by draw.Draw.
func Paste(dst *image.RGBA, src image.Image, at image.Point) {
	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

// Scale resamples src into a new w x h buffer using the passed interpolator,
// e.g. draw.CatmullRom for the cursor sprite (a cubic kernel) or draw.ApproxBiLinear
// for cheap preview frames.
func Scale(src image.Image, w, h int, interp draw.Interpolator) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Blend combines two equally-shaped buffers through a mask of the same shape:
// where the mask is set the pixel comes from over, elsewhere from under.
// Neither input is modified; the result has the bounds of under.
func Blend(under, over *image.RGBA, mask *Mask) (*image.RGBA, error) {
	size := under.Bounds().Size()
	if over.Bounds().Size() != size || mask.Rect.Size() != size {
		return nil, fmt.Errorf("blend %v with %v through mask %v: %w",
			under.Bounds(), over.Bounds(), mask.Rect, ErrShapeMismatch)
	}

	out := Clone(under)
	ub, ob := under.Bounds().Min, over.Bounds().Min
	for dy := 0; dy < size.Y; dy++ {
		for dx := 0; dx < size.X; dx++ {
			if !mask.at(dx, dy) {
				continue
			}
			c := over.RGBAAt(ob.X+dx, ob.Y+dy)
			c.A = 0xff
			out.SetRGBA(ub.X+dx, ub.Y+dy, c)
		}
	}
	return out, nil
}

// Composite returns a copy of canvas with sprite blended through mask at @at.
// The canvas is never written to.
func Composite(canvas, sprite *image.RGBA, mask *Mask, at image.Point) (*image.RGBA, error) {
	region := image.Rectangle{Min: at, Max: at.Add(sprite.Bounds().Size())}
	if !region.In(canvas.Bounds()) {
		return nil, fmt.Errorf("composite at %v: %w", region, ErrOutOfBounds)
	}

	out := Clone(canvas)
	blended, err := Blend(out.SubImage(region).(*image.RGBA), sprite, mask)
	if err != nil {
		return nil, err
	}
	draw.Draw(out, region, blended, blended.Bounds().Min, draw.Src)
	return out, nil
}

// CHW flattens img into planar channel-first order (R plane, G plane, B plane),
// the (3, H, W) layout consumed by most training code.
func CHW(img *image.RGBA) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]uint8, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			out[i] = c.R
			out[plane+i] = c.G
			out[2*plane+i] = c.B
		}
	}
	return out
}
