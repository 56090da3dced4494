package raster

import (
	"image"
)

// Mask is a boolean opacity grid covering Rect, in row-major order.
type Mask struct {
	Rect image.Rectangle
	Bits []bool
}

// NewMask returns an all-false mask covering r.
func NewMask(r image.Rectangle) *Mask {
	return &Mask{
		Rect: r,
		Bits: make([]bool, r.Dx()*r.Dy()),
	}
}

// MaskFromAlpha derives an opacity mask from img's alpha channel: alpha > 0 is opaque.
func MaskFromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// At reports the mask bit at absolute coordinates (x, y); out of range is false.
func (m *Mask) At(x, y int) bool {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return false
	}
	return m.at(x-m.Rect.Min.X, y-m.Rect.Min.Y)
}

// Set sets the mask bit at absolute coordinates (x, y). Out of range is ignored.
func (m *Mask) Set(x, y int, v bool) {
	if !(image.Point{X: x, Y: y}.In(m.Rect)) {
		return
	}
	m.Bits[(y-m.Rect.Min.Y)*m.Rect.Dx()+(x-m.Rect.Min.X)] = v
}

// Count returns the number of set bits.
func (m *Mask) Count() (n int) {
	for _, bit := range m.Bits {
		if bit {
			n++
		}
	}
	return
}

// at indexes by offset from Rect.Min.
func (m *Mask) at(dx, dy int) bool {
	return m.Bits[dy*m.Rect.Dx()+dx]
}
