package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/image/draw"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(img, c)
	return img
}

func TestBlend(t *testing.T) {
	Convey("When blending two equally-shaped buffers", t, func() {
		red := color.RGBA{R: 0xff, A: 0xff}
		blue := color.RGBA{B: 0xff, A: 0xff}
		under := solid(4, 3, red)
		over := solid(4, 3, blue)
		mask := NewMask(image.Rect(0, 0, 4, 3))
		mask.Set(1, 1, true)
		mask.Set(3, 2, true)

		underPix := append([]uint8(nil), under.Pix...)
		overPix := append([]uint8(nil), over.Pix...)

		out, err := Blend(under, over, mask)
		So(err, ShouldBeNil)

		Convey("Masked pixels come from the sprite, the rest from the base", func() {
			So(out.RGBAAt(1, 1), ShouldResemble, blue)
			So(out.RGBAAt(3, 2), ShouldResemble, blue)
			So(out.RGBAAt(0, 0), ShouldResemble, red)
			So(out.RGBAAt(2, 1), ShouldResemble, red)
		})

		Convey("Neither input is modified", func() {
			So(bytes.Equal(under.Pix, underPix), ShouldBeTrue)
			So(bytes.Equal(over.Pix, overPix), ShouldBeTrue)
		})

		Convey("The output does not alias the base buffer", func() {
			out.SetRGBA(0, 0, blue)
			So(under.RGBAAt(0, 0), ShouldResemble, red)
		})
	})

	Convey("When shapes differ", t, func() {
		_, err := Blend(solid(4, 3, color.RGBA{}), solid(3, 3, color.RGBA{}), NewMask(image.Rect(0, 0, 4, 3)))
		So(errors.Is(err, ErrShapeMismatch), ShouldBeTrue)
	})
}

func TestComposite(t *testing.T) {
	Convey("When compositing a sprite onto a canvas", t, func() {
		canvas := NewCanvas(20, 10)
		before := append([]uint8(nil), canvas.Pix...)
		white := color.RGBA{0xff, 0xff, 0xff, 0xff}
		sprite := solid(2, 2, white)
		mask := NewMask(sprite.Bounds())
		mask.Set(0, 0, true)

		out, err := Composite(canvas, sprite, mask, image.Pt(5, 6))
		So(err, ShouldBeNil)

		Convey("The sprite lands at the requested offset through the mask", func() {
			So(out.RGBAAt(5, 6), ShouldResemble, white)
			So(out.RGBAAt(6, 6), ShouldResemble, color.RGBA{A: 0xff})
			So(out.RGBAAt(5, 7), ShouldResemble, color.RGBA{A: 0xff})
		})

		Convey("The canvas is untouched", func() {
			So(bytes.Equal(canvas.Pix, before), ShouldBeTrue)
		})
	})

	Convey("When the sprite would overflow the canvas", t, func() {
		sprite := solid(3, 3, color.RGBA{A: 0xff})
		_, err := Composite(NewCanvas(5, 5), sprite, NewMask(sprite.Bounds()), image.Pt(3, 0))
		So(errors.Is(err, ErrOutOfBounds), ShouldBeTrue)
	})
}

func TestMaskFromAlpha(t *testing.T) {
	Convey("Given an image with a partially transparent region", t, func() {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
		img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 1})
		img.SetNRGBA(2, 1, color.NRGBA{A: 0xff})

		m := MaskFromAlpha(img)
		So(m.Count(), ShouldEqual, 2)
		So(m.At(0, 0), ShouldBeTrue)
		So(m.At(2, 1), ShouldBeTrue)
		So(m.At(1, 0), ShouldBeFalse)
		So(m.At(9, 9), ShouldBeFalse)
	})
}

func TestPasteAndScale(t *testing.T) {
	Convey("Paste overwrites exactly the covered region", t, func() {
		canvas := NewCanvas(6, 6)
		green := color.RGBA{G: 0xff, A: 0xff}
		Paste(canvas, solid(2, 3, green), image.Pt(1, 2))
		So(canvas.RGBAAt(1, 2), ShouldResemble, green)
		So(canvas.RGBAAt(2, 4), ShouldResemble, green)
		So(canvas.RGBAAt(3, 2), ShouldResemble, color.RGBA{A: 0xff})
		So(canvas.RGBAAt(1, 5), ShouldResemble, color.RGBA{A: 0xff})
	})

	Convey("Scale produces a buffer of the requested size", t, func() {
		out := Scale(solid(24, 40, color.RGBA{R: 0xff, A: 0xff}), 12, 20, draw.CatmullRom)
		So(out.Bounds(), ShouldResemble, image.Rect(0, 0, 12, 20))
		So(out.RGBAAt(6, 10), ShouldResemble, color.RGBA{R: 0xff, A: 0xff})
	})
}

func TestCHW(t *testing.T) {
	Convey("CHW lays out channels as planes", t, func() {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.SetRGBA(0, 0, color.RGBA{1, 2, 3, 0xff})
		img.SetRGBA(1, 0, color.RGBA{4, 5, 6, 0xff})
		So(CHW(img), ShouldResemble, []uint8{1, 4, 2, 5, 3, 6})
	})
}
