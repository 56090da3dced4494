package scenario

import (
	"errors"
	"fmt"
	"image"

	"iconclick/raster"

	"golang.org/x/exp/rand"
)

// ErrPlacementImpossible is returned when an image cannot fit strictly inside its canvas.
var ErrPlacementImpossible = errors.New("no valid placement: image does not fit inside canvas")

// BoundingBox is the axis-aligned extent of a placed icon in canvas coordinates.
// Min is the top-left corner, Max the bottom-right (exclusive, as image.Rectangle).
type BoundingBox struct {
	Min, Max image.Point
}

// Corners returns top-left, top-right, bottom-right and bottom-left, in that order.
func (bb BoundingBox) Corners() [4]image.Point {
	return [4]image.Point{
		bb.Min,
		{X: bb.Max.X, Y: bb.Min.Y},
		bb.Max,
		{X: bb.Min.X, Y: bb.Max.Y},
	}
}

// Center is the mean of the four corners.
func (bb BoundingBox) Center() (x, y float64) {
	for _, p := range bb.Corners() {
		x += float64(p.X)
		y += float64(p.Y)
	}
	return x / 4, y / 4
}

// StrictlyContains reports whether (x, y) lies inside the box, edges excluded.
func (bb BoundingBox) StrictlyContains(x, y int) bool {
	return bb.Min.X < x && x < bb.Max.X && bb.Min.Y < y && y < bb.Max.Y
}

// Rect returns the box as an image.Rectangle.
func (bb BoundingBox) Rect() image.Rectangle {
	return image.Rectangle{Min: bb.Min, Max: bb.Max}
}

func (bb BoundingBox) String() string {
	return bb.Rect().String()
}

// RandomPosition draws a top-left corner such that an object of size obj fits inside
// a canvas of size canvas: x over [0, canvas.X-obj.X), y over [0, canvas.Y-obj.Y).
// The object must be strictly smaller than the canvas in both dimensions.
func RandomPosition(rng *rand.Rand, canvas, obj image.Point) (image.Point, error) {
	if obj.X >= canvas.X || obj.Y >= canvas.Y {
		return image.Point{}, fmt.Errorf("place %v in %v: %w", obj, canvas, ErrPlacementImpossible)
	}
	return image.Point{
		X: rng.Intn(canvas.X - obj.X),
		Y: rng.Intn(canvas.Y - obj.Y),
	}, nil
}

// PlaceIcon writes icon into canvas at a random position, occluding whatever was
// underneath, and returns the placed bounding box. On error the canvas is unchanged.
func PlaceIcon(rng *rand.Rand, canvas *image.RGBA, icon *image.RGBA) (BoundingBox, error) {
	size := icon.Bounds().Size()
	at, err := RandomPosition(rng, canvas.Bounds().Size(), size)
	if err != nil {
		return BoundingBox{}, err
	}
	at = at.Add(canvas.Bounds().Min)

	raster.Paste(canvas, icon, at)
	return BoundingBox{Min: at, Max: at.Add(size)}, nil
}
