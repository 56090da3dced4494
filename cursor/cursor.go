// cursor simulates the mouse: a sprite at an integer position on the canvas
// with two sticky click flags.
package cursor

import (
	"fmt"
	"image"

	"iconclick/raster"
	"iconclick/scenario"

	"golang.org/x/exp/rand"
)

// StepSize is the distance in pixels covered by one move.
const StepSize = 10

// Direction of a cursor move.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Button is a mouse button.
type Button int

const (
	LeftButton Button = iota
	RightButton
)

// Controller holds the cursor position and click state for one episode.
type Controller struct {
	sprite      *Sprite
	canvas      image.Point
	x, y        int
	left, right bool
	maxX, maxY  int
	rng         *rand.Rand
}

// NewController returns a controller for a canvas of the passed size, positioned at the origin.
// The sprite must be strictly smaller than the canvas.
func NewController(sprite *Sprite, canvasWidth, canvasHeight int, rng *rand.Rand) (*Controller, error) {
	canvas := image.Pt(canvasWidth, canvasHeight)
	size := sprite.Size()
	if size.X >= canvas.X || size.Y >= canvas.Y {
		return nil, fmt.Errorf("cursor %v on canvas %v: %w", size, canvas, scenario.ErrPlacementImpossible)
	}
	return &Controller{
		sprite: sprite,
		canvas: canvas,
		maxX:   canvas.X - size.X,
		maxY:   canvas.Y - size.Y,
		rng:    rng,
	}, nil
}

// RandomPlacement moves the cursor to a uniformly drawn position where the sprite fits.
func (c *Controller) RandomPlacement() {
	// The size was validated in NewController.
	at, _ := scenario.RandomPosition(c.rng, c.canvas, c.sprite.Size())
	c.x, c.y = at.X, at.Y
}

// MoveTo places the cursor at (x, y), clamped to the valid range.
func (c *Controller) MoveTo(x, y int) {
	c.x = clamp(x, 0, c.maxX)
	c.y = clamp(y, 0, c.maxY)
}

// Move shifts the cursor by one step. Moves past the boundary stop at the boundary.
func (c *Controller) Move(dir Direction) {
	switch dir {
	case Left:
		c.x = clamp(c.x-StepSize, 0, c.maxX)
	case Right:
		c.x = clamp(c.x+StepSize, 0, c.maxX)
	case Up:
		c.y = clamp(c.y-StepSize, 0, c.maxY)
	case Down:
		c.y = clamp(c.y+StepSize, 0, c.maxY)
	}
}

// Click sets the flag of the passed button. Flags are never cleared.
func (c *Controller) Click(b Button) {
	switch b {
	case LeftButton:
		c.left = true
	case RightButton:
		c.right = true
	}
}

// Observe returns a copy of canvas with the cursor drawn at its position.
func (c *Controller) Observe(canvas *image.RGBA) (*image.RGBA, error) {
	at := canvas.Bounds().Min.Add(image.Pt(c.x, c.y))
	return raster.Composite(canvas, c.sprite.Image, c.sprite.Mask, at)
}

func (c *Controller) Position() (x, y int) {
	return c.x, c.y
}

func (c *Controller) Clicks() (left, right bool) {
	return c.left, c.right
}

// Bounds returns the inclusive maximum position on each axis.
func (c *Controller) Bounds() (maxX, maxY int) {
	return c.maxX, c.maxY
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
