package environment

import (
	"math"

	"iconclick/scenario"
)

// Evaluation is the terminal verdict of an episode.
type Evaluation struct {
	// Success is 1 when the required button was clicked strictly inside the target, else 0.
	Success       int
	FinalDistance float64
}

// distance is the Euclidean distance from the cursor position to the target center.
func distance(x, y int, cx, cy float64) float64 {
	return math.Hypot(float64(x)-cx, float64(y)-cy)
}

// evaluate decides success from the click flags and the final cursor position.
// Only the flag of the required button matters: clicking the other one as well
// neither helps nor hurts.
func evaluate(
	target scenario.BoundingBox,
	required scenario.ClickType,
	x, y int,
	left, right bool,
) (success int) {
	pressed := (required == scenario.ClickLeft && left) ||
		(required == scenario.ClickRight && right)
	if pressed && target.StrictlyContains(x, y) {
		success = 1
	}
	return
}
