package rollout

import (
	"errors"
	"fmt"
	"math"

	"iconclick/environment"
	"iconclick/scenario"

	"golang.org/x/exp/rand"
)

// Policy picks the next action for an active episode. Policies are shared by all
// workers, so they must not hold per-episode state; per-worker randomness is passed in.
type Policy interface {
	Act(ep *environment.Episode, rng *rand.Rand) environment.Action
}

// PolicyFunc adapts a plain function to a Policy.
type PolicyFunc func(*environment.Episode, *rand.Rand) environment.Action

func (fn PolicyFunc) Act(ep *environment.Episode, rng *rand.Rand) environment.Action {
	return fn(ep, rng)
}

// RandomPolicy draws uniformly from the whole action space, clicks included.
var RandomPolicy = PolicyFunc(func(_ *environment.Episode, rng *rand.Rand) environment.Action {
	return environment.Action(rng.Intn(environment.NumActions))
})

// Oracle is an epsilon-greedy agent that reads the target location from the episode:
// it walks the cursor toward the target center along the axis with the larger gap, and
// clicks the required button once the cursor is strictly inside the target.
// With probability Epsilon it makes a random move instead.
type Oracle struct {
	Epsilon float64
}

func (o *Oracle) Act(ep *environment.Episode, rng *rand.Rand) environment.Action {
	if rng.Float64() < o.Epsilon {
		return environment.Action(rng.Intn(4))
	}

	x, y := ep.Position()
	box := ep.Target()
	click := clickFor(ep.Task().Click)
	if box.StrictlyContains(x, y) {
		return click
	}

	cfg := ep.Config()
	maxX := cfg.Canvas.Width - cfg.Cursor.Width
	maxY := cfg.Canvas.Height - cfg.Cursor.Height
	cx, cy := ep.TargetCenter()
	dx, dy := cx-float64(x), cy-float64(y)

	var moves []environment.Action
	if x <= box.Min.X || x >= box.Max.X {
		if dx > 0 && x < maxX {
			moves = append(moves, environment.MoveRight)
		} else if dx < 0 && x > 0 {
			moves = append(moves, environment.MoveLeft)
		}
	}
	if y <= box.Min.Y || y >= box.Max.Y {
		if dy > 0 && y < maxY {
			moves = append(moves, environment.MoveDown)
		} else if dy < 0 && y > 0 {
			moves = append(moves, environment.MoveUp)
		}
	}

	switch len(moves) {
	case 0:
		// Blocked by the canvas edge: the target cannot be reached, so give up.
		return click
	case 2:
		if math.Abs(dy) > math.Abs(dx) {
			return moves[1]
		}
	}
	return moves[0]
}

func clickFor(ct scenario.ClickType) environment.Action {
	if ct == scenario.ClickRight {
		return environment.RightClick
	}
	return environment.LeftClick
}

// ErrUnknownPolicy is returned by PolicyByName.
var ErrUnknownPolicy = errors.New("unknown policy")

// PolicyByName returns "random" or "oracle"; epsilon only applies to the latter.
func PolicyByName(name string, epsilon float64) (Policy, error) {
	switch name {
	case "random":
		return RandomPolicy, nil
	case "oracle":
		return &Oracle{Epsilon: epsilon}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownPolicy)
}
