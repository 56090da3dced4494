// environment is the click-the-icon reinforcement learning environment.
//
// An Episode generates a scenario on Reset, places the cursor at random, and then
// advances one action per Step: moves shift the cursor, a click ends the episode, and
// so does exhausting the step budget. Each step is rewarded by how much closer the
// cursor got to the target's center; the terminal step also reports whether the
// required button was clicked strictly inside the target.
//
// An Episode is not safe for concurrent use. Independent Episodes over independent
// random sources may run concurrently.
package environment

import (
	"errors"
	"fmt"
	"image"

	"iconclick/cursor"
	"iconclick/scenario"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// State is the lifecycle state of an Episode.
type State int

const (
	Uninitialized State = iota
	Active
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrInvalidAction is returned for action codes outside [0,5].
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidState is returned by Step before Reset or after a terminal step.
	ErrInvalidState = errors.New("invalid episode state")
)

// Renderer is a display sink for observations. It never feeds back into the episode.
type Renderer interface {
	Render(frame image.Image) error
}

// Episode is the environment: one scenario, one cursor, one step budget.
type Episode struct {
	cfg       Config
	generator *scenario.Generator
	sprite    *cursor.Sprite
	rng       *rand.Rand

	id       uuid.UUID
	state    State
	scn      *scenario.Scenario
	cx, cy   float64 // target center
	ctl      *cursor.Controller
	steps    int
	distance float64 // distance at the previous step, the reward baseline
}

// New returns an uninitialized episode. All of its randomness is drawn from rng.
func New(cfg Config, icons scenario.IconSource, rng *rand.Rand) (*Episode, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Episode{
		cfg:       cfg,
		generator: scenario.NewGenerator(cfg.Canvas.Width, cfg.Canvas.Height, icons, rng),
		sprite:    cursor.ArrowSprite(cfg.Cursor.Width, cfg.Cursor.Height),
		rng:       rng,
		state:     Uninitialized,
	}, nil
}

// Reset discards any previous scenario and starts a new episode, returning the
// first observation and the task.
func (ep *Episode) Reset() (obs *image.RGBA, task scenario.TaskDescription, err error) {
	var scn *scenario.Scenario
	if ep.cfg.BackgroundIcons != nil {
		scn, err = ep.generator.GenerateN(*ep.cfg.BackgroundIcons)
	} else {
		scn, err = ep.generator.Generate()
	}
	if err != nil {
		return nil, task, fmt.Errorf("reset: %w", err)
	}

	var ctl *cursor.Controller
	if ctl, err = cursor.NewController(ep.sprite, ep.cfg.Canvas.Width, ep.cfg.Canvas.Height, ep.rng); err != nil {
		return nil, task, fmt.Errorf("reset: %w", err)
	}
	ctl.RandomPlacement()

	if obs, err = ctl.Observe(scn.Canvas); err != nil {
		return nil, task, fmt.Errorf("reset: %w", err)
	}

	var id uuid.UUID
	if id, err = uuid.NewRandomFromReader(ep.rng); err != nil {
		return nil, task, fmt.Errorf("reset: %w", err)
	}

	ep.id = id
	ep.scn = scn
	ep.cx, ep.cy = scn.Target.Center()
	ep.ctl = ctl
	ep.steps = 0
	ep.distance = ep.currentDistance()
	ep.state = Active

	return obs, scn.Task, nil
}

// Step applies one action and returns the next observation, the shaped reward, whether
// the episode is done, and the terminal evaluation (nil unless done).
func (ep *Episode) Step(action Action) (
	obs *image.RGBA,
	reward float64,
	done bool,
	info *Evaluation,
	err error,
) {
	if ep.state != Active {
		return nil, 0, false, nil, fmt.Errorf("step in %v episode: %w", ep.state, ErrInvalidState)
	}
	if !action.Valid() {
		return nil, 0, false, nil, fmt.Errorf("step %v: %w", action, ErrInvalidAction)
	}

	if action.IsClick() {
		ep.ctl.Click(action.button())
		done = true
	} else {
		ep.ctl.Move(action.direction())
	}

	ep.steps++
	if ep.steps >= ep.cfg.MaxSteps {
		done = true
	}

	current := ep.currentDistance()
	reward = ep.distance - current
	ep.distance = current

	if done {
		x, y := ep.ctl.Position()
		left, right := ep.ctl.Clicks()
		info = &Evaluation{
			Success:       evaluate(ep.scn.Target, ep.scn.Task.Click, x, y, left, right),
			FinalDistance: current,
		}
		ep.state = Terminated
	}

	if obs, err = ep.ctl.Observe(ep.scn.Canvas); err != nil {
		return nil, 0, false, nil, fmt.Errorf("step: %w", err)
	}
	return
}

// Render pushes the current observation to the passed sink.
func (ep *Episode) Render(r Renderer) error {
	if ep.state == Uninitialized {
		return fmt.Errorf("render: %w", ErrInvalidState)
	}
	obs, err := ep.ctl.Observe(ep.scn.Canvas)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return r.Render(obs)
}

func (ep *Episode) currentDistance() float64 {
	x, y := ep.ctl.Position()
	return distance(x, y, ep.cx, ep.cy)
}

// ID identifies the current episode; it changes on every Reset.
func (ep *Episode) ID() uuid.UUID {
	return ep.id
}

func (ep *Episode) State() State {
	return ep.state
}

func (ep *Episode) Config() Config {
	return ep.cfg
}

// Task returns the current task. Zero before the first Reset.
func (ep *Episode) Task() (task scenario.TaskDescription) {
	if ep.scn != nil {
		task = ep.scn.Task
	}
	return
}

// Target returns the current target box. Zero before the first Reset.
func (ep *Episode) Target() (box scenario.BoundingBox) {
	if ep.scn != nil {
		box = ep.scn.Target
	}
	return
}

// TargetCenter returns the current target center.
func (ep *Episode) TargetCenter() (x, y float64) {
	return ep.cx, ep.cy
}

// Position returns the cursor position. Zero before the first Reset.
func (ep *Episode) Position() (x, y int) {
	if ep.ctl != nil {
		x, y = ep.ctl.Position()
	}
	return
}

// Steps is the number of steps taken in the current episode.
func (ep *Episode) Steps() int {
	return ep.steps
}

// Distance is the current cursor-to-target distance.
func (ep *Episode) Distance() float64 {
	return ep.distance
}
