package environment

import (
	"fmt"

	"iconclick/cursor"
)

// Action is one of the six discrete actions of the environment.
type Action int

const (
	MoveLeft Action = iota
	MoveRight
	MoveUp
	MoveDown
	LeftClick
	RightClick
)

// NumActions is the size of the action space.
const NumActions = 6

var actionNames = [NumActions]string{
	"move_left",
	"move_right",
	"move_up",
	"move_down",
	"left_click",
	"right_click",
}

// Valid reports whether a is inside the action space [0,5].
func (a Action) Valid() bool {
	return a >= 0 && a < NumActions
}

// IsClick reports whether a is a (terminating) click action.
func (a Action) IsClick() bool {
	return a == LeftClick || a == RightClick
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction returns the action with the passed name, e.g. "move_left".
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("action %q: %w", name, ErrInvalidAction)
}

func (a Action) direction() cursor.Direction {
	return [...]cursor.Direction{
		MoveLeft:  cursor.Left,
		MoveRight: cursor.Right,
		MoveUp:    cursor.Up,
		MoveDown:  cursor.Down,
	}[a]
}

func (a Action) button() cursor.Button {
	if a == RightClick {
		return cursor.RightButton
	}
	return cursor.LeftButton
}
