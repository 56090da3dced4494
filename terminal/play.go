package terminal

import (
	"context"
	"fmt"

	"iconclick/environment"

	"github.com/gdamore/tcell/v2"
)

// Command is what a key press asks of the play loop.
type Command int

const (
	CmdNone Command = iota
	CmdAct
	CmdReset
	CmdQuit
)

// KeyCommand maps a key press to a command, and to an action for CmdAct.
// Arrows or hjkl move, z and x click left and right, r resets, q or Esc quits.
func KeyCommand(key tcell.Key, r rune) (Command, environment.Action) {
	switch key {
	case tcell.KeyLeft:
		return CmdAct, environment.MoveLeft
	case tcell.KeyRight:
		return CmdAct, environment.MoveRight
	case tcell.KeyUp:
		return CmdAct, environment.MoveUp
	case tcell.KeyDown:
		return CmdAct, environment.MoveDown
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit, 0
	case tcell.KeyRune:
		switch r {
		case 'h':
			return CmdAct, environment.MoveLeft
		case 'l':
			return CmdAct, environment.MoveRight
		case 'k':
			return CmdAct, environment.MoveUp
		case 'j':
			return CmdAct, environment.MoveDown
		case 'z':
			return CmdAct, environment.LeftClick
		case 'x':
			return CmdAct, environment.RightClick
		case 'r':
			return CmdReset, 0
		case 'q':
			return CmdQuit, 0
		}
	}
	return CmdNone, 0
}

// Play runs episodes on ep driven by the keyboard until the user quits or ctx is done.
// The caller owns the screen and must have initialized it.
func Play(ctx context.Context, ep *environment.Episode, screen tcell.Screen) error {
	display := NewDisplay(screen)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	reset := func() error {
		_, task, err := ep.Reset()
		if err != nil {
			return err
		}
		display.SetStatus(fmt.Sprintf("%s  [arrows move, z/x click, r reset, q quit]", task.Text))
		return ep.Render(display)
	}
	if err := reset(); err != nil {
		return err
	}

	total := 0.0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				if ep.State() != environment.Uninitialized {
					if err := ep.Render(display); err != nil {
						return err
					}
				}
			case *tcell.EventKey:
				cmd, action := KeyCommand(ev.Key(), ev.Rune())
				switch cmd {
				case CmdQuit:
					return nil
				case CmdReset:
					total = 0
					if err := reset(); err != nil {
						return err
					}
				case CmdAct:
					if ep.State() != environment.Active {
						continue
					}
					_, reward, _, info, err := ep.Step(action)
					if err != nil {
						return err
					}
					total += reward
					display.SetStatus(status(ep, action, reward, total, info))
					if err := ep.Render(display); err != nil {
						return err
					}
				}
			}
		}
	}
}

func status(
	ep *environment.Episode,
	action environment.Action,
	reward, total float64,
	info *environment.Evaluation,
) string {
	if info != nil {
		verdict := "FAILED"
		if info.Success == 1 {
			verdict = "SUCCESS"
		}
		return fmt.Sprintf("%s after %d steps, return %.1f, final distance %.1f  [r reset, q quit]",
			verdict, ep.Steps(), total, info.FinalDistance)
	}
	return fmt.Sprintf("%s  step %d/%d  %v reward %.1f  return %.1f  distance %.1f",
		ep.Task().Text, ep.Steps(), ep.Config().MaxSteps, action, reward, total, ep.Distance())
}
