package terminal

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"iconclick/environment"
	"iconclick/raster"
	"iconclick/scenario"

	"github.com/gdamore/tcell/v2"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/exp/rand"
)

func newScreen() tcell.SimulationScreen {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		panic(err)
	}
	screen.SetSize(80, 25)
	return screen
}

func TestKeyCommand(t *testing.T) {
	Convey("Keys map to commands and actions", t, func() {
		cases := []struct {
			key    tcell.Key
			r      rune
			cmd    Command
			action environment.Action
		}{
			{tcell.KeyLeft, 0, CmdAct, environment.MoveLeft},
			{tcell.KeyRight, 0, CmdAct, environment.MoveRight},
			{tcell.KeyUp, 0, CmdAct, environment.MoveUp},
			{tcell.KeyDown, 0, CmdAct, environment.MoveDown},
			{tcell.KeyRune, 'j', CmdAct, environment.MoveDown},
			{tcell.KeyRune, 'z', CmdAct, environment.LeftClick},
			{tcell.KeyRune, 'x', CmdAct, environment.RightClick},
			{tcell.KeyRune, 'r', CmdReset, 0},
			{tcell.KeyRune, 'q', CmdQuit, 0},
			{tcell.KeyEscape, 0, CmdQuit, 0},
			{tcell.KeyRune, '?', CmdNone, 0},
			{tcell.KeyTab, 0, CmdNone, 0},
		}
		for _, c := range cases {
			cmd, action := KeyCommand(c.key, c.r)
			So(cmd, ShouldEqual, c.cmd)
			if cmd == CmdAct {
				So(action, ShouldEqual, c.action)
			}
		}
	})
}

func TestCells(t *testing.T) {
	Convey("A frame split into a red top and blue bottom keeps its halves", t, func() {
		red := color.RGBA{0xff, 0, 0, 0xff}
		blue := color.RGBA{0, 0, 0xff, 0xff}
		frame := raster.NewCanvas(40, 40)
		raster.Fill(frame, red)
		bottom := frame.SubImage(image.Rect(0, 20, 40, 40)).(*image.RGBA)
		raster.Fill(bottom, blue)

		cells := Cells(frame, 10, 5)
		So(len(cells), ShouldEqual, 5)
		So(len(cells[0]), ShouldEqual, 10)
		So(cells[0][0].Top, ShouldResemble, red)
		So(cells[0][0].Bottom, ShouldResemble, red)
		So(cells[4][9].Top, ShouldResemble, blue)
		So(cells[4][9].Bottom, ShouldResemble, blue)

		So(Cells(frame, 0, 5), ShouldBeNil)
	})
}

func TestDisplay(t *testing.T) {
	Convey("Rendering an episode on a simulated screen succeeds", t, func() {
		screen := newScreen()
		defer screen.Fini()

		cfg := environment.Config{
			Canvas:   environment.CanvasConfig{Width: 160, Height: 100},
			IconSize: 16,
			MaxSteps: 10,
		}
		ep, err := environment.New(cfg, scenario.NewSyntheticCatalog(16), rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)
		_, _, err = ep.Reset()
		So(err, ShouldBeNil)

		display := NewDisplay(screen)
		display.SetStatus("status")
		So(ep.Render(display), ShouldBeNil)
	})
}

func TestPlay(t *testing.T) {
	Convey("Play returns when its context is cancelled", t, func() {
		screen := newScreen()
		defer screen.Fini()

		cfg := environment.Config{
			Canvas:   environment.CanvasConfig{Width: 160, Height: 100},
			IconSize: 16,
		}
		ep, err := environment.New(cfg, scenario.NewSyntheticCatalog(16), rand.New(rand.NewSource(2)))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		So(Play(ctx, ep, screen), ShouldBeNil)
		So(ep.State(), ShouldEqual, environment.Active)
	})
}
