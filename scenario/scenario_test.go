package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"iconclick/raster"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/exp/rand"
)

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestPlaceIcon(t *testing.T) {
	Convey("When placing icons on canvases of many sizes", t, func() {
		rng := newRng(1)
		for i := 0; i < 500; i++ {
			cw, ch := 2+rng.Intn(200), 2+rng.Intn(200)
			iw, ih := 1+rng.Intn(cw-1), 1+rng.Intn(ch-1)
			canvas := raster.NewCanvas(cw, ch)
			icon := raster.NewCanvas(iw, ih)

			box, err := PlaceIcon(rng, canvas, icon)
			So(err, ShouldBeNil)
			So(box.Rect().In(canvas.Bounds()), ShouldBeTrue)
			So(box.Max.X-box.Min.X, ShouldEqual, iw)
			So(box.Max.Y-box.Min.Y, ShouldEqual, ih)
		}
	})

	Convey("When the icon is not smaller than the canvas", t, func() {
		canvas := raster.NewCanvas(10, 10)
		before := append([]uint8(nil), canvas.Pix...)

		for _, size := range []image.Point{{10, 5}, {5, 10}, {11, 11}} {
			_, err := PlaceIcon(newRng(2), canvas, raster.NewCanvas(size.X, size.Y))
			So(errors.Is(err, ErrPlacementImpossible), ShouldBeTrue)
		}
		So(bytes.Equal(canvas.Pix, before), ShouldBeTrue)
	})

	Convey("Placed pixels overwrite the canvas inside the box only", t, func() {
		canvas := raster.NewCanvas(50, 40)
		icon := image.NewRGBA(image.Rect(0, 0, 5, 4))
		raster.Fill(icon, color.RGBA{R: 0xff, A: 0xff})

		box, err := PlaceIcon(newRng(3), canvas, icon)
		So(err, ShouldBeNil)
		So(canvas.RGBAAt(box.Min.X, box.Min.Y).R, ShouldEqual, 0xff)
		So(canvas.RGBAAt(box.Max.X-1, box.Max.Y-1).R, ShouldEqual, 0xff)
		So(canvas.RGBAAt(box.Max.X, box.Max.Y).R, ShouldEqual, 0)
	})
}

func TestBoundingBox(t *testing.T) {
	Convey("Given a box at (10,20) of size 30x40", t, func() {
		box := BoundingBox{Min: image.Pt(10, 20), Max: image.Pt(40, 60)}

		Convey("Corners run top-left, top-right, bottom-right, bottom-left", func() {
			So(box.Corners(), ShouldResemble, [4]image.Point{{10, 20}, {40, 20}, {40, 60}, {10, 60}})
		})

		Convey("The center is the mean of the corners", func() {
			x, y := box.Center()
			So(x, ShouldEqual, 25.0)
			So(y, ShouldEqual, 40.0)
		})

		Convey("Containment is strict on every edge", func() {
			So(box.StrictlyContains(25, 40), ShouldBeTrue)
			So(box.StrictlyContains(11, 21), ShouldBeTrue)
			So(box.StrictlyContains(10, 40), ShouldBeFalse)
			So(box.StrictlyContains(40, 40), ShouldBeFalse)
			So(box.StrictlyContains(25, 20), ShouldBeFalse)
			So(box.StrictlyContains(25, 60), ShouldBeFalse)
		})
	})
}

func TestBackgrounds(t *testing.T) {
	Convey("Given a background generator", t, func() {
		bg := NewBackgrounds(newRng(4))
		palette := bg.Palette()
		So(len(palette), ShouldEqual, PaletteSize)

		Convey("Canvases are uniform and use a palette color", func() {
			canvas := bg.Generate(30, 20)
			c := canvas.RGBAAt(0, 0)
			for y := 0; y < 20; y++ {
				for x := 0; x < 30; x++ {
					So(canvas.RGBAAt(x, y), ShouldResemble, c)
				}
			}
			So(palette, ShouldContain, c)
		})

		Convey("The palette is not regenerated between calls", func() {
			bg.Generate(5, 5)
			bg.Generate(5, 5)
			So(bg.Palette(), ShouldResemble, palette)
		})
	})
}

func TestTaskDescriptions(t *testing.T) {
	Convey("The template table has enough entries with both click types", t, func() {
		So(NumTemplates, ShouldBeGreaterThanOrEqualTo, 20)
		clicks := map[ClickType]int{}
		for id := 0; id < NumTemplates; id++ {
			clicks[Describe(TemplateID(id), "x").Click]++
		}
		So(clicks[ClickLeft], ShouldBeGreaterThan, 0)
		So(clicks[ClickRight], ShouldBeGreaterThan, 0)
	})

	Convey("Labels are normalized into the instruction", t, func() {
		So(NormalizeLabel("Traffic_Light"), ShouldEqual, "traffic light")
		task := Describe(0, "Red_Circle")
		So(task.Text, ShouldEqual, "left click on the red circle")
		So(task.Click, ShouldEqual, ClickLeft)
	})

	Convey("Phrasing and click type stay coupled", t, func() {
		rng := newRng(5)
		for i := 0; i < 200; i++ {
			task := DescribeTask(rng, "blue_ring")
			So(task.Text, ShouldContainSubstring, "blue ring")
			if strings.Contains(task.Text, "right click") {
				So(task.Click, ShouldEqual, ClickRight)
			}
			if strings.Contains(task.Text, "left click") {
				So(task.Click, ShouldEqual, ClickLeft)
			}
			So(Describe(task.Template, "blue_ring"), ShouldResemble, task)
		}
	})

	Convey("Click types print as their button names", t, func() {
		So(ClickLeft.String(), ShouldEqual, "left")
		So(ClickRight.String(), ShouldEqual, "right")
		So(fmt.Sprint(ClickType(7)), ShouldEqual, "ClickType(7)")
	})
}

func TestSyntheticCatalog(t *testing.T) {
	Convey("The synthetic catalog covers every color and shape", t, func() {
		catalog := NewSyntheticCatalog(32)
		So(catalog.Len(), ShouldEqual, len(shapeNames)*len(colorNames))
		So(len(catalog.Labels()), ShouldEqual, catalog.Len())
		So(catalog.At(0).Image.Bounds().Size(), ShouldResemble, image.Pt(32, 32))

		icon := catalog.RandomIcon(newRng(6))
		So(icon.Label, ShouldNotBeBlank)
	})

	Convey("Empty catalogs are rejected", t, func() {
		_, err := NewCatalog(nil)
		So(err, ShouldEqual, ErrEmptyCatalog)
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a generator over the synthetic catalog", t, func() {
		catalog := NewSyntheticCatalog(32)
		gen := NewGenerator(320, 200, catalog, newRng(7))

		Convey("Scenarios carry a target inside the canvas and a matching task", func() {
			for i := 0; i < 50; i++ {
				scn, err := gen.Generate()
				So(err, ShouldBeNil)
				So(scn.Canvas.Bounds(), ShouldResemble, image.Rect(0, 0, 320, 200))
				So(scn.Target.Rect().In(scn.Canvas.Bounds()), ShouldBeTrue)
				So(scn.Task.Text, ShouldContainSubstring, NormalizeLabel(scn.TargetLabel))
			}
		})

		Convey("The target is fully visible since it is placed last", func() {
			scn, err := gen.GenerateN(14)
			So(err, ShouldBeNil)
			var target Icon
			for i := 0; i < catalog.Len(); i++ {
				if catalog.At(i).Label == scn.TargetLabel {
					target = catalog.At(i)
				}
			}
			region := scn.Canvas.SubImage(scn.Target.Rect()).(*image.RGBA)
			for y := 0; y < 32; y++ {
				for x := 0; x < 32; x++ {
					So(region.RGBAAt(scn.Target.Min.X+x, scn.Target.Min.Y+y), ShouldResemble, target.Image.RGBAAt(x, y))
				}
			}
		})

		Convey("Identical seeds generate identical scenarios", func() {
			a, errA := NewGenerator(320, 200, catalog, newRng(42)).Generate()
			b, errB := NewGenerator(320, 200, catalog, newRng(42)).Generate()
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(a.Target, ShouldResemble, b.Target)
			So(a.Task, ShouldResemble, b.Task)
			So(bytes.Equal(a.Canvas.Pix, b.Canvas.Pix), ShouldBeTrue)
		})

		Convey("Icons larger than the canvas surface the placement error", func() {
			small := NewGenerator(20, 20, catalog, newRng(8))
			_, err := small.GenerateN(0)
			So(errors.Is(err, ErrPlacementImpossible), ShouldBeTrue)
		})
	})
}
