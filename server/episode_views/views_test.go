package episode_views

import (
	"bytes"
	"html/template"
	"image/png"
	"testing"

	"iconclick/raster"
	"iconclick/rollout"
	"iconclick/scenario"
	"iconclick/server/fastview"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConvert(t *testing.T) {
	Convey("Empty progress converts to zeroed stats and no frame", t, func() {
		s := Convert(rollout.Progress{})
		So(s.Episodes, ShouldEqual, "0")
		So(s.SuccessRate, ShouldEqual, "0.000")
		So(s.Task, ShouldBeEmpty)
		So(LastFrame(rollout.Progress{}), ShouldBeNil)
	})

	Convey("The last trajectory fills the task and outcome", t, func() {
		s := Convert(rollout.Progress{
			Episodes:    10,
			Successes:   4,
			SuccessRate: 0.4,
			MeanReturn:  -3.25,
			MeanSteps:   17.5,
			Last: &rollout.Trajectory{
				Task:  scenario.TaskDescription{Text: "right click the blue_star"},
				Steps: make([]rollout.Transition, 5),
				Final: raster.NewCanvas(1366, 768),
			},
		})
		So(s.Episodes, ShouldEqual, "10")
		So(s.SuccessRate, ShouldEqual, "0.400")
		So(s.MeanReturn, ShouldEqual, "-3.25")
		So(s.MeanSteps, ShouldEqual, "17.5")
		So(s.Task, ShouldEqual, "right click the blue_star")
		So(s.Outcome, ShouldStartWith, "failed click, 5 steps")
	})
}

func TestEncodeFrame(t *testing.T) {
	Convey("Wide frames are downscaled to the page width, keeping their aspect", t, func() {
		data, err := EncodeFrame(raster.NewCanvas(1366, 768))
		So(err, ShouldBeNil)
		img, err := png.Decode(bytes.NewReader(data))
		So(err, ShouldBeNil)
		So(img.Bounds().Dx(), ShouldEqual, FrameWidth)
		So(img.Bounds().Dy(), ShouldEqual, 384)
	})

	Convey("Narrow frames keep their size", t, func() {
		data, err := EncodeFrame(raster.NewCanvas(40, 30))
		So(err, ShouldBeNil)
		img, err := png.Decode(bytes.NewReader(data))
		So(err, ShouldBeNil)
		So(img.Bounds().Dx(), ShouldEqual, 40)
	})
}

func TestViews(t *testing.T) {
	Convey("Given views over a summary chan", t, func() {
		done := make(chan struct{})
		defer close(done)

		summary := Summary{Episodes: "2", SuccessRate: "0.500", Task: "find it", EpisodeID: "abc"}

		Convey("Stats updates set the text of each cell", func() {
			in := make(chan Summary, 1)
			sv := NewStatsView(done, in)
			in <- summary
			updates := <-sv.Updates()
			So(updates, ShouldContain, fastview.SetText("stats_episodes", "2"))
			So(updates, ShouldContain, fastview.SetText("stats_success", "0.500"))
		})

		Convey("Frame updates caption the episode and leave the pixels to frame messages", func() {
			in := make(chan Summary, 2)
			fv := NewFrameView(done, in)
			in <- Summary{}
			So(<-fv.Updates(), ShouldBeEmpty)

			in <- summary
			updates := <-fv.Updates()
			So(updates, ShouldContain, fastview.SetText("frame_caption", "episode abc"))
			for _, update := range updates {
				for _, op := range update.Ops {
					So(op.Key, ShouldNotEqual, "src")
				}
			}
		})

		Convey("Each view renders its initial form", func() {
			for _, vc := range []fastview.ViewComponent{
				NewStatsView(done, nil),
				NewTaskView(done, nil),
				NewFrameView(done, nil),
			} {
				parent := template.New("root")
				name, err := vc.Parse(parent)
				So(err, ShouldBeNil)
				_, err = parent.Parse(`{{ template "` + name + `" . }}`)
				So(err, ShouldBeNil)

				buf := &bytes.Buffer{}
				So(parent.Execute(buf, summary), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, `id="`+name)
			}
		})

		Convey("The frame view marks its image as the frame sink", func() {
			parent := template.New("root")
			name, err := NewFrameView(done, nil).Parse(parent)
			So(err, ShouldBeNil)
			_, err = parent.Parse(`{{ template "` + name + `" . }}`)
			So(err, ShouldBeNil)

			buf := &bytes.Buffer{}
			So(parent.Execute(buf, Summary{}), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, FrameSinkAttr)
			So(buf.String(), ShouldContainSubstring, "waiting for the first episode")
		})
	})
}
