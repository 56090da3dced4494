package root_view

import (
	"context"
	"html/template"
	"image"

	"iconclick/rollout"
	"iconclick/server/episode_views"
	"iconclick/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// RootView is the main page's index.html, which is the container for all the
// view components and the wiring for their channels.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
	frames  <-chan *image.RGBA
}

// NewRootView creates the main page and the views it contains. Progress is split
// two ways: summaries feed every view, and the terminal observations of finished
// episodes feed the frame stream.
func NewRootView(
	ctx context.Context,
	progress <-chan rollout.Progress,
) *RootView {
	done := ctx.Done()
	branches := channerics.Broadcast(done, progress, 2)

	summaries := channerics.Broadcast(
		done,
		channerics.Convert(done, branches[0], episode_views.Convert),
		3)
	views := []fastview.ViewComponent{
		episode_views.NewTaskView(done, summaries[0]),
		episode_views.NewStatsView(done, summaries[1]),
		episode_views.NewFrameView(done, summaries[2]),
	}

	return &RootView{
		views:   views,
		updates: fanIn(done, views),
		frames:  channerics.Convert(done, branches[1], episode_views.LastFrame),
	}
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Frames returns the terminal observation of each finished episode; nil before any.
func (rv *RootView) Frames() <-chan *image.RGBA {
	return rv.frames
}

// Parse builds the main page's template, with websocket bootstrap code, and returns its name.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	viewTemplates := []string{}
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(parent)
		if parseErr != nil {
			err = parseErr
			return
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += `<div class="view">{{ template "` + tname + `" . }}</div>`
	}

	// The main template bootstraps the rest: sets up client websocket and updates, aggregates views.
	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<title>iconclick</title>
			<style>
				body { font-family: monospace; }
				.view { display: inline-block; vertical-align: top; margin: 12px; }
			</style>
			<!--The server pushes new data to the view via websocket.-->
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.binaryType = "blob";
				let frameURL = null;
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};

				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};

				// Binary messages are png frames for the frame sink; text messages are
				// view updates, whose eles are found by id and updated.
				ws.onmessage = function (event) {
					if (event.data instanceof Blob) {
						const img = document.querySelector("[` + episode_views.FrameSinkAttr + `]");
						if (img === null) {
							return;
						}
						if (frameURL !== null) {
							URL.revokeObjectURL(frameURL);
						}
						frameURL = URL.createObjectURL(new Blob([event.data], { type: "image/png" }));
						img.src = frameURL;
						return;
					}

					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (ele === null) {
							continue
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = parent.Parse(indexTemplate)
	return
}

// fanIn aggregates the views' ele-update channels into a single channel.
// The websocket stream coalesces them per element before writing.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return channerics.Merge(done, inputs...)
}
