package episode_views

import (
	"html/template"
	"log"
	"strconv"
	"strings"

	"iconclick/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatsView shows the running rollout statistics.
type StatsView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatsView(
	done <-chan struct{},
	summaries <-chan Summary,
) (sv *StatsView) {
	sv = &StatsView{id: newID("stats")}
	sv.updates = channerics.Convert(done, summaries, sv.onUpdate)
	return
}

func (sv *StatsView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatsView) onUpdate(s Summary) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		fastview.SetText(sv.id+"_episodes", s.Episodes),
		fastview.SetText(sv.id+"_success", s.SuccessRate),
		fastview.SetText(sv.id+"_return", s.MeanReturn),
		fastview.SetText(sv.id+"_steps", s.MeanSteps),
	}
}

func (sv *StatsView) Parse(t *template.Template) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<table id="` + sv.id + `">
			<tr><td>episodes</td><td id="` + sv.id + `_episodes">{{ .Episodes }}</td></tr>
			<tr><td>success rate</td><td id="` + sv.id + `_success">{{ .SuccessRate }}</td></tr>
			<tr><td>mean return</td><td id="` + sv.id + `_return">{{ .MeanReturn }}</td></tr>
			<tr><td>mean steps</td><td id="` + sv.id + `_steps">{{ .MeanSteps }}</td></tr>
		</table>
		{{ end }}`)
	return
}

// TaskView shows the instruction and outcome of the last finished episode.
type TaskView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewTaskView(
	done <-chan struct{},
	summaries <-chan Summary,
) (tv *TaskView) {
	tv = &TaskView{id: newID("task")}
	tv.updates = channerics.Convert(done, summaries, tv.onUpdate)
	return
}

func (tv *TaskView) Updates() <-chan []fastview.EleUpdate {
	return tv.updates
}

func (tv *TaskView) onUpdate(s Summary) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		fastview.SetText(tv.id+"_text", s.Task),
		fastview.SetText(tv.id+"_outcome", s.Outcome),
		fastview.SetText(tv.id+"_episode", s.EpisodeID),
	}
}

func (tv *TaskView) Parse(t *template.Template) (name string, err error) {
	name = tv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + tv.id + `">
			<h3 id="` + tv.id + `_text">{{ .Task }}</h3>
			<p id="` + tv.id + `_outcome">{{ .Outcome }}</p>
			<small id="` + tv.id + `_episode">{{ .EpisodeID }}</small>
		</div>
		{{ end }}`)
	return
}

// FrameView shows the terminal observation of the last finished episode. Its pixels
// arrive as binary frame messages, which the page routes to the image marked as the
// frame sink; the view itself only keeps the caption in step.
type FrameView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewFrameView(
	done <-chan struct{},
	summaries <-chan Summary,
) (fv *FrameView) {
	fv = &FrameView{id: newID("frame")}
	fv.updates = channerics.Convert(done, summaries, fv.onUpdate)
	return
}

func (fv *FrameView) Updates() <-chan []fastview.EleUpdate {
	return fv.updates
}

func (fv *FrameView) onUpdate(s Summary) []fastview.EleUpdate {
	if s.EpisodeID == "" {
		return nil
	}
	return []fastview.EleUpdate{
		fastview.SetText(fv.id+"_caption", "episode "+s.EpisodeID),
		{EleId: fv.id, Ops: []fastview.Op{{Key: "alt", Value: "final frame of episode " + s.EpisodeID}}},
	}
}

func (fv *FrameView) Parse(t *template.Template) (name string, err error) {
	name = fv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<figure>
			<img id="` + fv.id + `" ` + FrameSinkAttr + ` width="` + frameWidthAttr + `" alt="no episode yet">
			<figcaption id="` + fv.id + `_caption">{{ if .EpisodeID }}episode {{ .EpisodeID }}{{ else }}waiting for the first episode{{ end }}</figcaption>
		</figure>
		{{ end }}`)
	return
}

// FrameSinkAttr marks the image element that binary frame messages are drawn into.
const FrameSinkAttr = "data-frame-sink"

var frameWidthAttr = strconv.Itoa(FrameWidth)

// newID escapes a view id; ids double as template names.
func newID(id string) string {
	if strings.Contains(id, "-") {
		log.Println("WARNING: hyphenated ids interfere with html/template's `template` directive")
	}
	return template.HTMLEscapeString(id)
}
