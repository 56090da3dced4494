// episode_views contains views which can be derived from the Summary view-model.
// Summary is merely a flattened rollout.Progress whose fields are immediately usable
// as view parameters. Frames do not go through the Summary: they are pushed as binary
// messages encoded by EncodeFrame.
package episode_views

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"iconclick/raster"
	"iconclick/rollout"

	"golang.org/x/image/draw"
)

// FrameWidth is the width frames are downscaled to before being pushed to the page.
const FrameWidth = 683

// Summary is the view-model of the rollout page.
type Summary struct {
	Episodes    string
	SuccessRate string
	MeanReturn  string
	MeanSteps   string
	EpisodeID   string
	Task        string
	Outcome     string
}

// Convert flattens rollout progress to a Summary.
func Convert(p rollout.Progress) (s Summary) {
	s = Summary{
		Episodes:    fmt.Sprintf("%d", p.Episodes),
		SuccessRate: fmt.Sprintf("%.3f", p.SuccessRate),
		MeanReturn:  fmt.Sprintf("%.2f", p.MeanReturn),
		MeanSteps:   fmt.Sprintf("%.1f", p.MeanSteps),
	}
	if p.Last == nil {
		return
	}

	last := p.Last
	s.EpisodeID = last.EpisodeID.String()
	s.Task = last.Task.Text
	s.Outcome = fmt.Sprintf("%s click, %d steps, final distance %.1f",
		outcome(last.Eval.Success), len(last.Steps), last.Eval.FinalDistance)
	return
}

func outcome(success int) string {
	if success == 1 {
		return "successful"
	}
	return "failed"
}

// LastFrame returns the terminal observation of the last episode, or nil.
func LastFrame(p rollout.Progress) *image.RGBA {
	if p.Last == nil {
		return nil
	}
	return p.Last.Final
}

// EncodeFrame downscales frame to FrameWidth (keeping its aspect) and encodes it as a PNG.
func EncodeFrame(frame *image.RGBA) ([]byte, error) {
	var img image.Image = frame
	size := frame.Bounds().Size()
	if size.X > FrameWidth {
		img = raster.Scale(frame, FrameWidth, size.Y*FrameWidth/size.X, draw.ApproxBiLinear)
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
