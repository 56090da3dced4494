// scenario composes the synthetic scenes of the environment: a monochrome
// background, a random number of distractor icons and one target icon placed
// last, plus the instruction naming the target.
package scenario

import (
	"fmt"
	"image"

	"golang.org/x/exp/rand"
)

// Background icon counts are drawn from [MinBackgroundIcons, MaxBackgroundIcons).
const (
	MinBackgroundIcons = 1
	MaxBackgroundIcons = 15
)

// Scenario is one generated canvas and its target metadata.
type Scenario struct {
	Canvas      *image.RGBA
	Target      BoundingBox
	TargetLabel string
	Task        TaskDescription
}

// Generator builds scenarios of a fixed canvas size. It is not safe for concurrent use;
// parallel environments each own a Generator over their own random source.
type Generator struct {
	Width, Height int
	icons         IconSource
	backgrounds   *Backgrounds
	rng           *rand.Rand
}

func NewGenerator(
	width, height int,
	icons IconSource,
	rng *rand.Rand,
) *Generator {
	return &Generator{
		Width:       width,
		Height:      height,
		icons:       icons,
		backgrounds: NewBackgrounds(rng),
		rng:         rng,
	}
}

// Generate builds a scenario with a random number of background icons.
func (gen *Generator) Generate() (*Scenario, error) {
	n := MinBackgroundIcons + gen.rng.Intn(MaxBackgroundIcons-MinBackgroundIcons)
	return gen.GenerateN(n)
}

// GenerateN builds a scenario with exactly n background icons. Icons may overlap one another;
// the target is placed last and so is always fully visible.
func (gen *Generator) GenerateN(n int) (scn *Scenario, err error) {
	canvas := gen.backgrounds.Generate(gen.Width, gen.Height)

	for i := 0; i < n; i++ {
		icon := gen.icons.RandomIcon(gen.rng)
		if _, err = PlaceIcon(gen.rng, canvas, icon.Image); err != nil {
			return nil, fmt.Errorf("background icon %q: %w", icon.Label, err)
		}
	}

	target := gen.icons.RandomIcon(gen.rng)
	var box BoundingBox
	if box, err = PlaceIcon(gen.rng, canvas, target.Image); err != nil {
		return nil, fmt.Errorf("target icon %q: %w", target.Label, err)
	}

	scn = &Scenario{
		Canvas:      canvas,
		Target:      box,
		TargetLabel: target.Label,
		Task:        DescribeTask(gen.rng, target.Label),
	}
	return
}
