package scenario

import (
	"errors"
	"image"
	"image/color"
	"math"

	"golang.org/x/exp/rand"
)

// Icon is a small labeled image. Icons are shared across scenarios and must not be modified.
type Icon struct {
	Label string
	Image *image.RGBA
}

// IconSource supplies randomly selected icons from a preloaded catalog.
type IconSource interface {
	RandomIcon(rng *rand.Rand) Icon
	Len() int
}

// Catalog is an ordered, read-only list of icons indexed by position.
type Catalog struct {
	icons []Icon
}

// ErrEmptyCatalog is returned when a catalog would contain no icons.
var ErrEmptyCatalog = errors.New("icon catalog is empty")

// NewCatalog returns a catalog over the passed icons.
func NewCatalog(icons []Icon) (*Catalog, error) {
	if len(icons) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &Catalog{icons: append([]Icon(nil), icons...)}, nil
}

// RandomIcon draws an icon uniformly.
func (c *Catalog) RandomIcon(rng *rand.Rand) Icon {
	return c.icons[rng.Intn(len(c.icons))]
}

// At returns the i'th icon.
func (c *Catalog) At(i int) Icon {
	return c.icons[i]
}

func (c *Catalog) Len() int {
	return len(c.icons)
}

// Labels returns the distinct class labels in catalog order.
func (c *Catalog) Labels() (labels []string) {
	seen := map[string]bool{}
	for _, icon := range c.icons {
		if !seen[icon.Label] {
			seen[icon.Label] = true
			labels = append(labels, icon.Label)
		}
	}
	return
}

// The synthetic catalog: every shape in every color, similar in size to the fifty
// class icon sets normally used for this environment.
var (
	shapeNames = []string{"circle", "square", "triangle", "diamond", "cross", "ring"}
	colorNames = []struct {
		name string
		c    color.RGBA
	}{
		{"red", color.RGBA{0xe5, 0x39, 0x35, 0xff}},
		{"green", color.RGBA{0x43, 0xa0, 0x47, 0xff}},
		{"blue", color.RGBA{0x1e, 0x88, 0xe5, 0xff}},
		{"yellow", color.RGBA{0xfd, 0xd8, 0x35, 0xff}},
		{"purple", color.RGBA{0x8e, 0x24, 0xaa, 0xff}},
		{"orange", color.RGBA{0xfb, 0x8c, 0x00, 0xff}},
		{"black", color.RGBA{0x21, 0x21, 0x21, 0xff}},
		{"white", color.RGBA{0xfa, 0xfa, 0xfa, 0xff}},
	}
)

// NewSyntheticCatalog procedurally draws one icon per (color, shape) pair, each
// size x size pixels on a grey tile and labeled "<color>_<shape>", e.g. "red_circle".
func NewSyntheticCatalog(size int) *Catalog {
	icons := make([]Icon, 0, len(shapeNames)*len(colorNames))
	for _, col := range colorNames {
		for _, shape := range shapeNames {
			icons = append(icons, Icon{
				Label: col.name + "_" + shape,
				Image: drawShape(shape, col.c, size),
			})
		}
	}
	// Never empty: both tables are non-empty literals.
	catalog, _ := NewCatalog(icons)
	return catalog
}

func drawShape(shape string, fg color.RGBA, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	tile := color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	if fg == tile {
		tile = color.RGBA{0x60, 0x60, 0x60, 0xff}
	}

	s := float64(size)
	c := s / 2
	r := s * 0.4
	inside := map[string]func(x, y float64) bool{
		"circle": func(x, y float64) bool {
			return math.Hypot(x-c, y-c) <= r
		},
		"square": func(x, y float64) bool {
			return math.Abs(x-c) <= r*0.8 && math.Abs(y-c) <= r*0.8
		},
		"triangle": func(x, y float64) bool {
			top, bottom := c-r, c+r
			if y < top || y > bottom {
				return false
			}
			half := r * (y - top) / (bottom - top)
			return math.Abs(x-c) <= half
		},
		"diamond": func(x, y float64) bool {
			return math.Abs(x-c)+math.Abs(y-c) <= r
		},
		"cross": func(x, y float64) bool {
			arm := r * 0.3
			return (math.Abs(x-c) <= arm && math.Abs(y-c) <= r) ||
				(math.Abs(y-c) <= arm && math.Abs(x-c) <= r)
		},
		"ring": func(x, y float64) bool {
			d := math.Hypot(x-c, y-c)
			return d <= r && d >= r*0.55
		},
	}[shape]

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// sample pixel centers
			if inside(float64(x)+0.5, float64(y)+0.5) {
				img.SetRGBA(x, y, fg)
			} else {
				img.SetRGBA(x, y, tile)
			}
		}
	}
	return img
}
