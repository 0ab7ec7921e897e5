package levels

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	WhiteIndex = 0
	BlackIndex = 1
)

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the play area the document was authored on. A zero size means the
// shapes are mapped directly onto whatever area loads them.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ShapeRecord is one shape in a level document. Position and scale are the
// shape's world-space values as fractions of the authoring play area, also
// for parented shapes. Parent is the index of the owning shape, nil for
// top-level shapes.
type ShapeRecord struct {
	Position   Vec2    `json:"position"`
	Scale      Vec2    `json:"scale"`
	Rotation   float64 `json:"rotation"`
	ColorIndex int     `json:"color"`
	Kind       int     `json:"kind"`
	Movable    bool    `json:"movable"`
	Parent     *int    `json:"parent,omitempty"`
}

type Document struct {
	Name               string        `json:"name,omitempty"`
	Palette            []string      `json:"palette"`
	StartingBackground int           `json:"starting_background"`
	GoalBackground     int           `json:"goal_background"`
	PlayArea           Size          `json:"play_area"`
	Shapes             []ShapeRecord `json:"shapes"`
}

// Default is the level played when nothing else can be loaded: no shapes,
// white background, white goal.
func Default() *Document {
	return &Document{
		Name:    "empty",
		Palette: []string{"#ffffff", "#000000"},
	}
}

// Colors parses the palette.
func (d *Document) Colors() ([]color.NRGBA, error) {
	out := make([]color.NRGBA, len(d.Palette))
	for i, s := range d.Palette {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("levels: palette[%d]: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// Children returns the indices of the direct children of shape i in
// ascending order.
func (d *Document) Children(i int) []int {
	var out []int
	for j, rec := range d.Shapes {
		if rec.Parent != nil && *rec.Parent == i {
			out = append(out, j)
		}
	}
	return out
}

// Roots returns the indices of all top-level shapes.
func (d *Document) Roots() []int {
	var out []int
	for i, rec := range d.Shapes {
		if rec.Parent == nil {
			out = append(out, i)
		}
	}
	return out
}

// ParseColor accepts "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}
	var c color.NRGBA
	var err error
	if c.R, err = parse(0); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if c.G, err = parse(2); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if c.B, err = parse(4); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.A = 0xff
	if len(hex) == 8 {
		if c.A, err = parse(6); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	}
	return c, nil
}

// FormatColor is the inverse of ParseColor. The alpha byte is only written
// when the color is not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func intPtr(v int) *int { return &v }
