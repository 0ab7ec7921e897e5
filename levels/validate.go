package levels

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMalformed = errors.New("malformed level document")
	ErrNotFound  = errors.New("level not found")
)

// Validate reports the first structural problem in doc. Every error wraps
// ErrMalformed.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("levels: %w: nil document", ErrMalformed)
	}
	colors, err := doc.Colors()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(colors) < 2 {
		return fmt.Errorf("levels: %w: palette needs white and black, got %d colors", ErrMalformed, len(colors))
	}
	if c := colors[WhiteIndex]; c.R != 0xff || c.G != 0xff || c.B != 0xff {
		return fmt.Errorf("levels: %w: palette[0] must be white, got %s", ErrMalformed, doc.Palette[WhiteIndex])
	}
	if c := colors[BlackIndex]; c.R != 0 || c.G != 0 || c.B != 0 {
		return fmt.Errorf("levels: %w: palette[1] must be black, got %s", ErrMalformed, doc.Palette[BlackIndex])
	}
	if !inRange(doc.StartingBackground, len(colors)) {
		return fmt.Errorf("levels: %w: starting background %d outside palette", ErrMalformed, doc.StartingBackground)
	}
	if !inRange(doc.GoalBackground, len(colors)) {
		return fmt.Errorf("levels: %w: goal background %d outside palette", ErrMalformed, doc.GoalBackground)
	}
	if !finite(doc.PlayArea.W) || !finite(doc.PlayArea.H) || doc.PlayArea.W < 0 || doc.PlayArea.H < 0 {
		return fmt.Errorf("levels: %w: invalid play area %vx%v", ErrMalformed, doc.PlayArea.W, doc.PlayArea.H)
	}

	if len(doc.Shapes) == 0 && !isBlank(doc) {
		return fmt.Errorf("levels: %w: level %q has no shapes", ErrMalformed, doc.Name)
	}

	for i, rec := range doc.Shapes {
		if !inRange(rec.ColorIndex, len(colors)) {
			return fmt.Errorf("levels: shape %d: %w: color %d outside palette", i, ErrMalformed, rec.ColorIndex)
		}
		if rec.Kind < 0 || rec.Kind > 2 {
			return fmt.Errorf("levels: shape %d: %w: unknown kind %d", i, ErrMalformed, rec.Kind)
		}
		for _, v := range []float64{rec.Position.X, rec.Position.Y, rec.Scale.X, rec.Scale.Y, rec.Rotation} {
			if !finite(v) {
				return fmt.Errorf("levels: shape %d: %w: non-finite transform", i, ErrMalformed)
			}
		}
		if rec.Scale.X < 0 || rec.Scale.Y < 0 {
			return fmt.Errorf("levels: shape %d: %w: negative scale", i, ErrMalformed)
		}
		if rec.Parent == nil {
			continue
		}
		p := *rec.Parent
		if p == i {
			return fmt.Errorf("levels: shape %d: %w: parent of itself", i, ErrMalformed)
		}
		if !inRange(p, len(doc.Shapes)) {
			return fmt.Errorf("levels: shape %d: %w: dangling parent id %d", i, ErrMalformed, p)
		}
	}

	for i := range doc.Shapes {
		seen := 0
		for cur := doc.Shapes[i].Parent; cur != nil; cur = doc.Shapes[*cur].Parent {
			seen++
			if seen > len(doc.Shapes) {
				return fmt.Errorf("levels: shape %d: %w: cyclic parent chain", i, ErrMalformed)
			}
		}
	}
	return nil
}

// isBlank reports whether doc is an intentionally empty level: only the
// reserved colors and a goal already met.
func isBlank(doc *Document) bool {
	return len(doc.Palette) == 2 && doc.StartingBackground == doc.GoalBackground
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
