package shape

import (
	"math"

	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/ecs/component"
)

// EllipseSegments is the outline resolution of circle shapes.
const EllipseSegments = 32

// Outline returns the convex outline of a shape with half extents hw and hh,
// centered on the origin and wound counter-clockwise in y-up coordinates.
// Circles scaled unevenly become ellipses.
func Outline(kind component.ShapeKind, hw, hh float64) []coords.Vec2 {
	switch kind {
	case component.ShapeCircle:
		out := make([]coords.Vec2, EllipseSegments)
		for i := range out {
			a := 2 * math.Pi * float64(i) / EllipseSegments
			out[i] = coords.Vec2{X: hw * math.Cos(a), Y: hh * math.Sin(a)}
		}
		return out
	case component.ShapeDiamond:
		return []coords.Vec2{{X: 0, Y: -hh}, {X: hw, Y: 0}, {X: 0, Y: hh}, {X: -hw, Y: 0}}
	default:
		return []coords.Vec2{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	}
}
