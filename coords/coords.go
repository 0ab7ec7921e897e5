// Package coords converts shape transforms between world space and the
// resolution-independent fractions stored in level documents.
package coords

import "math"

// DefaultTolerance is the relative aspect-ratio difference below which a
// level is mapped directly onto the current play area.
const DefaultTolerance = 0.02

type Vec2 struct {
	X float64
	Y float64
}

// Size is a play-area extent in world units.
type Size struct {
	W float64
	H float64
}

func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

func (s Size) Aspect() float64 {
	if s.H == 0 {
		return 0
	}
	return s.W / s.H
}

// PlayArea returns the centered region inside the borders of a screen of the
// given size. borderPercent is the fraction of each axis left for play.
func PlayArea(screenW, screenH, borderPercent float64) (Vec2, Size) {
	if borderPercent <= 0 || borderPercent > 1 {
		borderPercent = 1
	}
	size := Size{W: screenW * borderPercent, H: screenH * borderPercent}
	origin := Vec2{X: (screenW - size.W) / 2, Y: (screenH - size.H) / 2}
	return origin, size
}

// FromOrtho derives the play area of an orthographic camera from its half
// height and aspect ratio.
func FromOrtho(orthoSize, aspect, borderPercent float64) Size {
	if borderPercent <= 0 || borderPercent > 1 {
		borderPercent = 1
	}
	h := orthoSize * 2
	return Size{W: h * aspect * borderPercent, H: h * borderPercent}
}

// Layout places normalized coordinates inside the current play area.
// Correction is the factor applied to the constrained axis relative to a
// direct mapping; it is 1 when no aspect correction was needed.
type Layout struct {
	Origin     Vec2
	Area       Size
	Correction float64
}

// Direct maps fractions straight onto area.
func Direct(origin Vec2, area Size) Layout {
	return Layout{Origin: origin, Area: area, Correction: 1}
}

// Fit returns the layout for a level authored on a play area of size saved
// when loaded into current. Aspect mismatches within tolerance are ignored.
// Larger mismatches shrink one axis of the current area so it matches the
// saved aspect, centered, which keeps the authored proportions.
func Fit(saved Size, origin Vec2, current Size, tolerance float64) Layout {
	if !saved.Valid() || !current.Valid() {
		return Direct(origin, current)
	}
	if tolerance < 0 {
		tolerance = 0
	}
	want := saved.Aspect()
	have := current.Aspect()
	if math.Abs(have-want)/want <= tolerance {
		return Direct(origin, current)
	}

	area := current
	correction := 1.0
	if have > want {
		// too wide: trim width
		area.W = current.H * want
		correction = area.W / current.W
	} else {
		// too tall: trim height
		area.H = current.W / want
		correction = area.H / current.H
	}
	return Layout{
		Origin: Vec2{
			X: origin.X + (current.W-area.W)/2,
			Y: origin.Y + (current.H-area.H)/2,
		},
		Area:       area,
		Correction: correction,
	}
}

// Normalize turns a world position and scale into fractions of the layout.
func (l Layout) Normalize(pos, scale Vec2) (Vec2, Vec2) {
	if !l.Area.Valid() {
		panic("coords: normalize with an empty play area")
	}
	return Vec2{
			X: (pos.X - l.Origin.X) / l.Area.W,
			Y: (pos.Y - l.Origin.Y) / l.Area.H,
		}, Vec2{
			X: scale.X / l.Area.W,
			Y: scale.Y / l.Area.H,
		}
}

// Denormalize turns stored fractions back into a world position and scale.
func (l Layout) Denormalize(pos, scale Vec2) (Vec2, Vec2) {
	return Vec2{
			X: l.Origin.X + pos.X*l.Area.W,
			Y: l.Origin.Y + pos.Y*l.Area.H,
		}, Vec2{
			X: scale.X * l.Area.W,
			Y: scale.Y * l.Area.H,
		}
}
