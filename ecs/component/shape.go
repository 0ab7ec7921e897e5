package component

import "image/color"

// Reserved palette slots.
const (
	WhiteIndex = 0
	BlackIndex = 1
)

type ShapeKind int

const (
	ShapeSquare ShapeKind = iota
	ShapeCircle
	ShapeDiamond
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSquare:
		return "square"
	case ShapeCircle:
		return "circle"
	case ShapeDiamond:
		return "diamond"
	default:
		return "unknown"
	}
}

// Valid reports whether k names a known shape.
func (k ShapeKind) Valid() bool {
	return k >= ShapeSquare && k <= ShapeDiamond
}

// ScalePhase is the per-shape animation state.
type ScalePhase int

const (
	PhaseIdle ScalePhase = iota
	PhaseExpanding
	PhaseShrinking
	PhaseDissolved
)

func (p ScalePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExpanding:
		return "expanding"
	case PhaseShrinking:
		return "shrinking"
	case PhaseDissolved:
		return "dissolved"
	default:
		return "unknown"
	}
}

// Shape is the gameplay state of one colored shape. The physics system
// mirrors PhysicsEnabled and Trigger onto the Chipmunk body each tick.
type Shape struct {
	ColorIndex int
	// Color is the render color. It can differ from the palette entry of
	// ColorIndex after a repaint or once the shape has been absorbed.
	Color          color.NRGBA
	Kind           ShapeKind
	Movable        bool
	PhysicsEnabled bool
	Trigger        bool
	Visible        bool
	Phase          ScalePhase
}

// IsExpanding reports whether a grow or shrink transition is in flight.
// Shapes in either phase take no part in interaction resolution.
func (s *Shape) IsExpanding() bool {
	return s != nil && (s.Phase == PhaseExpanding || s.Phase == PhaseShrinking)
}

var ShapeComponent = NewComponent[Shape]()
