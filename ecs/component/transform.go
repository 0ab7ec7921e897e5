package component

// Transform is local to the parent shape while the entity carries a Parent
// component, and world-space otherwise. Scale is in multiples of the
// tuning base size.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
