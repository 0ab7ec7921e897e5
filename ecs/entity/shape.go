package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

// ShapeParams describes a top-level shape in world space. Scale is in
// multiples of the tuning base size.
type ShapeParams struct {
	X          float64
	Y          float64
	ScaleX     float64
	ScaleY     float64
	Rotation   float64
	ColorIndex int
	Color      color.NRGBA
	Kind       component.ShapeKind
	Movable    bool
}

func NewShape(w *ecs.World, p ShapeParams) (ecs.Entity, error) {
	if !p.Kind.Valid() {
		return 0, fmt.Errorf("entity: unknown shape kind %d", p.Kind)
	}
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        p.X,
		Y:        p.Y,
		ScaleX:   p.ScaleX,
		ScaleY:   p.ScaleY,
		Rotation: p.Rotation,
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{
		ColorIndex:     p.ColorIndex,
		Color:          p.Color,
		Kind:           p.Kind,
		Movable:        p.Movable,
		PhysicsEnabled: true,
		Visible:        true,
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.DepthComponent.Kind(), &component.Depth{}); err != nil {
		return 0, err
	}
	return e, nil
}

// ClearLevel destroys every shape and the level bounds. Animations in
// flight end with their entities.
func ClearLevel(w *ecs.World) int {
	n := 0
	for _, e := range w.Query(component.ShapeComponent.Kind()) {
		if w.DestroyEntity(e) {
			n++
		}
	}
	for _, e := range w.Query(component.LevelBoundsComponent.Kind()) {
		w.DestroyEntity(e)
	}
	return n
}
