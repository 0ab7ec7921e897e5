package system

import (
	"math"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

// DragSystem lets the pointer grab a movable shape and pulls it towards the
// pointer by setting its body velocity every tick.
type DragSystem struct {
	round *Round
}

func NewDragSystem(round *Round) *DragSystem {
	return &DragSystem{round: round}
}

func (d *DragSystem) Update(w *ecs.World) {
	if d == nil || w == nil || d.round == nil {
		return
	}
	inputEnt, ok := w.First(component.DragInputComponent.Kind())
	if !ok {
		return
	}
	in, _ := ecs.Get(w, inputEnt, component.DragInputComponent.Kind())

	if in.Released || (!in.Held && !in.Pressed) {
		d.releaseAll(w)
		return
	}

	if in.Pressed {
		d.releaseAll(w)
		if e, ok := d.pick(w, in.X, in.Y); ok {
			t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
			_ = ecs.Add(w, e, component.DraggingComponent.Kind(), &component.Dragging{
				OffsetX: in.X - t.X,
				OffsetY: in.Y - t.Y,
			})
		}
	}

	speed := d.round.Tuning.DragSpeed
	for _, e := range w.Query(component.DraggingComponent.Kind()) {
		if !draggable(w, e) {
			ecs.Remove(w, e, component.DraggingComponent.Kind())
			continue
		}
		drag, _ := ecs.Get(w, e, component.DraggingComponent.Kind())
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok || pb.Body == nil {
			continue
		}
		dx := in.X - drag.OffsetX - t.X
		dy := in.Y - drag.OffsetY - t.Y
		pb.Body.SetVelocity(dx*speed, dy*speed)
	}
}

func (d *DragSystem) releaseAll(w *ecs.World) {
	for _, e := range w.Query(component.DraggingComponent.Kind()) {
		ecs.Remove(w, e, component.DraggingComponent.Kind())
	}
}

// pick returns the front-most draggable shape under the pointer.
func (d *DragSystem) pick(w *ecs.World, x, y float64) (ecs.Entity, bool) {
	var best ecs.Entity
	bestZ := math.MaxInt
	found := false
	for _, e := range w.Query(component.ShapeComponent.Kind(), component.TransformComponent.Kind()) {
		if !draggable(w, e) {
			continue
		}
		s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		if !HitTest(s.Kind, t, d.round.Tuning.BaseSize, x, y) {
			continue
		}
		z := 0
		if depth, ok := ecs.Get(w, e, component.DepthComponent.Kind()); ok {
			z = depth.Z
		}
		// later entities draw on top at equal depth
		if !found || z <= bestZ {
			best, bestZ, found = e, z, true
		}
	}
	return best, found
}

func draggable(w *ecs.World, e ecs.Entity) bool {
	s, ok := ecs.Get(w, e, component.ShapeComponent.Kind())
	if !ok || !s.Movable || !s.PhysicsEnabled || s.Trigger || !s.Visible {
		return false
	}
	if s.Phase != component.PhaseIdle {
		return false
	}
	return !ecs.Has(w, e, component.ParentComponent.Kind())
}

// HitTest reports whether world point (x, y) lies inside a top-level shape.
func HitTest(kind component.ShapeKind, t *component.Transform, baseSize, x, y float64) bool {
	if t == nil {
		return false
	}
	hw := math.Abs(t.ScaleX) * baseSize / 2
	hh := math.Abs(t.ScaleY) * baseSize / 2
	if hw == 0 || hh == 0 {
		return false
	}
	sin, cos := math.Sincos(-t.Rotation)
	dx, dy := x-t.X, y-t.Y
	lx := dx*cos - dy*sin
	ly := dx*sin + dy*cos

	switch kind {
	case component.ShapeCircle:
		nx, ny := lx/hw, ly/hh
		return nx*nx+ny*ny <= 1
	case component.ShapeDiamond:
		return math.Abs(lx)/hw+math.Abs(ly)/hh <= 1
	default:
		return math.Abs(lx) <= hw && math.Abs(ly) <= hh
	}
}
