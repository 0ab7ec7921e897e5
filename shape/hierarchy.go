package shape

import (
	"math"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

// Depth of a shape drawn on top of its parent.
const childDepth = -1

// ParentOf returns the owner of e, if any.
func ParentOf(w *ecs.World, e ecs.Entity) (ecs.Entity, bool) {
	p, ok := ecs.Get(w, e, component.ParentComponent.Kind())
	if !ok {
		return 0, false
	}
	parent := ecs.Entity(p.Entity)
	if !w.IsAlive(parent) {
		return 0, false
	}
	return parent, true
}

// ChildrenOf returns a copy of the direct children of e.
func ChildrenOf(w *ecs.World, e ecs.Entity) []ecs.Entity {
	c, ok := ecs.Get(w, e, component.ChildrenComponent.Kind())
	if !ok || len(c.Entities) == 0 {
		return nil
	}
	out := make([]ecs.Entity, 0, len(c.Entities))
	for _, raw := range c.Entities {
		if child := ecs.Entity(raw); w.IsAlive(child) {
			out = append(out, child)
		}
	}
	return out
}

// WorldTransform composes e's transform with those of its ancestors.
func WorldTransform(w *ecs.World, e ecs.Entity) component.Transform {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return component.Transform{ScaleX: 1, ScaleY: 1}
	}
	parent, ok := ParentOf(w, e)
	if !ok {
		return *t
	}
	return compose(WorldTransform(w, parent), *t)
}

// SetWorldTransform writes world as e's transform, converting it into the
// parent's space when e is attached.
func SetWorldTransform(w *ecs.World, e ecs.Entity, world component.Transform) {
	local := world
	if parent, ok := ParentOf(w, e); ok {
		local = relative(WorldTransform(w, parent), world)
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		*t = local
		return
	}
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &local)
}

// Attach makes child a child of parent, keeping its world transform. The
// child loses physics while attached and draws above its parent.
func Attach(w *ecs.World, child, parent ecs.Entity) {
	if child == parent {
		panic("shape: cannot attach a shape to itself")
	}
	for cur, ok := parent, true; ok; cur, ok = ParentOf(w, cur) {
		if cur == child {
			panic("shape: attach would create a cycle")
		}
	}
	world := WorldTransform(w, child)
	if _, ok := ParentOf(w, child); ok {
		Detach(w, child)
	}

	_ = ecs.Add(w, child, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(parent)})
	if c, ok := ecs.Get(w, parent, component.ChildrenComponent.Kind()); ok {
		c.Entities = append(c.Entities, uint64(child))
	} else {
		_ = ecs.Add(w, parent, component.ChildrenComponent.Kind(), &component.Children{Entities: []uint64{uint64(child)}})
	}
	SetWorldTransform(w, child, world)

	if s, ok := ecs.Get(w, child, component.ShapeComponent.Kind()); ok {
		s.PhysicsEnabled = false
	}
	setDepth(w, child, childDepth)
}

// Detach moves child to its grandparent, or to the top level when there is
// none, keeping its world transform. A shape that becomes top-level gets
// its physics back.
func Detach(w *ecs.World, child ecs.Entity) {
	parent, ok := ParentOf(w, child)
	if !ok {
		ecs.Remove(w, child, component.ParentComponent.Kind())
		return
	}
	world := WorldTransform(w, child)
	removeChild(w, parent, child)

	if grand, ok := ParentOf(w, parent); ok {
		_ = ecs.Add(w, child, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(grand)})
		if c, ok := ecs.Get(w, grand, component.ChildrenComponent.Kind()); ok {
			c.Entities = append(c.Entities, uint64(child))
		} else {
			_ = ecs.Add(w, grand, component.ChildrenComponent.Kind(), &component.Children{Entities: []uint64{uint64(child)}})
		}
		SetWorldTransform(w, child, world)
		return
	}

	ecs.Remove(w, child, component.ParentComponent.Kind())
	SetWorldTransform(w, child, world)
	if s, ok := ecs.Get(w, child, component.ShapeComponent.Kind()); ok {
		s.PhysicsEnabled = true
	}
	setDepth(w, child, 0)
}

func removeChild(w *ecs.World, parent, child ecs.Entity) {
	c, ok := ecs.Get(w, parent, component.ChildrenComponent.Kind())
	if !ok {
		return
	}
	kept := c.Entities[:0]
	for _, raw := range c.Entities {
		if ecs.Entity(raw) != child {
			kept = append(kept, raw)
		}
	}
	c.Entities = kept
	if len(c.Entities) == 0 {
		ecs.Remove(w, parent, component.ChildrenComponent.Kind())
	}
}

// compose applies local inside parent: scale, then rotate, then translate.
func compose(parent, local component.Transform) component.Transform {
	x := local.X * parent.ScaleX
	y := local.Y * parent.ScaleY
	sin, cos := math.Sincos(parent.Rotation)
	return component.Transform{
		X:        parent.X + x*cos - y*sin,
		Y:        parent.Y + x*sin + y*cos,
		ScaleX:   parent.ScaleX * local.ScaleX,
		ScaleY:   parent.ScaleY * local.ScaleY,
		Rotation: parent.Rotation + local.Rotation,
	}
}

// relative is the inverse of compose: the local transform that places a
// shape at world inside parent.
func relative(parent, world component.Transform) component.Transform {
	dx := world.X - parent.X
	dy := world.Y - parent.Y
	sin, cos := math.Sincos(-parent.Rotation)
	x := dx*cos - dy*sin
	y := dx*sin + dy*cos
	return component.Transform{
		X:        safeDiv(x, parent.ScaleX),
		Y:        safeDiv(y, parent.ScaleY),
		ScaleX:   safeDiv(world.ScaleX, parent.ScaleX),
		ScaleY:   safeDiv(world.ScaleY, parent.ScaleY),
		Rotation: world.Rotation - parent.Rotation,
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
