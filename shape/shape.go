// Package shape implements the per-shape state machine: scaling
// transitions, absorption, repaints, and removal with child detachment.
//
// Operations run against an Env that carries the world and the owning
// session, so a shape never holds callbacks of its own.
package shape

import (
	"fmt"
	"image/color"

	"github.com/milk9111/chromashapes/common"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/prefabs"
	"github.com/milk9111/chromashapes/rules"
)

// Session is the level-wide state shapes report to.
type Session interface {
	// AssignZIndex hands out the next depth and records colorIndex as the
	// current background.
	AssignZIndex(colorIndex int, e ecs.Entity) int
	Background() int
	ColorAt(index int) color.NRGBA
	EvaluateEndCondition(w *ecs.World, trigger ecs.Entity)
	Ended() bool
}

type Env struct {
	World   *ecs.World
	Session Session
	Tuning  prefabs.ShapeTuning
}

func (env Env) mustBeWired() {
	if env.World == nil {
		panic("shape: env has no world")
	}
	if env.Session == nil {
		panic("shape: env has no session")
	}
}

func (env Env) shape(e ecs.Entity) *component.Shape {
	s, ok := ecs.Get(env.World, e, component.ShapeComponent.Kind())
	if !ok {
		return nil
	}
	return s
}

// Participant returns the resolver's view of e.
func Participant(s *component.Shape) rules.Participant {
	return rules.Participant{
		ColorIndex: s.ColorIndex,
		Movable:    s.Movable,
		Scaling:    s.IsExpanding(),
	}
}

// StartScaling begins the grow or shrink transition of e. It returns false
// and changes nothing when e is already scaling, already dissolved, or the
// round has ended.
func (env Env) StartScaling(e ecs.Entity, growing bool) bool {
	env.mustBeWired()
	s := env.shape(e)
	if s == nil || s.IsExpanding() || s.Phase == component.PhaseDissolved || env.Session.Ended() {
		return false
	}

	env.RemoveShape(e, growing)

	if growing {
		s.Phase = component.PhaseExpanding
		s.Trigger = true
		s.PhysicsEnabled = true
		if !ecs.Has(env.World, e, component.AbsorberComponent.Kind()) {
			_ = ecs.Add(env.World, e, component.AbsorberComponent.Kind(), &component.Absorber{})
		}
	} else {
		s.Phase = component.PhaseShrinking
		s.PhysicsEnabled = false
	}
	ecs.Remove(env.World, e, component.DraggingComponent.Kind())

	anim := &component.ScaleAnimation{Growing: growing}
	if t, ok := ecs.Get(env.World, e, component.TransformComponent.Kind()); ok {
		anim.StartX, anim.StartY = t.ScaleX, t.ScaleY
	}
	if growing {
		anim.EndX, anim.EndY = env.Tuning.MaxScale, env.Tuning.MaxScale
		anim.Duration = env.Tuning.ExpandSeconds
	} else {
		anim.Duration = env.Tuning.ShrinkSeconds
	}
	_ = ecs.Add(env.World, e, component.ScaleAnimationComponent.Kind(), anim)

	env.World.Events().Push(ecs.Event{
		Type: ecs.EventShapeScaling,
		Data: ecs.ScalingEvent{Entity: e, Growing: growing},
	})
	return true
}

// TickScaling advances every scale animation by dt seconds and completes
// the ones that have run their duration. The first tick after a transition
// starts only arms the animation.
func (env Env) TickScaling(dt float64) {
	env.mustBeWired()
	kind := component.ScaleAnimationComponent.Kind()
	var done []ecs.Entity
	ecs.ForEach(env.World, kind, func(e ecs.Entity, a *component.ScaleAnimation) {
		if !a.Armed {
			a.Armed = true
			return
		}
		a.Elapsed += dt
		t, ok := ecs.Get(env.World, e, component.TransformComponent.Kind())
		if !ok {
			return
		}
		f := 1.0
		if a.Duration > 0 && a.Elapsed < a.Duration {
			f = a.Elapsed / a.Duration
		}
		t.ScaleX = common.Lerp(a.StartX, a.EndX, f)
		t.ScaleY = common.Lerp(a.StartY, a.EndY, f)
		if a.Done() {
			done = append(done, e)
		}
	})
	for _, e := range done {
		env.CompleteScaling(e)
	}
}

// CompleteScaling finishes the transition of e: shapes it absorbed are
// hidden, its own physics is switched off, and the session re-evaluates the
// round with e as the trigger.
func (env Env) CompleteScaling(e ecs.Entity) {
	env.mustBeWired()
	s := env.shape(e)
	if s == nil || !s.IsExpanding() {
		return
	}

	if ab, ok := ecs.Get(env.World, e, component.AbsorberComponent.Kind()); ok {
		for _, raw := range ab.Pending {
			other := env.shape(ecs.Entity(raw))
			if other == nil {
				continue
			}
			other.Visible = false
			other.Color = color.NRGBA{}
			other.PhysicsEnabled = false
			other.Phase = component.PhaseDissolved
		}
		ab.Pending = nil
	}

	s.PhysicsEnabled = false
	s.Phase = component.PhaseDissolved
	ecs.Remove(env.World, e, component.ScaleAnimationComponent.Kind())

	env.Session.EvaluateEndCondition(env.World, e)
}

// AbsorbContact handles a shape entering the trigger collider of a growing
// shape. A same-color idle shape is soft-deleted and queued to disappear
// when the absorber finishes.
func (env Env) AbsorbContact(absorber, other ecs.Entity) bool {
	env.mustBeWired()
	a := env.shape(absorber)
	o := env.shape(other)
	if a == nil || o == nil || absorber == other {
		return false
	}
	if a.Phase != component.PhaseExpanding {
		return false
	}
	if o.Phase == component.PhaseDissolved || !o.PhysicsEnabled {
		return false
	}
	if !rules.Absorbs(a.ColorIndex, Participant(o)) {
		return false
	}

	env.RemoveShape(other, false)
	o.PhysicsEnabled = false
	o.Phase = component.PhaseDissolved
	ecs.Remove(env.World, other, component.DraggingComponent.Kind())

	ab, ok := ecs.Get(env.World, absorber, component.AbsorberComponent.Kind())
	if !ok {
		ab = &component.Absorber{}
		_ = ecs.Add(env.World, absorber, component.AbsorberComponent.Kind(), ab)
	}
	ab.Pending = append(ab.Pending, uint64(other))
	return true
}

// NoOverride keeps the color index when repainting.
const NoOverride = -1

// SetColor repaints e. With NoOverride the color index is left alone, so a
// shape can look like another color without being reclassified.
func (env Env) SetColor(e ecs.Entity, c color.NRGBA, overrideIndex int) {
	env.mustBeWired()
	if overrideIndex < NoOverride {
		panic(fmt.Sprintf("shape: invalid color override %d", overrideIndex))
	}
	if overrideIndex != NoOverride {
		// panics on an index outside the palette
		env.Session.ColorAt(overrideIndex)
	}
	s := env.shape(e)
	if s == nil {
		return
	}
	s.Color = c
	if overrideIndex != NoOverride {
		s.ColorIndex = overrideIndex
	}
}

// RemoveShape pushes e behind the live shapes and frees its children. A
// growing shape takes the depth of its own color, which becomes the new
// background; anything else is filed under the current background.
// Detached children get physics back and are checked against the
// background.
func (env Env) RemoveShape(e ecs.Entity, growing bool) {
	env.mustBeWired()
	s := env.shape(e)
	if s == nil {
		return
	}

	layer := env.Session.Background()
	if growing {
		layer = s.ColorIndex
	}
	z := env.Session.AssignZIndex(layer, e)
	setDepth(env.World, e, z)

	children := ChildrenOf(env.World, e)
	if len(children) == 0 {
		return
	}
	for _, c := range children {
		Detach(env.World, c)
	}
	for _, c := range children {
		env.CheckBackgroundColor(c)
	}
}

// CheckBackgroundColor dissolves e in place when its color matches the
// current background, since it can no longer be told apart from it.
func (env Env) CheckBackgroundColor(e ecs.Entity) bool {
	env.mustBeWired()
	s := env.shape(e)
	if s == nil || s.Phase == component.PhaseDissolved {
		return false
	}
	if env.Session.Background() != s.ColorIndex {
		return false
	}
	env.RemoveShape(e, true)
	s.PhysicsEnabled = false
	s.Phase = component.PhaseDissolved
	return true
}

// Interact resolves a physical contact between a and b and applies the
// outcome. Contacts involving a dissolved shape or a finished round are
// ignored.
func (env Env) Interact(a, b ecs.Entity) rules.Outcome {
	env.mustBeWired()
	sa := env.shape(a)
	sb := env.shape(b)
	if sa == nil || sb == nil || a == b || env.Session.Ended() {
		return rules.Outcome{Rule: "none"}
	}
	if sa.Phase == component.PhaseDissolved || sb.Phase == component.PhaseDissolved {
		return rules.Outcome{Rule: "none"}
	}

	out := rules.Resolve(Participant(sa), Participant(sb))
	// both repaints read the colors from before either applies
	ca, cb := sa.ColorIndex, sb.ColorIndex
	colA, colB := sa.Color, sb.Color
	if out.RepaintB {
		env.SetColor(b, colA, ca)
	}
	if out.RepaintA {
		env.SetColor(a, colB, cb)
	}

	switch out.Action {
	case rules.ActionShrink:
		env.StartScaling(a, false)
		env.StartScaling(b, false)
	case rules.ActionExpand:
		env.StartScaling(a, true)
		env.StartScaling(b, true)
	}
	return out
}

func setDepth(w *ecs.World, e ecs.Entity, z int) {
	if d, ok := ecs.Get(w, e, component.DepthComponent.Kind()); ok {
		d.Z = z
		return
	}
	_ = ecs.Add(w, e, component.DepthComponent.Kind(), &component.Depth{Z: z})
}
