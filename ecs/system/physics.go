package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/chromashapes/common"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/prefabs"
	shapes "github.com/milk9111/chromashapes/shape"
)

const (
	collisionTypeShape cp.CollisionType = iota + 1
	collisionTypeBorder
)

const borderThickness = 2.0

// PhysicsSystem mirrors top-level shapes into a Chipmunk space. Shape
// components are authoritative: physics-enabled decides membership in the
// space, trigger decides the sensor flag, and the transform scale decides
// the collider size. Contacts seen during a step are queued as world
// events after the step finishes.
type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool
	tuning        prefabs.ShapeTuning

	entities map[ecs.Entity]*bodyInfo
	owners   map[*cp.Shape]ecs.Entity

	bounds       ecs.Entity
	borderShapes []*cp.Shape

	pending []ecs.ContactEvent
	seen    map[[2]ecs.Entity]struct{}
}

type bodyInfo struct {
	body    *cp.Body
	shape   *cp.Shape
	dynamic bool
	kind    component.ShapeKind
	width   float64
	height  float64
}

func NewPhysicsSystem(tuning prefabs.ShapeTuning) *PhysicsSystem {
	return &PhysicsSystem{
		space:    newSpace(),
		tuning:   tuning,
		entities: make(map[ecs.Entity]*bodyInfo),
		owners:   make(map[*cp.Shape]ecs.Entity),
		seen:     make(map[[2]ecs.Entity]struct{}),
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// SetTuning applies new tuning; colliders pick it up on their next rebuild.
func (ps *PhysicsSystem) SetTuning(t prefabs.ShapeTuning) {
	if ps == nil {
		return
	}
	ps.tuning = t
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.space = newSpace()
		ps.handlersReady = false
	}

	ps.ensureHandlers()
	ps.cleanupEntities(w)
	ps.syncBorders(w)
	ps.syncEntities(w)

	ps.space.Step(common.FixedDelta)

	ps.syncTransforms(w)
	ps.flushContacts(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	handler := ps.space.NewCollisionHandler(collisionTypeShape, collisionTypeShape)
	handler.UserData = ps
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		a, okA := sys.owners[shapeA]
		b, okB := sys.owners[shapeB]
		if !okA || !okB || a == b {
			return true
		}
		key := [2]ecs.Entity{a, b}
		if b < a {
			key = [2]ecs.Entity{b, a}
		}
		if _, dup := sys.seen[key]; dup {
			return true
		}
		sys.seen[key] = struct{}{}
		sys.pending = append(sys.pending, ecs.ContactEvent{
			A:      a,
			B:      b,
			Sensor: shapeA.Sensor() || shapeB.Sensor(),
		})
		return true
	}

	ps.handlersReady = true
}

func outlineVerts(kind component.ShapeKind, width, height float64) []cp.Vector {
	outline := shapes.Outline(kind, width/2, height/2)
	verts := make([]cp.Vector, len(outline))
	for i, p := range outline {
		verts[i] = cp.Vector{X: p.X, Y: p.Y}
	}
	return verts
}

// wantsBody reports whether e should be simulated this tick.
func wantsBody(w *ecs.World, e ecs.Entity, s *component.Shape) bool {
	if s == nil || !s.PhysicsEnabled || s.Phase == component.PhaseDissolved {
		return false
	}
	return !ecs.Has(w, e, component.ParentComponent.Kind())
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	entities := w.Query(component.ShapeComponent.Kind(), component.TransformComponent.Kind())
	for _, e := range entities {
		s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
		if !wantsBody(w, e, s) {
			continue
		}
		transform, _ := ecs.Get(w, e, component.TransformComponent.Kind())

		width := math.Abs(transform.ScaleX) * ps.tuning.BaseSize
		height := math.Abs(transform.ScaleY) * ps.tuning.BaseSize
		dynamic := s.Movable || s.Trigger

		info := ps.entities[e]
		if info != nil && info.dynamic != dynamic {
			ps.removeInfo(e, info)
			info = nil
		}
		if info == nil {
			info = ps.createBody(transform, s, dynamic)
			ps.entities[e] = info
		}
		if info.shape == nil || !sameSize(info.width, width) || !sameSize(info.height, height) || info.kind != s.Kind {
			ps.rebuildShape(e, info, s.Kind, width, height)
		}
		if info.shape.Sensor() != s.Trigger {
			info.shape.SetSensor(s.Trigger)
		}
		ps.owners[info.shape] = e

		if !dynamic {
			info.body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
			info.body.SetAngle(transform.Rotation)
		}
		if s.IsExpanding() {
			info.body.SetVelocity(0, 0)
			info.body.SetAngularVelocity(0)
			info.body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
		}

		ps.publish(w, e, info)
	}
}

func (ps *PhysicsSystem) createBody(transform *component.Transform, s *component.Shape, dynamic bool) *bodyInfo {
	info := &bodyInfo{dynamic: dynamic, kind: s.Kind}
	if dynamic {
		// the collider is attached right after, so the moment is refreshed
		// in rebuildShape
		body := cp.NewBody(1, 1)
		damping := ps.tuning.Damping
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, _ float64, dt float64) {
			cp.BodyUpdateVelocity(body, cp.Vector{}, math.Pow(damping, dt), dt)
		})
		info.body = body
	} else {
		info.body = cp.NewKinematicBody()
	}
	info.body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	info.body.SetAngle(transform.Rotation)
	info.body.SetAngularVelocity(0)
	ps.space.AddBody(info.body)
	return info
}

func (ps *PhysicsSystem) rebuildShape(e ecs.Entity, info *bodyInfo, kind component.ShapeKind, width, height float64) {
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
		delete(ps.owners, info.shape)
	}
	info.kind = kind
	info.width = width
	info.height = height
	// keep degenerate shapes collidable
	width = math.Max(width, 1)
	height = math.Max(height, 1)

	var shape *cp.Shape
	var moment float64
	mass := 1.0
	switch kind {
	case component.ShapeCircle:
		if math.Abs(width-height) < 1e-6 {
			radius := width / 2
			shape = cp.NewCircle(info.body, radius, cp.Vector{})
			moment = cp.MomentForCircle(mass, 0, radius, cp.Vector{})
			break
		}
		// uneven scale turns the circle into an ellipse
		shape = cp.NewPolyShapeRaw(info.body, shapes.EllipseSegments, outlineVerts(kind, width, height), 0)
		moment = mass * (width*width + height*height) / 16
	case component.ShapeDiamond:
		verts := outlineVerts(kind, width, height)
		shape = cp.NewPolyShapeRaw(info.body, len(verts), verts, 0)
		moment = cp.MomentForBox(mass, width, height) / 2
	default:
		shape = cp.NewBox(info.body, width, height, 0)
		moment = cp.MomentForBox(mass, width, height)
	}
	if info.dynamic {
		info.body.SetMass(mass)
		info.body.SetMoment(moment)
	}

	shape.SetFriction(ps.tuning.Friction)
	shape.SetElasticity(ps.tuning.Elasticity)
	shape.SetCollisionType(collisionTypeShape)
	ps.space.AddShape(shape)

	info.shape = shape
	ps.owners[shape] = e
}

func (ps *PhysicsSystem) publish(w *ecs.World, e ecs.Entity, info *bodyInfo) {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		pb = &component.PhysicsBody{}
		_ = ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), pb)
	}
	pb.Body = info.body
	pb.Shape = info.shape
	pb.Width = info.width
	pb.Height = info.height
	pb.Kind = info.kind
	pb.Kinematic = !info.dynamic
	pb.InSpace = true
	pb.Friction = ps.tuning.Friction
	pb.Elasticity = ps.tuning.Elasticity
}

func (ps *PhysicsSystem) syncBorders(w *ecs.World) {
	boundsEntity, ok := w.First(component.LevelBoundsComponent.Kind())
	if ok && boundsEntity == ps.bounds && len(ps.borderShapes) > 0 {
		return
	}
	for _, shape := range ps.borderShapes {
		ps.space.RemoveShape(shape)
	}
	ps.borderShapes = nil
	ps.bounds = 0
	if !ok {
		return
	}
	bounds, _ := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if bounds == nil || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	l, t := bounds.X, bounds.Y
	r, b := bounds.X+bounds.Width, bounds.Y+bounds.Height
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: l, Y: t}, b: cp.Vector{X: r, Y: t}}, // top
		{a: cp.Vector{X: l, Y: b}, b: cp.Vector{X: r, Y: b}}, // bottom
		{a: cp.Vector{X: l, Y: t}, b: cp.Vector{X: l, Y: b}}, // left
		{a: cp.Vector{X: r, Y: t}, b: cp.Vector{X: r, Y: b}}, // right
	}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, borderThickness)
		shape.SetFriction(0.8)
		shape.SetCollisionType(collisionTypeBorder)
		ps.space.AddShape(shape)
		ps.borderShapes = append(ps.borderShapes, shape)
	}
	ps.bounds = boundsEntity
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if !info.dynamic {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = info.body.Angle()
	}
}

func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	for _, c := range ps.pending {
		if !w.IsAlive(c.A) || !w.IsAlive(c.B) {
			continue
		}
		w.Events().Push(ecs.Event{Type: ecs.EventContact, Data: c})
	}
	ps.pending = ps.pending[:0]
	clear(ps.seen)
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) {
			s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
			if wantsBody(w, e, s) {
				continue
			}
			if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
				pb.InSpace = false
				pb.Body = nil
				pb.Shape = nil
			}
		}
		ps.removeInfo(e, info)
	}
}

func (ps *PhysicsSystem) removeInfo(e ecs.Entity, info *bodyInfo) {
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
		delete(ps.owners, info.shape)
	}
	if info.body != nil {
		ps.space.RemoveBody(info.body)
	}
	delete(ps.entities, e)
}

// Reset drops every body and starts over with an empty space.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	ps.space = newSpace()
	ps.handlersReady = false
	ps.entities = make(map[ecs.Entity]*bodyInfo)
	ps.owners = make(map[*cp.Shape]ecs.Entity)
	ps.borderShapes = nil
	ps.bounds = 0
	ps.pending = nil
	clear(ps.seen)
}

func sameSize(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
