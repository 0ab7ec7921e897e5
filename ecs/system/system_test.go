package system

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/ecs/entity"
	"github.com/milk9111/chromashapes/levels"
	"github.com/milk9111/chromashapes/prefabs"
	"github.com/milk9111/chromashapes/session"
)

type memStore struct {
	docs map[string]*levels.Document
}

func (m *memStore) Load(name string) (*levels.Document, error) {
	doc, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("levels: %s: %w", name, levels.ErrNotFound)
	}
	return doc, nil
}

func (m *memStore) Save(name string, doc *levels.Document) error {
	m.docs[name] = doc
	return nil
}

func (m *memStore) List() ([]string, error) {
	names := make([]string, 0, len(m.docs))
	for n := range m.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

type memProgress struct {
	p     levels.Progress
	saves int
}

func (m *memProgress) LoadProgress() (levels.Progress, error) { return m.p, nil }

func (m *memProgress) SaveProgress(p levels.Progress) error {
	m.p = p
	m.saves++
	return nil
}

func pairDoc(name string) *levels.Document {
	return &levels.Document{
		Name:           name,
		Palette:        []string{"#ffffff", "#000000", "#ff0000"},
		GoalBackground: 2,
		PlayArea:       levels.Size{W: 1000, H: 500},
		Shapes: []levels.ShapeRecord{
			{Position: levels.Vec2{X: 0.5, Y: 0.5}, Scale: levels.Vec2{X: 0.064, Y: 0.128}, ColorIndex: 2, Movable: true},
			{Position: levels.Vec2{X: 0.52, Y: 0.5}, Scale: levels.Vec2{X: 0.064, Y: 0.128}, ColorIndex: 2, Movable: true},
		},
	}
}

func apartDoc(name string) *levels.Document {
	doc := pairDoc(name)
	doc.Shapes[0].Position.X = 0.2
	doc.Shapes[1].Position.X = 0.8
	return doc
}

type harness struct {
	w       *ecs.World
	round   *Round
	physics *PhysicsSystem
	sched   *ecs.Scheduler
	results []bool
	prog    *memProgress
	store   *memStore
}

func newHarness(t *testing.T, initial string, docs ...*levels.Document) *harness {
	t.Helper()
	h := &harness{
		w:     ecs.NewWorld(),
		round: &Round{Tuning: prefabs.DefaultShapeTuning()},
		prog:  &memProgress{},
		store: &memStore{docs: map[string]*levels.Document{}},
	}
	for _, d := range docs {
		h.store.docs[d.Name] = d
	}
	h.physics = NewPhysicsSystem(h.round.Tuning)
	lvl := NewLevelSystem(h.round, LevelConfig{
		Store:    h.store,
		Progress: h.prog,
		Initial:  initial,
		Place: entity.Placement{
			Area: coords.Size{W: 1000, H: 500},
		},
		Seed:         7,
		Sink: session.ResultFunc(func(win bool) {
			h.results = append(h.results, win)
		}),
		PhysicsReset: h.physics.Reset,
	})
	h.sched = ecs.NewScheduler(
		lvl,
		NewDragSystem(h.round),
		h.physics,
		NewInteractionSystem(h.round),
		NewScaleSystem(h.round),
	)
	return h
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.sched.Update(h.w)
	}
}

func (h *harness) shapes() []ecs.Entity {
	return h.w.Query(component.ShapeComponent.Kind())
}

func TestMatchingPairWinsRound(t *testing.T) {
	h := newHarness(t, "pair", pairDoc("pair"))
	h.tick(1)

	scaling := 0
	for _, e := range h.shapes() {
		s, _ := ecs.Get(h.w, e, component.ShapeComponent.Kind())
		if s.Phase == component.PhaseExpanding {
			scaling++
		}
	}
	if scaling != 2 {
		t.Fatalf("expected both shapes expanding after contact, got %d", scaling)
	}

	h.tick(240)
	if len(h.results) != 1 || !h.results[0] {
		t.Fatalf("expected a single win, got %v", h.results)
	}
	if !h.round.Session.Ended() || !h.round.Session.Won() {
		t.Fatalf("session should have latched a win")
	}
	if !h.prog.p.IsCompleted("pair") {
		t.Fatalf("win should be recorded in progress")
	}
	if len(h.physics.entities) != 0 {
		t.Fatalf("dissolved shapes should leave the space, %d bodies left", len(h.physics.entities))
	}
}

func TestSeparatedPairStaysOpen(t *testing.T) {
	h := newHarness(t, "apart", apartDoc("apart"))
	h.tick(120)
	if len(h.results) != 0 || h.round.Session.Ended() {
		t.Fatalf("round should still be open")
	}
	for _, e := range h.shapes() {
		s, _ := ecs.Get(h.w, e, component.ShapeComponent.Kind())
		if s.Phase != component.PhaseIdle {
			t.Fatalf("shape %v should be idle, got %s", e, s.Phase)
		}
	}
}

func TestMissingLevelPlaysEmptyDefault(t *testing.T) {
	h := newHarness(t, "nope")
	h.tick(1)
	if h.round.Doc == nil || len(h.round.Doc.Shapes) != 0 {
		t.Fatalf("expected the empty default level")
	}
	if h.round.Session == nil {
		t.Fatalf("session should exist for the empty level")
	}
}

func TestReloadRebuildsLevel(t *testing.T) {
	h := newHarness(t, "apart", apartDoc("apart"))
	h.tick(1)
	before := h.shapes()

	req := h.w.CreateEntity()
	_ = ecs.Add(h.w, req, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{})
	h.tick(1)

	after := h.shapes()
	if len(after) != 2 {
		t.Fatalf("expected 2 shapes after reload, got %d", len(after))
	}
	for _, e := range before {
		if h.w.IsAlive(e) {
			t.Fatalf("old shape %v survived reload", e)
		}
	}
	if h.round.Sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", h.round.Sequence)
	}
	if _, ok := ecs.First(h.w, component.ReloadRequestComponent.Kind()); ok {
		t.Fatalf("reload request should be consumed")
	}
	loadedEnt, ok := ecs.First(h.w, component.LevelLoadedComponent.Kind())
	if !ok {
		t.Fatalf("missing level loaded marker")
	}
	loaded, _ := ecs.Get(h.w, loadedEnt, component.LevelLoadedComponent.Kind())
	if loaded.Sequence != 2 || loaded.Name != "apart" {
		t.Fatalf("unexpected marker %+v", loaded)
	}
}

func TestLevelChangeRequests(t *testing.T) {
	pasted := apartDoc("pasted_level")
	encoded, err := levels.Encode(pasted)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name string
		req  component.LevelChangeRequest
		want string
	}{
		{name: "next", req: component.LevelChangeRequest{}, want: "b"},
		{name: "named", req: component.LevelChangeRequest{TargetLevel: "c"}, want: "c"},
		{name: "document", req: component.LevelChangeRequest{Document: encoded}, want: "pasted_level"},
		{name: "bad document", req: component.LevelChangeRequest{Document: []byte("{")}, want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "a", apartDoc("a"), apartDoc("b"), apartDoc("c"))
			h.tick(1)
			req := tt.req
			e := h.w.CreateEntity()
			_ = ecs.Add(h.w, e, component.LevelChangeRequestComponent.Kind(), &req)
			h.tick(1)
			if h.round.Name != tt.want {
				t.Fatalf("expected level %q, got %q", tt.want, h.round.Name)
			}
		})
	}
}

func TestNextWrapsToFirstLevel(t *testing.T) {
	h := newHarness(t, "b", apartDoc("a"), apartDoc("b"))
	h.tick(1)
	e := h.w.CreateEntity()
	_ = ecs.Add(h.w, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{})
	h.tick(1)
	if h.round.Name != "a" {
		t.Fatalf("expected wrap to a, got %q", h.round.Name)
	}
}

func newShape(t *testing.T, w *ecs.World, x, y float64, color int, movable bool) ecs.Entity {
	t.Helper()
	e, err := entity.NewShape(w, entity.ShapeParams{X: x, Y: y, ScaleX: 1, ScaleY: 1, ColorIndex: color, Movable: movable})
	if err != nil {
		t.Fatalf("new shape: %v", err)
	}
	return e
}

func TestPhysicsBodiesFollowShapeState(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(prefabs.DefaultShapeTuning())
	movable := newShape(t, w, 100, 100, 2, true)
	fixed := newShape(t, w, 400, 100, 3, false)
	bounds := w.CreateEntity()
	_ = ecs.Add(w, bounds, component.LevelBoundsComponent.Kind(), &component.LevelBounds{Width: 800, Height: 400})

	ps.Update(w)
	if len(ps.entities) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(ps.entities))
	}
	if len(ps.borderShapes) != 4 {
		t.Fatalf("expected 4 border segments, got %d", len(ps.borderShapes))
	}
	pbFixed, _ := ecs.Get(w, fixed, component.PhysicsBodyComponent.Kind())
	if !pbFixed.Kinematic || !pbFixed.InSpace {
		t.Fatalf("fixed shape should have a kinematic body in the space: %+v", pbFixed)
	}
	pbMov, _ := ecs.Get(w, movable, component.PhysicsBodyComponent.Kind())
	if pbMov.Kinematic || math.Abs(pbMov.Width-64) > 1e-9 {
		t.Fatalf("movable shape should be dynamic with a 64px collider: %+v", pbMov)
	}

	s, _ := ecs.Get(w, fixed, component.ShapeComponent.Kind())
	s.Trigger = true
	tr, _ := ecs.Get(w, fixed, component.TransformComponent.Kind())
	tr.ScaleX, tr.ScaleY = 2, 2
	ps.Update(w)
	pbFixed, _ = ecs.Get(w, fixed, component.PhysicsBodyComponent.Kind())
	if pbFixed.Kinematic || !pbFixed.Shape.Sensor() {
		t.Fatalf("trigger shape should be a dynamic sensor")
	}
	if math.Abs(pbFixed.Width-128) > 1e-9 {
		t.Fatalf("collider should follow scale, width %v", pbFixed.Width)
	}

	sm, _ := ecs.Get(w, movable, component.ShapeComponent.Kind())
	sm.PhysicsEnabled = false
	ps.Update(w)
	if _, ok := ps.entities[movable]; ok {
		t.Fatalf("physics-off shape should leave the space")
	}
	pbMov, _ = ecs.Get(w, movable, component.PhysicsBodyComponent.Kind())
	if pbMov.InSpace || pbMov.Body != nil {
		t.Fatalf("physics body should be cleared: %+v", pbMov)
	}

	w.DestroyEntity(fixed)
	w.DestroyEntity(bounds)
	ps.Update(w)
	if len(ps.entities) != 0 || len(ps.borderShapes) != 0 {
		t.Fatalf("expected an empty space after cleanup")
	}
}

func TestPhysicsStretchedCircleIsEllipse(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(prefabs.DefaultShapeTuning())
	e, err := entity.NewShape(w, entity.ShapeParams{X: 300, Y: 300, ScaleX: 2, ScaleY: 1, ColorIndex: 2, Kind: component.ShapeCircle})
	if err != nil {
		t.Fatalf("new shape: %v", err)
	}

	ps.Update(w)
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if pb == nil || pb.Shape == nil {
		t.Fatalf("expected a collider")
	}
	bb := pb.Shape.BB()
	if bw, bh := bb.R-bb.L, bb.T-bb.B; math.Abs(bw-128) > 1 || math.Abs(bh-64) > 1 {
		t.Fatalf("expected a 128x64 ellipse collider, got %vx%v", bw, bh)
	}
}

func TestPhysicsReportsContacts(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(prefabs.DefaultShapeTuning())
	a := newShape(t, w, 100, 100, 2, true)
	b := newShape(t, w, 130, 100, 3, true)
	newShape(t, w, 600, 100, 2, true)

	ps.Update(w)
	events := w.Events().DrainType(ecs.EventContact)
	if len(events) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(events))
	}
	c := events[0].Data.(ecs.ContactEvent)
	if !(c.A == a && c.B == b) && !(c.A == b && c.B == a) {
		t.Fatalf("unexpected contact pair %v %v", c.A, c.B)
	}
	if c.Sensor {
		t.Fatalf("solid shapes should not report a sensor contact")
	}
}

func TestChildShapesHaveNoBody(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(prefabs.DefaultShapeTuning())
	parent := newShape(t, w, 100, 100, 2, false)
	child := newShape(t, w, 100, 100, 3, true)
	_ = ecs.Add(w, child, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(parent)})

	ps.Update(w)
	if _, ok := ps.entities[child]; ok {
		t.Fatalf("parented shape should not be simulated")
	}
	if _, ok := ps.entities[parent]; !ok {
		t.Fatalf("parent should be simulated")
	}
}

func TestInteractionRoutesTriggerContacts(t *testing.T) {
	h := newHarness(t, "apart", apartDoc("apart"))
	h.tick(1)
	ents := h.shapes()
	a, b := ents[0], ents[1]
	env, _ := h.round.Env(h.w)
	env.StartScaling(a, true)

	h.w.Events().Push(ecs.Event{Type: ecs.EventContact, Data: ecs.ContactEvent{A: b, B: a, Sensor: true}})
	NewInteractionSystem(h.round).Update(h.w)

	sb, _ := ecs.Get(h.w, b, component.ShapeComponent.Kind())
	if sb.Phase != component.PhaseDissolved || sb.PhysicsEnabled {
		t.Fatalf("same-color shape touching a trigger should be absorbed, got %s", sb.Phase)
	}
	ab, _ := ecs.Get(h.w, a, component.AbsorberComponent.Kind())
	if len(ab.Pending) != 1 || ecs.Entity(ab.Pending[0]) != b {
		t.Fatalf("absorber should hold the swept shape: %v", ab.Pending)
	}
}

func TestInteractionRoutesOnContactKind(t *testing.T) {
	tests := []struct {
		name      string
		sensor    bool
		wantPhase component.ScalePhase
	}{
		{name: "solid contact runs the rules", sensor: false, wantPhase: component.PhaseExpanding},
		{name: "stale sensor contact is dropped", sensor: true, wantPhase: component.PhaseIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "apart", apartDoc("apart"))
			h.tick(1)
			ents := h.shapes()
			a, b := ents[0], ents[1]

			h.w.Events().Push(ecs.Event{Type: ecs.EventContact, Data: ecs.ContactEvent{A: a, B: b, Sensor: tt.sensor}})
			NewInteractionSystem(h.round).Update(h.w)

			for _, e := range []ecs.Entity{a, b} {
				s, _ := ecs.Get(h.w, e, component.ShapeComponent.Kind())
				if s.Phase != tt.wantPhase {
					t.Fatalf("expected phase %s, got %s", tt.wantPhase, s.Phase)
				}
			}
		})
	}
}

func TestInteractionWithoutRoundIsNoop(t *testing.T) {
	w := ecs.NewWorld()
	w.Events().Push(ecs.Event{Type: ecs.EventContact, Data: ecs.ContactEvent{A: 1, B: 2}})
	NewInteractionSystem(&Round{}).Update(w)
	if w.Events().Len() != 0 {
		t.Fatalf("contacts should be drained even without a round")
	}
}

func TestDragSystem(t *testing.T) {
	w := ecs.NewWorld()
	round := &Round{Tuning: prefabs.DefaultShapeTuning()}
	ps := NewPhysicsSystem(round.Tuning)
	drag := NewDragSystem(round)
	movable := newShape(t, w, 100, 100, 2, true)
	fixed := newShape(t, w, 300, 100, 2, false)
	ps.Update(w)

	in := &component.DragInput{}
	inputEnt := w.CreateEntity()
	_ = ecs.Add(w, inputEnt, component.DragInputComponent.Kind(), in)

	*in = component.DragInput{X: 300, Y: 100, Pressed: true, Held: true}
	drag.Update(w)
	if ecs.Has(w, fixed, component.DraggingComponent.Kind()) {
		t.Fatalf("fixed shapes cannot be dragged")
	}

	*in = component.DragInput{X: 105, Y: 100, Pressed: true, Held: true}
	drag.Update(w)
	d, ok := ecs.Get(w, movable, component.DraggingComponent.Kind())
	if !ok || math.Abs(d.OffsetX-5) > 1e-9 {
		t.Fatalf("expected movable shape grabbed with offset 5, got %+v", d)
	}

	*in = component.DragInput{X: 205, Y: 100, Held: true}
	drag.Update(w)
	pb, _ := ecs.Get(w, movable, component.PhysicsBodyComponent.Kind())
	want := 100 * round.Tuning.DragSpeed
	if v := pb.Body.Velocity(); math.Abs(v.X-want) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Fatalf("expected velocity (%v, 0), got %v", want, v)
	}

	*in = component.DragInput{X: 205, Y: 100, Released: true}
	drag.Update(w)
	if ecs.Has(w, movable, component.DraggingComponent.Kind()) {
		t.Fatalf("release should drop the shape")
	}
}

func TestHitTest(t *testing.T) {
	rotated := &component.Transform{X: 0, Y: 0, ScaleX: 2, ScaleY: 1, Rotation: math.Pi / 2}
	plain := &component.Transform{X: 0, Y: 0, ScaleX: 1, ScaleY: 1}
	stretched := &component.Transform{X: 0, Y: 0, ScaleX: 2, ScaleY: 1}
	tests := []struct {
		name string
		kind component.ShapeKind
		tr   *component.Transform
		x, y float64
		want bool
	}{
		{name: "square inside", kind: component.ShapeSquare, tr: plain, x: 31, y: -31, want: true},
		{name: "square outside", kind: component.ShapeSquare, tr: plain, x: 33, y: 0, want: false},
		{name: "circle corner", kind: component.ShapeCircle, tr: plain, x: 30, y: 30, want: false},
		{name: "circle edge", kind: component.ShapeCircle, tr: plain, x: 0, y: 31, want: true},
		{name: "stretched circle long axis", kind: component.ShapeCircle, tr: stretched, x: 60, y: 0, want: true},
		{name: "stretched circle short axis", kind: component.ShapeCircle, tr: stretched, x: 0, y: 40, want: false},
		{name: "diamond center", kind: component.ShapeDiamond, tr: plain, x: 10, y: 10, want: true},
		{name: "diamond corner", kind: component.ShapeDiamond, tr: plain, x: 20, y: 20, want: false},
		{name: "rotated long axis", kind: component.ShapeSquare, tr: rotated, x: 0, y: 60, want: true},
		{name: "rotated short axis", kind: component.ShapeSquare, tr: rotated, x: 60, y: 0, want: false},
		{name: "nil transform", kind: component.ShapeSquare, tr: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HitTest(tt.kind, tt.tr, 64, tt.x, tt.y); got != tt.want {
				t.Fatalf("HitTest(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestLevelSystemRequiresStore(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic without a store")
		}
	}()
	NewLevelSystem(&Round{}, LevelConfig{})
}
