package entity

import (
	"fmt"

	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/levels"
	"github.com/milk9111/chromashapes/shape"
)

// Placement is the screen region a level is loaded into.
type Placement struct {
	Origin    coords.Vec2
	Area      coords.Size
	BaseSize  float64
	Tolerance float64
}

// LoadedLevel is the result of building a document into the world.
// Shapes[i] is the entity created for doc.Shapes[i].
type LoadedLevel struct {
	Shapes []ecs.Entity
	Layout coords.Layout
}

// LoadLevelToWorld creates one entity per shape record, then attaches
// children to their parents. Records hold world-space values, so attaching
// keeps every shape where the document put it.
func LoadLevelToWorld(world *ecs.World, doc *levels.Document, place Placement) (LoadedLevel, error) {
	var out LoadedLevel
	if err := levels.Validate(doc); err != nil {
		return out, err
	}
	if place.BaseSize <= 0 {
		return out, fmt.Errorf("entity: load level: base size must be positive")
	}
	palette, err := doc.Colors()
	if err != nil {
		return out, err
	}

	saved := coords.Size{W: doc.PlayArea.W, H: doc.PlayArea.H}
	out.Layout = coords.Fit(saved, place.Origin, place.Area, place.Tolerance)

	if boundsEntity := world.CreateEntity(); boundsEntity.Valid() {
		if err := ecs.Add(world, boundsEntity, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
			X:      place.Origin.X,
			Y:      place.Origin.Y,
			Width:  place.Area.W,
			Height: place.Area.H,
		}); err != nil {
			return out, err
		}
	}

	out.Shapes = make([]ecs.Entity, len(doc.Shapes))
	for i, rec := range doc.Shapes {
		pos, size := out.Layout.Denormalize(
			coords.Vec2{X: rec.Position.X, Y: rec.Position.Y},
			coords.Vec2{X: rec.Scale.X, Y: rec.Scale.Y},
		)
		e, err := NewShape(world, ShapeParams{
			X:          pos.X,
			Y:          pos.Y,
			ScaleX:     size.X / place.BaseSize,
			ScaleY:     size.Y / place.BaseSize,
			Rotation:   rec.Rotation,
			ColorIndex: rec.ColorIndex,
			Color:      palette[rec.ColorIndex],
			Kind:       component.ShapeKind(rec.Kind),
			Movable:    rec.Movable,
		})
		if err != nil {
			return out, fmt.Errorf("entity: shape %d: %w", i, err)
		}
		out.Shapes[i] = e
	}

	// Parents are attached before their children so nested shapes compose
	// against final parent transforms.
	for _, i := range attachOrder(doc) {
		p := doc.Shapes[i].Parent
		shape.Attach(world, out.Shapes[i], out.Shapes[*p])
	}
	return out, nil
}

// SaveLevelFromWorld writes every shape that is still in play into a
// document. Ids are assigned densely in entity order. Palette, background
// and goal come from meta.
func SaveLevelFromWorld(world *ecs.World, layout coords.Layout, baseSize float64, meta *levels.Document) (*levels.Document, error) {
	if meta == nil {
		return nil, fmt.Errorf("entity: save level: nil metadata")
	}
	if !layout.Area.Valid() {
		return nil, fmt.Errorf("entity: save level: empty play area")
	}
	doc := &levels.Document{
		Name:               meta.Name,
		Palette:            append([]string(nil), meta.Palette...),
		StartingBackground: meta.StartingBackground,
		GoalBackground:     meta.GoalBackground,
		PlayArea:           levels.Size{W: layout.Area.W, H: layout.Area.H},
	}

	kind := component.ShapeComponent.Kind()
	ids := make(map[ecs.Entity]int)
	var order []ecs.Entity
	for _, e := range world.Query(kind, component.TransformComponent.Kind()) {
		s, _ := ecs.Get(world, e, kind)
		if s.Phase != component.PhaseIdle {
			continue
		}
		ids[e] = len(order)
		order = append(order, e)
	}

	for _, e := range order {
		s, _ := ecs.Get(world, e, kind)
		t := shape.WorldTransform(world, e)
		pos, size := layout.Normalize(
			coords.Vec2{X: t.X, Y: t.Y},
			coords.Vec2{X: t.ScaleX * baseSize, Y: t.ScaleY * baseSize},
		)
		rec := levels.ShapeRecord{
			Position:   levels.Vec2{X: pos.X, Y: pos.Y},
			Scale:      levels.Vec2{X: size.X, Y: size.Y},
			Rotation:   t.Rotation,
			ColorIndex: s.ColorIndex,
			Kind:       int(s.Kind),
			Movable:    s.Movable,
		}
		if parent, ok := shape.ParentOf(world, e); ok {
			if id, saved := ids[parent]; saved {
				rec.Parent = &id
			}
		}
		doc.Shapes = append(doc.Shapes, rec)
	}

	if err := levels.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// attachOrder lists parented records so that every parent precedes its
// children. The document has already been checked for cycles.
func attachOrder(doc *levels.Document) []int {
	depth := func(i int) int {
		d := 0
		for p := doc.Shapes[i].Parent; p != nil; p = doc.Shapes[*p].Parent {
			d++
		}
		return d
	}
	var order []int
	for d := 1; ; d++ {
		found := false
		for i := range doc.Shapes {
			if depth(i) == d {
				order = append(order, i)
				found = true
			}
		}
		if !found {
			return order
		}
	}
}
