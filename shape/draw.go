package shape

import (
	"sort"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

// DrawOrder returns the visible shapes from back to front: larger depth
// first, then parents before their descendants, then creation order.
func DrawOrder(w *ecs.World) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range w.Query(component.ShapeComponent.Kind(), component.TransformComponent.Kind()) {
		s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
		if s.Visible && s.Color.A > 0 {
			out = append(out, e)
		}
	}

	depth := make(map[ecs.Entity]int, len(out))
	level := make(map[ecs.Entity]int, len(out))
	for _, e := range out {
		if d, ok := ecs.Get(w, e, component.DepthComponent.Kind()); ok {
			depth[e] = d.Z
		}
		level[e] = ancestors(w, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if depth[a] != depth[b] {
			return depth[a] > depth[b]
		}
		if level[a] != level[b] {
			return level[a] < level[b]
		}
		return a < b
	})
	return out
}

func ancestors(w *ecs.World, e ecs.Entity) int {
	n := 0
	for {
		p, ok := ParentOf(w, e)
		if !ok {
			return n
		}
		n++
		e = p
	}
}
