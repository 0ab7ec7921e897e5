package system

import (
	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/levels"
	"github.com/milk9111/chromashapes/prefabs"
	"github.com/milk9111/chromashapes/session"
	"github.com/milk9111/chromashapes/shape"
)

// Round is the level state shared by the gameplay systems. The level system
// replaces its contents on every load; the other systems only read it.
type Round struct {
	Name    string
	Doc     *levels.Document
	Session *session.Controller
	Layout  coords.Layout
	Tuning  prefabs.ShapeTuning
	// Sequence counts loads, starting at 1 for the first level.
	Sequence uint64
}

// Env returns the shape environment for w, or false before a level has been
// loaded.
func (r *Round) Env(w *ecs.World) (shape.Env, bool) {
	if r == nil || r.Session == nil || w == nil {
		return shape.Env{}, false
	}
	return shape.Env{World: w, Session: r.Session, Tuning: r.Tuning}, true
}
