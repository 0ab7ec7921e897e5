package system

import (
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

// InteractionSystem turns the contacts captured by the physics step into
// shape transitions. Sensor contacts feed the absorber of whichever side
// is still a trigger; solid contacts go through the interaction rules.
type InteractionSystem struct {
	round *Round
}

func NewInteractionSystem(round *Round) *InteractionSystem {
	return &InteractionSystem{round: round}
}

func (s *InteractionSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	events := w.Events().DrainType(ecs.EventContact)
	env, ok := s.round.Env(w)
	if !ok {
		return
	}

	for _, evt := range events {
		c, ok := evt.Data.(ecs.ContactEvent)
		if !ok {
			continue
		}
		sa, okA := ecs.Get(w, c.A, component.ShapeComponent.Kind())
		sb, okB := ecs.Get(w, c.B, component.ShapeComponent.Kind())
		if !okA || !okB {
			continue
		}

		if c.Sensor {
			if sa.Trigger {
				env.AbsorbContact(c.A, c.B)
			}
			if sb.Trigger {
				env.AbsorbContact(c.B, c.A)
			}
			continue
		}
		env.Interact(c.A, c.B)
	}
}
