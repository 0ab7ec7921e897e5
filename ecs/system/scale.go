package system

import (
	"github.com/milk9111/chromashapes/common"
	"github.com/milk9111/chromashapes/ecs"
)

// ScaleSystem advances grow and shrink animations by one fixed tick.
type ScaleSystem struct {
	round *Round
}

func NewScaleSystem(round *Round) *ScaleSystem {
	return &ScaleSystem{round: round}
}

func (s *ScaleSystem) Update(w *ecs.World) {
	if s == nil {
		return
	}
	env, ok := s.round.Env(w)
	if !ok {
		return
	}
	env.TickScaling(common.FixedDelta)
}
