package system

import (
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/prefabs"
)

// CuePlayer plays a sound cue at a pitch multiplier.
type CuePlayer interface {
	PlayCue(spec prefabs.AudioSpec, pitch float64)
}

// AudioSystem turns scaling and round events into sound cues. Each cue
// plays at most once per tick.
type AudioSystem struct {
	round  *Round
	player CuePlayer
}

func NewAudioSystem(round *Round, player CuePlayer) *AudioSystem {
	return &AudioSystem{round: round, player: player}
}

func (a *AudioSystem) Update(w *ecs.World) {
	if a == nil || w == nil {
		return
	}
	var cues []string
	for _, evt := range w.Events().DrainType(ecs.EventShapeScaling) {
		if ev, ok := evt.Data.(ecs.ScalingEvent); ok {
			if ev.Growing {
				cues = append(cues, "expand")
			} else {
				cues = append(cues, "shrink")
			}
		}
	}
	for _, evt := range w.Events().DrainType(ecs.EventRoundEnded) {
		if ev, ok := evt.Data.(ecs.RoundEndedEvent); ok {
			if ev.Won {
				cues = append(cues, "win")
			} else {
				cues = append(cues, "lose")
			}
		}
	}
	if a.player == nil || a.round == nil || len(cues) == 0 {
		return
	}

	played := make(map[string]bool, len(cues))
	for _, name := range cues {
		if played[name] {
			continue
		}
		played[name] = true
		spec, ok := a.round.Tuning.Sound(name)
		if !ok {
			continue
		}
		a.player.PlayCue(spec, a.pitch(spec))
	}
}

func (a *AudioSystem) pitch(spec prefabs.AudioSpec) float64 {
	if spec.Jitter <= 0 || a.round.Session == nil {
		return 1
	}
	return 1 + (a.round.Session.Rand().Float64()*2-1)*spec.Jitter
}
