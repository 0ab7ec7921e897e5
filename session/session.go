// Package session owns the round state of a level: the depth counter, the
// current background color, and the end-of-round decision.
package session

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math/rand"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

var ErrInvalidConfig = errors.New("session: invalid configuration")

// ResultSink displays the outcome of a round.
type ResultSink interface {
	ShowResult(win bool)
}

// ResultFunc adapts a function to ResultSink.
type ResultFunc func(win bool)

func (f ResultFunc) ShowResult(win bool) { f(win) }

type Config struct {
	Palette            []color.NRGBA
	StartingBackground int
	GoalBackground     int
	// ShapeCount is the number of shapes the level starts with. Depths are
	// handed out from three times this value downwards.
	ShapeCount int
	Seed       int64
	Sink       ResultSink
}

type Controller struct {
	palette    []color.NRGBA
	goal       int
	background int
	zIndex     int
	ended      bool
	won        bool
	sink       ResultSink
	rng        *rand.Rand
}

func New(cfg Config) (*Controller, error) {
	if len(cfg.Palette) < 2 {
		return nil, fmt.Errorf("%w: palette needs white and black, got %d colors", ErrInvalidConfig, len(cfg.Palette))
	}
	if cfg.StartingBackground < 0 || cfg.StartingBackground >= len(cfg.Palette) {
		return nil, fmt.Errorf("%w: starting background %d outside palette", ErrInvalidConfig, cfg.StartingBackground)
	}
	if cfg.GoalBackground < 0 || cfg.GoalBackground >= len(cfg.Palette) {
		return nil, fmt.Errorf("%w: goal background %d outside palette", ErrInvalidConfig, cfg.GoalBackground)
	}
	if cfg.ShapeCount < 0 {
		return nil, fmt.Errorf("%w: negative shape count %d", ErrInvalidConfig, cfg.ShapeCount)
	}
	palette := make([]color.NRGBA, len(cfg.Palette))
	copy(palette, cfg.Palette)
	return &Controller{
		palette:    palette,
		goal:       cfg.GoalBackground,
		background: cfg.StartingBackground,
		zIndex:     cfg.ShapeCount * 3,
		sink:       cfg.Sink,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// AssignZIndex returns the next depth, strictly lower than the previous one,
// and makes colorIndex the current background.
func (c *Controller) AssignZIndex(colorIndex int, _ ecs.Entity) int {
	c.mustBeColor(colorIndex)
	z := c.zIndex
	c.zIndex--
	c.background = colorIndex
	return z
}

func (c *Controller) Background() int { return c.background }

func (c *Controller) Goal() int { return c.goal }

func (c *Controller) Ended() bool { return c.ended }

func (c *Controller) Won() bool { return c.won }

// Rand is the session's random source.
func (c *Controller) Rand() *rand.Rand { return c.rng }

func (c *Controller) ColorAt(index int) color.NRGBA {
	c.mustBeColor(index)
	return c.palette[index]
}

func (c *Controller) mustBeColor(index int) {
	if index < 0 || index >= len(c.palette) {
		panic(fmt.Sprintf("session: color index %d outside palette of %d", index, len(c.palette)))
	}
}

// EvaluateEndCondition decides whether the round is over. The trigger is
// the shape whose transition just finished and is left out of the scan. It
// does nothing once the round has ended or while any shape is still
// scaling. Otherwise the live shapes are scanned for pairs that will still
// react; if none remain the round ends, won only when every shape is gone
// and the background matches the goal.
func (c *Controller) EvaluateEndCondition(w *ecs.World, trigger ecs.Entity) {
	if w == nil {
		panic("session: evaluate end condition without a world")
	}
	if c.ended {
		return
	}

	kind := component.ShapeComponent.Kind()
	entities := w.Query(kind)
	for _, e := range entities {
		if e == trigger {
			continue
		}
		if s, ok := ecs.Get(w, e, kind); ok && s.IsExpanding() {
			return
		}
	}

	// Movable shapes take the positive bucket of their color, fixed shapes
	// the negative one. Colors are offset by one so white has a sign.
	buckets := make(map[int]ecs.Entity)
	live, movable := 0, 0
	whiteOrBlack := false
	for _, e := range entities {
		if e == trigger {
			continue
		}
		s, _ := ecs.Get(w, e, kind)
		if s == nil || !s.PhysicsEnabled || s.Phase == component.PhaseDissolved {
			continue
		}
		live++
		if s.ColorIndex == component.WhiteIndex || s.ColorIndex == component.BlackIndex {
			whiteOrBlack = true
		}
		key := s.ColorIndex + 1
		if s.Movable {
			movable++
			if other, ok := buckets[key]; ok && other != e {
				return
			}
			if other, ok := buckets[-key]; ok && other != e {
				return
			}
			buckets[key] = e
			continue
		}
		if other, ok := buckets[key]; ok && other != e {
			return
		}
		buckets[-key] = e
	}

	// A white or black shape the player can still move may yet clear the
	// board.
	if live > 1 && whiteOrBlack && movable > 0 {
		return
	}

	c.ended = true
	c.won = live == 0 && c.background == c.goal
	log.Printf("session: round ended won=%v live=%d background=%d goal=%d trigger=%v", c.won, live, c.background, c.goal, trigger)
	w.Events().Push(ecs.Event{Type: ecs.EventRoundEnded, Data: ecs.RoundEndedEvent{Won: c.won}})
	if c.sink != nil {
		c.sink.ShowResult(c.won)
	}
}
