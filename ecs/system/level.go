package system

import (
	"fmt"
	"log"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/ecs/entity"
	"github.com/milk9111/chromashapes/levels"
	"github.com/milk9111/chromashapes/session"
)

// ProgressStore persists which levels have been won.
type ProgressStore interface {
	LoadProgress() (levels.Progress, error)
	SaveProgress(levels.Progress) error
}

type LevelConfig struct {
	Store levels.Store
	// Progress is optional.
	Progress ProgressStore
	Initial  string
	Place    entity.Placement
	Seed     int64
	Sink     session.ResultSink
	// PhysicsReset runs after the old shapes are gone and before the new
	// ones are created.
	PhysicsReset func()
}

// LevelSystem owns level IO and world reinitialization. It performs the
// initial load on its first update and then serves reload and level change
// requests.
type LevelSystem struct {
	cfg         LevelConfig
	round       *Round
	initialized bool
}

func NewLevelSystem(round *Round, cfg LevelConfig) *LevelSystem {
	if round == nil {
		panic("level system: nil round")
	}
	if cfg.Store == nil {
		panic("level system: nil store")
	}
	return &LevelSystem{cfg: cfg, round: round}
}

func (l *LevelSystem) Update(w *ecs.World) {
	if l == nil || w == nil {
		return
	}

	if !l.initialized {
		l.initialized = true
		l.load(w, l.cfg.Initial, nil)
		return
	}

	if _, ok := ecs.First(w, component.ReloadRequestComponent.Kind()); ok {
		ecs.ForEach(w, component.ReloadRequestComponent.Kind(), func(e ecs.Entity, _ *component.ReloadRequest) {
			ecs.DestroyEntity(w, e)
		})
		l.load(w, l.round.Name, l.round.Doc)
		return
	}

	if req, ok := firstLevelChangeRequest(w); ok {
		ecs.ForEach(w, component.LevelChangeRequestComponent.Kind(), func(e ecs.Entity, _ *component.LevelChangeRequest) {
			ecs.DestroyEntity(w, e)
		})
		l.change(w, req)
	}
}

func firstLevelChangeRequest(w *ecs.World) (component.LevelChangeRequest, bool) {
	ent, ok := ecs.First(w, component.LevelChangeRequestComponent.Kind())
	if !ok {
		return component.LevelChangeRequest{}, false
	}
	req, ok := ecs.Get(w, ent, component.LevelChangeRequestComponent.Kind())
	if !ok || req == nil {
		return component.LevelChangeRequest{}, false
	}
	return *req, true
}

func (l *LevelSystem) change(w *ecs.World, req component.LevelChangeRequest) {
	if len(req.Document) > 0 {
		doc, err := levels.Decode(req.Document)
		if err != nil {
			log.Printf("level system: rejected level document: %v", err)
			return
		}
		name := doc.Name
		if name == "" {
			name = "pasted"
		}
		l.load(w, name, doc)
		return
	}

	target := req.TargetLevel
	if target == "" {
		names, err := l.cfg.Store.List()
		if err != nil {
			log.Printf("level system: list levels: %v", err)
			return
		}
		next, ok := levels.Next(names, l.round.Name)
		if !ok {
			if len(names) == 0 {
				return
			}
			next = names[0]
		}
		target = next
	}
	l.load(w, target, nil)
}

// load replaces every shape in w with the level name. A nil doc is read
// from the store; a failed read plays the empty default level.
func (l *LevelSystem) load(w *ecs.World, name string, doc *levels.Document) {
	entity.ClearLevel(w)
	w.Events().Clear()
	if l.cfg.PhysicsReset != nil {
		l.cfg.PhysicsReset()
	}

	if doc == nil {
		doc, _ = levels.LoadOrDefault(l.cfg.Store, name)
	}
	if err := l.build(w, name, doc); err != nil {
		log.Printf("level system: build %s failed, using empty level: %v", name, err)
		entity.ClearLevel(w)
		if err := l.build(w, name, levels.Default()); err != nil {
			panic("level system: empty level failed: " + err.Error())
		}
	}

	loadedEnt, ok := ecs.First(w, component.LevelLoadedComponent.Kind())
	if !ok {
		loadedEnt = ecs.CreateEntity(w)
	}
	_ = ecs.Add(w, loadedEnt, component.LevelLoadedComponent.Kind(), &component.LevelLoaded{
		Sequence: l.round.Sequence,
		Name:     l.round.Name,
	})
	log.Printf("level system: loaded %s (%d shapes)", l.round.Name, len(l.round.Doc.Shapes))
}

func (l *LevelSystem) build(w *ecs.World, name string, doc *levels.Document) error {
	palette, err := doc.Colors()
	if err != nil {
		return err
	}
	seq := l.round.Sequence + 1
	ctrl, err := session.New(session.Config{
		Palette:            palette,
		StartingBackground: doc.StartingBackground,
		GoalBackground:     doc.GoalBackground,
		ShapeCount:         len(doc.Shapes),
		Seed:               l.cfg.Seed + int64(seq),
		Sink:               session.ResultFunc(func(win bool) { l.finish(name, win) }),
	})
	if err != nil {
		return err
	}

	place := l.cfg.Place
	place.BaseSize = l.round.Tuning.BaseSize
	place.Tolerance = l.round.Tuning.AspectTolerance
	loaded, err := entity.LoadLevelToWorld(w, doc, place)
	if err != nil {
		return fmt.Errorf("level system: %w", err)
	}

	l.round.Name = name
	l.round.Doc = doc
	l.round.Session = ctrl
	l.round.Layout = loaded.Layout
	l.round.Sequence = seq
	return nil
}

func (l *LevelSystem) finish(name string, win bool) {
	if win && l.cfg.Progress != nil {
		p, err := l.cfg.Progress.LoadProgress()
		if err != nil {
			log.Printf("level system: load progress: %v", err)
		}
		p.MarkCompleted(name)
		if err := l.cfg.Progress.SaveProgress(p); err != nil {
			log.Printf("level system: save progress: %v", err)
		}
	}
	if l.cfg.Sink != nil {
		l.cfg.Sink.ShowResult(win)
	}
}
