package main

import (
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/chromashapes/assets"
	"github.com/milk9111/chromashapes/common"
	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/ecs/entity"
	"github.com/milk9111/chromashapes/ecs/render"
	"github.com/milk9111/chromashapes/ecs/system"
	"github.com/milk9111/chromashapes/levels"
	"github.com/milk9111/chromashapes/prefabs"
	"github.com/milk9111/chromashapes/session"
)

type GameConfig struct {
	Level   string
	SaveDir string
	Debug   bool
	Seed    int64
}

type Game struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	round     *system.Round
	physics   *system.PhysicsSystem
	renderer  *render.ShapeRenderer
	store     *levels.DirStore
	watcher   *prefabs.Watcher
	debug     bool

	clipboard  bool
	resultUI   *ebitenui.UI
	result     *resultPanel
	showResult bool
	loadedSeq  uint64
}

func NewGame(cfg GameConfig) *Game {
	tuning, err := prefabs.LoadShapeTuning()
	if err != nil {
		log.Printf("game: %v; using default tuning", err)
	}

	store := levels.NewDirStore(cfg.SaveDir)
	initial := cfg.Level
	if initial == "" {
		if names, err := store.List(); err == nil && len(names) > 0 {
			initial = names[0]
		}
	}

	origin, area := coords.PlayArea(common.ScreenWidth, common.ScreenHeight, tuning.BorderPercent)

	g := &Game{
		world:     ecs.NewWorld(),
		round:     &system.Round{Tuning: tuning},
		physics:   system.NewPhysicsSystem(tuning),
		renderer:  render.NewShapeRenderer(),
		store:     store,
		debug:     cfg.Debug,
		clipboard: initClipboard(),
	}
	g.resultUI, g.result = NewResultUI(g)

	levelSystem := system.NewLevelSystem(g.round, system.LevelConfig{
		Store:    store,
		Progress: store,
		Initial:  initial,
		Place:    entity.Placement{Origin: origin, Area: area},
		Seed:     cfg.Seed,
		Sink: session.ResultFunc(func(win bool) {
			g.result.SetOutcome(win)
			g.showResult = true
		}),
		PhysicsReset: g.physics.Reset,
	})

	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(samplePointer),
		levelSystem,
		system.NewDragSystem(g.round),
		g.physics,
		system.NewInteractionSystem(g.round),
		system.NewScaleSystem(g.round),
		system.NewAudioSystem(g.round, assets.NewTonePlayer()),
	)

	g.watcher = startWatcher(cfg.SaveDir)
	return g
}

func startWatcher(saveDir string) *prefabs.Watcher {
	var dirs []string
	for _, dir := range []string{"prefabs", saveDir} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Printf("game: hot reload disabled: %v", err)
		return nil
	}
	return w
}

func samplePointer() component.DragInput {
	x, y := ebiten.CursorPosition()
	return component.DragInput{
		X:        float64(x),
		Y:        float64(y),
		Pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Held:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
}

func (g *Game) Update() error {
	g.pollWatcher()
	g.handleKeys()

	if g.showResult {
		g.resultUI.Update()
	}

	g.scheduler.Update(g.world)

	if g.round.Sequence != g.loadedSeq {
		g.loadedSeq = g.round.Sequence
		g.showResult = false
	}
	return nil
}

func (g *Game) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.requestReload()
	case inpututil.IsKeyJustPressed(ebiten.KeyN) && !ctrl:
		g.requestLevel("")
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyLevel()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.pasteLevel()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.saveLevel()
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.debug = !g.debug
	}
}

func (g *Game) requestReload() {
	e := ecs.CreateEntity(g.world)
	_ = ecs.Add(g.world, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{})
}

func (g *Game) requestLevel(name string) {
	e := ecs.CreateEntity(g.world)
	_ = ecs.Add(g.world, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{TargetLevel: name})
}

// snapshot serializes the shapes still in play.
func (g *Game) snapshot() (*levels.Document, error) {
	return entity.SaveLevelFromWorld(g.world, g.round.Layout, g.round.Tuning.BaseSize, g.round.Doc)
}

func (g *Game) saveLevel() {
	doc, err := g.snapshot()
	if err != nil {
		log.Printf("game: save %s: %v", g.round.Name, err)
		return
	}
	if err := g.store.Save(g.round.Name, doc); err != nil {
		log.Printf("game: save %s: %v", g.round.Name, err)
		return
	}
	log.Printf("game: saved %s to %s", g.round.Name, g.store.Dir)
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.onFileChanged(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) onFileChanged(path string) {
	if prefabs.IsTuningFile(path) {
		tuning, err := prefabs.LoadShapeTuning()
		if err != nil {
			log.Printf("game: reload tuning: %v", err)
			return
		}
		g.round.Tuning = tuning
		g.physics.SetTuning(tuning)
		log.Printf("game: reloaded %s", filepath.Base(path))
		return
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == g.round.Name {
		log.Printf("game: %s changed on disk, reloading", name)
		g.requestLevel(name)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	scene := render.Scene{
		BaseSize:   g.round.Tuning.BaseSize,
		Border:     toNRGBA(g.round.Tuning.Border()),
		Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	if g.round.Session != nil && g.round.Doc != nil {
		scene.Background = g.round.Session.ColorAt(g.round.Doc.StartingBackground)
	}
	g.renderer.Draw(g.world, screen, scene)

	if g.debug {
		render.DrawPhysicsDebug(g.physics.Space(), screen)
		render.DrawRoundDebug(g.world, g.round.Session, g.round.Name, screen)
	}
	if g.showResult {
		g.resultUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.ScreenWidth, common.ScreenHeight
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
