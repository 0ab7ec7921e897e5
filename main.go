package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/chromashapes/common"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "", "level name (basename, .json optional); defaults to the first level")
	saveDir := flag.String("save-dir", "levels", "directory for edited levels and progress")
	seed := flag.Int64("seed", 0, "sound jitter seed (0 uses the clock)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.ScreenWidth, common.ScreenHeight)
	ebiten.SetWindowTitle("chromashapes")
	ebiten.SetTPS(common.TPS)

	game := NewGame(GameConfig{
		Level:   *levelName,
		SaveDir: *saveDir,
		Debug:   *debug,
		Seed:    *seed,
	})
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
