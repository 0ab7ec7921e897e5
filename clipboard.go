package main

import (
	"log"

	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/levels"
	"golang.design/x/clipboard"
)

func initClipboard() bool {
	if err := clipboard.Init(); err != nil {
		log.Printf("game: clipboard unavailable: %v", err)
		return false
	}
	return true
}

// copyLevel puts the current layout on the clipboard as a level document.
func (g *Game) copyLevel() {
	if !g.clipboard {
		return
	}
	doc, err := g.snapshot()
	if err != nil {
		log.Printf("game: copy level: %v", err)
		return
	}
	data, err := levels.Encode(doc)
	if err != nil {
		log.Printf("game: copy level: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("game: copied %s (%d shapes)", doc.Name, len(doc.Shapes))
}

// pasteLevel plays the level document on the clipboard. The level system
// rejects anything that does not decode.
func (g *Game) pasteLevel() {
	if !g.clipboard {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	e := ecs.CreateEntity(g.world)
	_ = ecs.Add(g.world, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{Document: data})
}
