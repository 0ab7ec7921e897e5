// Package render draws the shape world with ebiten.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/chromashapes/coords"
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
	"github.com/milk9111/chromashapes/shape"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Scene is what a frame needs besides the world.
type Scene struct {
	BaseSize   float64
	Border     color.NRGBA
	Background color.NRGBA
}

type ShapeRenderer struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

func NewShapeRenderer() *ShapeRenderer {
	return &ShapeRenderer{}
}

// Draw fills the border and play area, then every visible shape back to
// front.
func (r *ShapeRenderer) Draw(w *ecs.World, screen *ebiten.Image, scene Scene) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(scene.Border)

	if boundsEnt, ok := w.First(component.LevelBoundsComponent.Kind()); ok {
		b, _ := ecs.Get(w, boundsEnt, component.LevelBoundsComponent.Kind())
		vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), scene.Background, false)
	} else {
		screen.Fill(scene.Background)
	}

	for _, e := range shape.DrawOrder(w) {
		s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
		t := shape.WorldTransform(w, e)
		r.drawShape(screen, s.Kind, t, scene.BaseSize, s.Color)
	}
}

func (r *ShapeRenderer) drawShape(screen *ebiten.Image, kind component.ShapeKind, t component.Transform, baseSize float64, clr color.NRGBA) {
	hw := math.Abs(t.ScaleX) * baseSize / 2
	hh := math.Abs(t.ScaleY) * baseSize / 2
	if hw <= 0 || hh <= 0 {
		return
	}
	r.fillPolygon(screen, t, clr, shape.Outline(kind, hw, hh))
}

// fillPolygon draws a convex outline given in local coordinates around t as
// a triangle fan.
func (r *ShapeRenderer) fillPolygon(screen *ebiten.Image, t component.Transform, clr color.NRGBA, outline []coords.Vec2) {
	if len(outline) < 3 {
		return
	}
	sin, cos := math.Sincos(t.Rotation)
	cr := float32(clr.R) / 255
	cg := float32(clr.G) / 255
	cb := float32(clr.B) / 255
	ca := float32(clr.A) / 255

	r.vertices = r.vertices[:0]
	for _, p := range outline {
		x := t.X + p.X*cos - p.Y*sin
		y := t.Y + p.X*sin + p.Y*cos
		r.vertices = append(r.vertices, ebiten.Vertex{
			DstX:   float32(x),
			DstY:   float32(y),
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	r.indices = r.indices[:0]
	for i := 1; i+1 < len(outline); i++ {
		r.indices = append(r.indices, 0, uint16(i), uint16(i+1))
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(r.vertices, r.indices, whiteSubImage, op)
}
