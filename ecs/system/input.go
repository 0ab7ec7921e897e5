package system

import (
	"github.com/milk9111/chromashapes/ecs"
	"github.com/milk9111/chromashapes/ecs/component"
)

// PointerSampler reads the pointer state for the current tick.
type PointerSampler func() component.DragInput

// InputSystem copies the sampled pointer into the DragInput singleton,
// creating it on first use.
type InputSystem struct {
	sample PointerSampler
}

func NewInputSystem(sample PointerSampler) *InputSystem {
	return &InputSystem{sample: sample}
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil || i.sample == nil {
		return
	}
	state := i.sample()

	e, ok := w.First(component.DragInputComponent.Kind())
	if !ok {
		e = w.CreateEntity()
	}
	_ = ecs.Add(w, e, component.DragInputComponent.Kind(), &state)
}
