package component

// DragInput is the pointer state sampled by the game loop each tick.
type DragInput struct {
	X        float64
	Y        float64
	Pressed  bool
	Held     bool
	Released bool
}

var DragInputComponent = NewComponent[DragInput]()

// Dragging marks the shape currently held by the pointer.
type Dragging struct {
	OffsetX float64
	OffsetY float64
}

var DraggingComponent = NewComponent[Dragging]()
