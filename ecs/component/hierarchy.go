package component

// Parent links a child shape to its owner (ecs.Entity is uint64).
type Parent struct {
	Entity uint64
}

var ParentComponent = NewComponent[Parent]()

// Children lists the direct child shapes of an entity in attach order.
type Children struct {
	Entities []uint64
}

var ChildrenComponent = NewComponent[Children]()
