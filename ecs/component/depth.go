package component

// Depth orders drawing: larger Z is further back. Live top-level shapes sit
// at 0, children at -1, and removed shapes take positive values handed out
// by the session.
type Depth struct {
	Z int
}

var DepthComponent = NewComponent[Depth]()
