package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data for a shape. Width and Height
// record the world size the collider was built with so the physics system
// can rebuild it when the transform scale changes.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Width      float64
	Height     float64
	Kind       ShapeKind
	Kinematic  bool
	InSpace    bool
	Friction   float64
	Elasticity float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
