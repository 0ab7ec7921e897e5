package component

// Absorber collects same-color shapes swept up by a growing shape. They are
// hidden once the absorber's animation completes.
type Absorber struct {
	Pending []uint64
}

var AbsorberComponent = NewComponent[Absorber]()
