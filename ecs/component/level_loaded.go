package component

// LevelLoaded is kept on a singleton entity and updated by the level system
// after every load so outer layers can reset per-level UI.
type LevelLoaded struct {
	Sequence uint64
	Name     string
}

var LevelLoadedComponent = NewComponent[LevelLoaded]()
