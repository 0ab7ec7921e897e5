package component

// LevelChangeRequest is a one-shot request to load a different level.
// Document, when set, holds an encoded level to play directly (a pasted
// level); otherwise TargetLevel names a stored level and an empty
// TargetLevel advances to the next level of the pack.
//
// This keeps systems independent: systems only emit data; the level system
// owns IO/world reinitialization.
type LevelChangeRequest struct {
	TargetLevel string
	Document    []byte
}

var LevelChangeRequestComponent = NewComponent[LevelChangeRequest]()
