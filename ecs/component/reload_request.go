package component

// ReloadRequest is a marker component used to signal the level system to
// rebuild the current level from its document. Systems may create a
// short-lived entity with this component to request a reload.
type ReloadRequest struct{}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
