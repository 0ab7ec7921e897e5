package common

const (
	// TPS is the fixed simulation rate.
	TPS = 60
	// FixedDelta is the simulated seconds per tick.
	FixedDelta = 1.0 / TPS

	ScreenWidth  = 1152
	ScreenHeight = 648
)
