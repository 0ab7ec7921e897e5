package component

// ScaleAnimation interpolates a shape's scale from Start to End over
// Duration seconds. The first tick only arms the animation so the frame that
// started it renders the untouched scale.
type ScaleAnimation struct {
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	Elapsed  float64
	Duration float64
	Growing  bool
	Armed    bool
}

// Done reports whether the animation has run its full duration.
func (a *ScaleAnimation) Done() bool {
	return a.Armed && a.Elapsed >= a.Duration
}

var ScaleAnimationComponent = NewComponent[ScaleAnimation]()
