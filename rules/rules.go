// Package rules decides what happens when two shapes touch.
//
// The rules are evaluated in order and the first terminal rule wins: a
// black shape dissolves anything it touches, a white shape takes the color
// of its partner, and two shapes of the same color grow into each other.
// Everything else bounces off under normal physics.
package rules

// Reserved color indices.
const (
	White = 0
	Black = 1
)

// Participant is the slice of shape state the resolver needs.
type Participant struct {
	ColorIndex int
	Movable    bool
	Scaling    bool
}

// Action is the scaling transition applied to both participants.
type Action int

const (
	ActionNone Action = iota
	ActionShrink
	ActionExpand
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionShrink:
		return "shrink"
	case ActionExpand:
		return "expand"
	default:
		return "unknown"
	}
}

// Outcome is the decision for one contact. RepaintA means A takes B's
// color index and render color; RepaintB the reverse.
type Outcome struct {
	Action   Action
	RepaintA bool
	RepaintB bool
	Rule     string
}

// Colors returns the color indices of A and B after the repaints apply.
func (o Outcome) Colors(a, b Participant) (int, int) {
	ca, cb := a.ColorIndex, b.ColorIndex
	if o.RepaintA {
		ca = b.ColorIndex
	}
	if o.RepaintB {
		cb = a.ColorIndex
	}
	return ca, cb
}

type rule struct {
	name string
	// apply inspects the contact and may update out. It returns true when
	// evaluation must stop.
	apply func(a, b Participant, out *Outcome) bool
}

// table is ordered: the black check must precede the white repaint so a
// white-black contact annihilates instead of repainting.
var table = []rule{
	{name: "scaling", apply: func(a, b Participant, out *Outcome) bool {
		return a.Scaling || b.Scaling
	}},
	{name: "black", apply: func(a, b Participant, out *Outcome) bool {
		if a.ColorIndex != Black && b.ColorIndex != Black {
			return false
		}
		out.Action = ActionShrink
		return true
	}},
	{name: "white", apply: func(a, b Participant, out *Outcome) bool {
		if b.ColorIndex == White && a.ColorIndex != White {
			out.RepaintB = true
		}
		if a.ColorIndex == White && b.ColorIndex != White {
			out.RepaintA = true
		}
		return false
	}},
	{name: "match", apply: func(a, b Participant, out *Outcome) bool {
		ca, cb := out.Colors(a, b)
		if ca == cb {
			out.Action = ActionExpand
		}
		return true
	}},
}

// Resolve evaluates the rule table for a contact between a and b.
func Resolve(a, b Participant) Outcome {
	var out Outcome
	for _, r := range table {
		out.Rule = r.name
		if r.apply(a, b, &out) {
			break
		}
	}
	if out.Action == ActionNone && !out.RepaintA && !out.RepaintB {
		out.Rule = "none"
	}
	return out
}

// Absorbs reports whether a growing shape of color absorber sweeps up a
// shape it overlaps. Only idle shapes of the same color are absorbed.
func Absorbs(absorber int, other Participant) bool {
	return !other.Scaling && other.ColorIndex == absorber
}
