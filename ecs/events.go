package ecs

// EventType identifies an event payload.
type EventType string

const (
	// EventContact carries a ContactEvent captured during the physics step.
	EventContact EventType = "contact"
	// EventShapeScaling carries a ScalingEvent when a shape starts to grow or shrink.
	EventShapeScaling EventType = "shape_scaling"
	// EventRoundEnded carries a RoundEndedEvent once the session latches.
	EventRoundEnded EventType = "round_ended"
)

// Event is a generic ECS event payload.
type Event struct {
	Type EventType
	Data any
}

// ContactEvent is a begin-contact between two shapes. Sensor is true when
// either side was in trigger mode.
type ContactEvent struct {
	A      Entity
	B      Entity
	Sensor bool
}

// ScalingEvent reports a shape entering its grow or shrink animation.
type ScalingEvent struct {
	Entity  Entity
	Growing bool
}

// RoundEndedEvent reports the latched outcome of a round.
type RoundEndedEvent struct {
	Won bool
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// DrainType removes and returns the events of type t, keeping the rest in order.
func (q *EventQueue) DrainType(t EventType) []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	var out []Event
	kept := q.items[:0]
	for _, evt := range q.items {
		if evt.Type == t {
			out = append(out, evt)
			continue
		}
		kept = append(kept, evt)
	}
	q.items = kept
	return out
}

// Len reports the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Clear drops every queued event.
func (q *EventQueue) Clear() {
	if q == nil {
		return
	}
	q.items = nil
}
