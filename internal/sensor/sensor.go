// Package sensor normalizes raw detector reads into semantic events.
//
// The Bus owns the door edge latch and the ultrasonic alert gate. It is
// polled from the control loop and emits at most one event per channel
// per poll; the state machine decides what each event means in the
// current arm state.
package sensor

import "time"

// EventType identifies the sensor channel transition carried by an Event.
type EventType string

const (
	EventMotionOuter     EventType = "motion_outer"
	EventMotionInner     EventType = "motion_inner"
	EventDoorOpened      EventType = "door_opened"
	EventDoorClosed      EventType = "door_closed"
	EventProximityBreach EventType = "proximity_breach"
	EventProximityClear  EventType = "proximity_clear"
)

// Event is a single semantic sensor reading produced by the Bus.
type Event struct {
	Time time.Time
	Type EventType

	// DistanceCm carries the measured range for proximity events.
	DistanceCm float64
}

// Physical range of the ultrasonic ranger. Readings outside this window
// count as "no object" and are reported as MaxRangeCm.
const (
	MinRangeCm = 2.0
	MaxRangeCm = 400.0
)

// Inputs reads the binary detectors attached to the panel.
type Inputs interface {
	// MotionOuter reports whether the external PIR sees movement.
	MotionOuter() (bool, error)

	// MotionInner reports whether the internal PIR sees movement.
	MotionInner() (bool, error)

	// DoorOpen reports whether the door contact is open.
	DoorOpen() (bool, error)

	// Close releases the underlying hardware.
	Close() error
}

// Ranger measures the distance to the nearest object in centimetres.
type Ranger interface {
	// MeasureDistance fires one measurement and returns the range.
	// A measurement that times out or falls outside [MinRangeCm,
	// MaxRangeCm] is returned as MaxRangeCm, not as an error; errors
	// are reserved for hardware access failures.
	MeasureDistance() (float64, error)

	// Close releases the underlying hardware.
	Close() error
}
