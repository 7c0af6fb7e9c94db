package sensor

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/alarm-panel/internal/log"
	"github.com/sweeney/alarm-panel/internal/metrics"
)

// Thresholds for the ultrasonic alert gate. The latch engages below
// BreachCm and releases above ClearCm; the 2 cm gap keeps the gate from
// chattering when an object sits right on the boundary.
const (
	BreachCm = 10.0
	ClearCm  = 12.0
)

const (
	// minMeasureInterval limits how often the ranger fires. Echoes from
	// one HC-SR04 ping bleed into the next below ~60 ms; a poll that
	// arrives too soon skips the measurement and leaves the gate alone.
	minMeasureInterval = 60 * time.Millisecond

	// minBreachInterval is the minimum spacing between emitted breach
	// events. A latch transition inside the window is suppressed, not
	// deferred.
	minBreachInterval = time.Second
)

// Bus turns raw detector reads into semantic events. It owns all
// cross-poll sensor state (door edge latch, alert gate, measurement
// clock) and must only be polled from the control loop goroutine.
//
// Read faults degrade: a failing channel reads as inactive (or as
// "no object" for the ranger), is counted, and recovers silently when
// the hardware does.
type Bus struct {
	inputs Inputs
	ranger Ranger

	lastDoorOpen bool

	inAlertZone bool
	lastBreach  time.Time
	lastMeasure time.Time

	outerFault bool
	innerFault bool
	doorFault  bool
	rangeFault bool

	logger zerolog.Logger
}

// NewBus creates a Bus over the given detectors.
func NewBus(inputs Inputs, ranger Ranger) *Bus {
	return &Bus{
		inputs: inputs,
		ranger: ranger,
		logger: log.WithComponent("sensor"),
	}
}

// Poll samples every channel once and returns the resulting events, at
// most one per channel. Motion channels are level-triggered: an active
// PIR produces an event on every poll. The door channel is
// edge-triggered against the latched previous reading. The ultrasonic
// channel only runs when proximity is true and the measurement rate
// limit allows it.
func (b *Bus) Poll(now time.Time, proximity bool) []Event {
	var events []Event

	if outer, ok := b.readLevel("motion_outer", &b.outerFault, b.inputs.MotionOuter); ok && outer {
		events = append(events, Event{Time: now, Type: EventMotionOuter})
	}
	if inner, ok := b.readLevel("motion_inner", &b.innerFault, b.inputs.MotionInner); ok && inner {
		events = append(events, Event{Time: now, Type: EventMotionInner})
	}

	// A faulted door read skips edge detection entirely so the latch
	// still holds the last trusted reading when the channel recovers.
	if open, ok := b.readLevel("door", &b.doorFault, b.inputs.DoorOpen); ok && open != b.lastDoorOpen {
		b.lastDoorOpen = open
		if open {
			events = append(events, Event{Time: now, Type: EventDoorOpened})
		} else {
			events = append(events, Event{Time: now, Type: EventDoorClosed})
		}
	}

	if proximity {
		if ev := b.pollRange(now); ev != nil {
			events = append(events, *ev)
		}
	}

	return events
}

// readLevel reads one binary channel, tracking its fault state so each
// outage is logged once on entry and once on recovery.
func (b *Bus) readLevel(channel string, fault *bool, read func() (bool, error)) (bool, bool) {
	v, err := read()
	if err != nil {
		if !*fault {
			*fault = true
			b.logger.Warn().Err(err).Str("channel", channel).Msg("sensor read failed, channel degraded")
		}
		metrics.IncSensorFault(channel)
		return false, false
	}
	if *fault {
		*fault = false
		b.logger.Info().Str("channel", channel).Msg("sensor channel recovered")
	}
	return v, true
}

// pollRange runs one gated ultrasonic measurement and applies the alert
// latch. Returns nil when rate-limited or when the latch does not
// transition.
func (b *Bus) pollRange(now time.Time) *Event {
	if !b.lastMeasure.IsZero() && now.Sub(b.lastMeasure) < minMeasureInterval {
		return nil
	}
	b.lastMeasure = now

	distance, err := b.ranger.MeasureDistance()
	switch {
	case err != nil:
		if !b.rangeFault {
			b.rangeFault = true
			b.logger.Warn().Err(err).Str("channel", "range").Msg("sensor read failed, channel degraded")
		}
		metrics.IncSensorFault("range")
		distance = MaxRangeCm
	default:
		if b.rangeFault {
			b.rangeFault = false
			b.logger.Info().Str("channel", "range").Msg("sensor channel recovered")
		}
		if distance < MinRangeCm || distance > MaxRangeCm {
			distance = MaxRangeCm
		}
	}

	switch {
	case !b.inAlertZone && distance < BreachCm:
		b.inAlertZone = true
		if !b.lastBreach.IsZero() && now.Sub(b.lastBreach) < minBreachInterval {
			return nil
		}
		b.lastBreach = now
		return &Event{Time: now, Type: EventProximityBreach, DistanceCm: distance}
	case b.inAlertZone && distance > ClearCm:
		b.inAlertZone = false
		return &Event{Time: now, Type: EventProximityClear, DistanceCm: distance}
	}
	return nil
}

// InAlertZone reports whether the ultrasonic latch is currently engaged.
func (b *Bus) InAlertZone() bool {
	return b.inAlertZone
}

// Close releases both detector handles.
func (b *Bus) Close() error {
	err := b.inputs.Close()
	if rerr := b.ranger.Close(); err == nil {
		err = rerr
	}
	return err
}
