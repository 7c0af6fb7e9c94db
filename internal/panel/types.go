// Package panel implements the security state machine at the heart of
// the alarm controller.
//
// One Machine owns the arm state, the code entry context and the entry
// delay. The control loop feeds it keypad keys, sensor events and
// ticks; every call returns the panel events the input produced so the
// loop can fan them out to MQTT, the status tracker and metrics. Hard
// state transitions drive the display, tone, LED and event log
// capabilities directly, mirroring the single-threaded panel firmware
// this daemon replaces.
package panel

import "time"

// ArmState is the panel's top-level security state.
type ArmState int

const (
	Disarmed ArmState = iota
	ArmedHome
	ArmedAway
	Alarm
)

// String returns the human form used in logs and on the wire.
func (s ArmState) String() string {
	switch s {
	case Disarmed:
		return "DISARMED"
	case ArmedHome:
		return "ARMED HOME"
	case ArmedAway:
		return "ARMED AWAY"
	case Alarm:
		return "ALARM"
	default:
		return "UNKNOWN"
	}
}

// CodeContext records why digits are currently being collected.
type CodeContext int

const (
	NoContext CodeContext = iota
	ArmHomePending
	ArmAwayPending
	DisarmPending
	EntryDelayReentry
	AlarmDisarmAttempt
)

// String returns a short identifier for status reporting.
func (c CodeContext) String() string {
	switch c {
	case NoContext:
		return "none"
	case ArmHomePending:
		return "arm_home_pending"
	case ArmAwayPending:
		return "arm_away_pending"
	case DisarmPending:
		return "disarm_pending"
	case EntryDelayReentry:
		return "entry_delay_reentry"
	case AlarmDisarmAttempt:
		return "alarm_disarm_attempt"
	default:
		return "unknown"
	}
}

// EventKind classifies a panel event for consumers.
type EventKind string

const (
	KindArmed    EventKind = "armed"
	KindDisarmed EventKind = "disarmed"
	KindAlarm    EventKind = "alarm"
	KindNotice   EventKind = "notice"
	KindFault    EventKind = "fault"
)

// Event is one occurrence the machine reports to the run loop. Message
// is the exact line written to the event log, without the timestamp.
type Event struct {
	Time    time.Time
	Kind    EventKind
	State   ArmState
	Prior   ArmState
	Message string
}

// Config carries the machine's tunables.
type Config struct {
	// Code is the 4-digit arm/disarm code.
	Code string

	// EntryDelay is the grace period between a door opening while
	// armed away and the alarm, during which a valid code disarms.
	EntryDelay time.Duration
}

// DefaultEntryDelay matches the panel's traditional 30 second grace
// period.
const DefaultEntryDelay = 30 * time.Second

// Display texts.
const (
	StatusDisarmed  = "DISARMED"
	StatusArmedHome = "ARMED HOME"
	StatusArmedAway = "ARMED AWAY"
	StatusAlarm     = "! ALARM !"

	NoticeWrongCode    = "Wrong Code!"
	NoticeEntryStarted = "Entry Started"
	NoticeDoorOpened   = "Door Opened"
	NoticeProximity    = "Proximity Alert"
	NoticeLogFailed    = "Log Write Failed"
)

// Event log messages.
const (
	MsgSystemStarted  = "System Started"
	MsgArmedHome      = "System Armed - Home Mode"
	MsgArmedAway      = "System Armed - Away Mode"
	MsgDisarmed       = "System Disarmed"
	MsgPanic          = "Panic Button Pressed"
	MsgAlarmTriggered = "ALARM TRIGGERED"
	MsgAlarmDisarmed  = "Alarm Disarmed"
	MsgWrongCodeAlarm = "Wrong Code Entry During Alarm"
	MsgMotion         = "Motion Detected!"
	MsgOutsideMotion  = "Outside Motion!"
	MsgWindowBreach   = "Window Breach!"
)

// Tones. Play blocks for the duration, so each value here also bounds
// how long one keypress can stall the control loop.
const (
	ToneKeypressHz  = 1000.0
	ToneKeypressDur = 50 * time.Millisecond

	ToneSuccessHz  = 880.0
	ToneSuccessDur = 100 * time.Millisecond

	ToneErrorHz  = 220.0
	ToneErrorDur = 500 * time.Millisecond

	ToneAlarmHz  = 1760.0
	ToneAlarmDur = 100 * time.Millisecond

	ToneChimeHz  = 880.0
	ToneChimeDur = 100 * time.Millisecond
)

const (
	// AlarmPulsePeriod is the half-period of the alarm indication: the
	// red LED and siren tone flip each period.
	AlarmPulsePeriod = 100 * time.Millisecond

	// NoticeDuration is how long transient notices hold the display
	// before the status view returns.
	NoticeDuration = time.Second

	// logLineLayout formats event log timestamps.
	logLineLayout = "2006-01-02 15:04:05"
)
