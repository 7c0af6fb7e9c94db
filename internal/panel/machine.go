package panel

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/alarm-panel/internal/code"
	"github.com/sweeney/alarm-panel/internal/display"
	"github.com/sweeney/alarm-panel/internal/eventlog"
	"github.com/sweeney/alarm-panel/internal/keypad"
	"github.com/sweeney/alarm-panel/internal/led"
	"github.com/sweeney/alarm-panel/internal/log"
	"github.com/sweeney/alarm-panel/internal/metrics"
	"github.com/sweeney/alarm-panel/internal/sensor"
	"github.com/sweeney/alarm-panel/internal/tone"
)

// Machine is the security state machine. It must only be called from
// the control loop goroutine; it holds no locks because it has no
// concurrent callers, and that is an invariant of the design, not an
// oversight.
type Machine struct {
	cfg Config

	disp     display.Display
	tones    tone.Player
	leds     led.RGB
	eventLog eventlog.Appender
	logger   zerolog.Logger

	state ArmState
	ctx   CodeContext
	buf   code.Buffer

	entryDelayOn    bool
	entryDelayStart time.Time

	alarmPhaseOn  bool
	lastAlarmFlip time.Time

	// noticeUntil holds the deadline of a transient notice currently on
	// the display; zero when none is pending.
	noticeUntil time.Time

	lastCountdownDraw time.Time
	lastClockDraw     time.Time

	storageFaultNoted bool
}

// NewMachine creates a disarmed Machine over the given capabilities.
func NewMachine(cfg Config, disp display.Display, tones tone.Player, leds led.RGB, eventLog eventlog.Appender) *Machine {
	if cfg.EntryDelay <= 0 {
		cfg.EntryDelay = DefaultEntryDelay
	}
	return &Machine{
		cfg:      cfg,
		disp:     disp,
		tones:    tones,
		leds:     leds,
		eventLog: eventLog,
		logger:   log.WithComponent("panel"),
	}
}

// Start brings the panel to its initial disarmed state: status view,
// LED color and the startup entry in the event log.
func (m *Machine) Start(now time.Time) []Event {
	metrics.SetArmState(int(m.state))
	m.updateLED()
	m.showStatusView()
	return m.emit(now, KindNotice, m.state, MsgSystemStarted)
}

// State returns the current arm state.
func (m *Machine) State() ArmState { return m.state }

// Context returns the current code entry context.
func (m *Machine) Context() CodeContext { return m.ctx }

// SensorsActive reports whether the detectors should be polled: only
// in the armed states. Disarmed ignores the detectors and an active
// alarm cannot be re-triggered.
func (m *Machine) SensorsActive() bool {
	return m.state == ArmedHome || m.state == ArmedAway
}

// EntryDelayActive reports whether the entry delay is running.
func (m *Machine) EntryDelayActive() bool { return m.entryDelayOn }

// EntryDelayRemaining returns the whole seconds left before the entry
// delay escalates, zero when none is running.
func (m *Machine) EntryDelayRemaining(now time.Time) int {
	if !m.entryDelayOn {
		return 0
	}
	remaining := m.cfg.EntryDelay - now.Sub(m.entryDelayStart)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// HandleKey processes one debounced keypress.
func (m *Machine) HandleKey(k keypad.Key, now time.Time) []Event {
	if m.state == Alarm {
		return m.handleAlarmKey(k, now)
	}

	m.tones.Play(ToneKeypressHz, ToneKeypressDur)

	if m.entryDelayOn {
		return m.handleEntryDelayKey(k, now)
	}

	switch {
	case k == keypad.KeyArmHome:
		m.beginCodeEntry(ArmHomePending)
	case k == keypad.KeyArmAway:
		m.beginCodeEntry(ArmAwayPending)
	case k == keypad.KeyDisarm:
		m.beginCodeEntry(DisarmPending)
	case k == keypad.KeyPanic:
		return m.triggerAlarm(MsgPanic, "panic", now)
	case k == keypad.KeyBackspace:
		if m.buf.Backspace() {
			m.disp.ShowCodeProgress(m.buf.Len())
		}
	case k == keypad.KeyConfirm:
		return m.confirmCode(now)
	case k.IsDigit():
		if m.buf.Append(k.Digit()) {
			m.disp.ShowCodeProgress(m.buf.Len())
		}
	}
	return nil
}

// beginCodeEntry opens (or switches) a pending code context. Pressing a
// different command key implicitly abandons the previous context.
func (m *Machine) beginCodeEntry(ctx CodeContext) {
	m.ctx = ctx
	m.buf.Clear()
	m.noticeUntil = time.Time{}
	m.disp.ShowCodeProgress(0)
}

// confirmCode validates a completed buffer against the configured code
// and applies the pending context. A short buffer is ignored outright.
func (m *Machine) confirmCode(now time.Time) []Event {
	if !m.buf.IsComplete() {
		return nil
	}
	valid := m.buf.Validate(m.cfg.Code)
	m.buf.Clear()

	if m.ctx == NoContext {
		// Digits entered with nothing pending: drop them quietly.
		m.showStatusView()
		return nil
	}

	if !valid {
		metrics.IncCodeAttempt("rejected")
		m.showNotice(NoticeWrongCode, now)
		m.tones.Play(ToneErrorHz, ToneErrorDur)
		return nil
	}

	metrics.IncCodeAttempt("accepted")
	prior := m.state
	var kind EventKind
	var msg string
	switch m.ctx {
	case ArmHomePending:
		m.setState(ArmedHome)
		kind, msg = KindArmed, MsgArmedHome
	case ArmAwayPending:
		m.setState(ArmedAway)
		kind, msg = KindArmed, MsgArmedAway
	case DisarmPending:
		m.setState(Disarmed)
		kind, msg = KindDisarmed, MsgDisarmed
	default:
		return nil
	}
	m.ctx = NoContext
	m.resetEntryDelay()

	m.showStatusView()
	events := m.emit(now, kind, prior, msg)
	m.updateLED()
	m.tones.Play(ToneSuccessHz, ToneSuccessDur)
	return events
}

// handleEntryDelayKey routes keys while the entry delay runs: digits,
// backspace and confirm drive a disarm attempt, panic still escalates,
// and the arm/disarm command keys are ignored.
func (m *Machine) handleEntryDelayKey(k keypad.Key, now time.Time) []Event {
	switch {
	case k == keypad.KeyPanic:
		return m.triggerAlarm(MsgPanic, "panic", now)
	case k.IsDigit():
		if m.buf.Append(k.Digit()) {
			m.drawCountdown(now)
		}
	case k == keypad.KeyBackspace:
		if m.buf.Backspace() {
			m.drawCountdown(now)
		}
	case k == keypad.KeyConfirm:
		if !m.buf.IsComplete() {
			return nil
		}
		valid := m.buf.Validate(m.cfg.Code)
		m.buf.Clear()
		if !valid {
			metrics.IncCodeAttempt("rejected")
			m.showNotice(NoticeWrongCode, now)
			m.tones.Play(ToneErrorHz, ToneErrorDur)
			return nil
		}
		metrics.IncCodeAttempt("accepted")
		prior := m.state
		m.setState(Disarmed)
		m.ctx = NoContext
		m.resetEntryDelay()

		m.showStatusView()
		events := m.emit(now, KindDisarmed, prior, MsgDisarmed)
		m.updateLED()
		m.tones.Play(ToneSuccessHz, ToneSuccessDur)
		return events
	}
	return nil
}

// handleAlarmKey routes keys while the alarm sounds. Pressing C opens a
// disarm attempt; only digits, backspace and confirm act inside it.
func (m *Machine) handleAlarmKey(k keypad.Key, now time.Time) []Event {
	if m.ctx != AlarmDisarmAttempt {
		if k == keypad.KeyDisarm {
			m.beginCodeEntry(AlarmDisarmAttempt)
		}
		return nil
	}

	switch {
	case k.IsDigit():
		if m.buf.Append(k.Digit()) {
			m.disp.ShowCodeProgress(m.buf.Len())
			m.tones.Play(ToneKeypressHz, ToneKeypressDur)
		}
	case k == keypad.KeyBackspace:
		if m.buf.Backspace() {
			m.disp.ShowCodeProgress(m.buf.Len())
		}
	case k == keypad.KeyConfirm:
		if !m.buf.IsComplete() {
			return nil
		}
		valid := m.buf.Validate(m.cfg.Code)
		m.buf.Clear()
		prior := m.state

		if !valid {
			metrics.IncCodeAttempt("rejected")
			m.ctx = NoContext
			m.showNotice(NoticeWrongCode, now)
			return m.emit(now, KindNotice, prior, MsgWrongCodeAlarm)
		}

		metrics.IncCodeAttempt("accepted")
		m.setState(Disarmed)
		m.ctx = NoContext
		m.resetEntryDelay()

		m.showStatusView()
		events := m.emit(now, KindDisarmed, prior, MsgAlarmDisarmed)
		m.updateLED()
		return events
	}
	return nil
}

// HandleSensor processes one semantic sensor event. Events that do not
// matter in the current state fall through without effect; an active
// alarm ignores every sensor.
func (m *Machine) HandleSensor(ev sensor.Event, now time.Time) []Event {
	if m.state == Alarm {
		return nil
	}

	// The loop stops measuring proximity during the grace period, but a
	// breach measured in the same poll batch that delivered the door
	// edge must not alarm instantly. Motion stays live through the
	// countdown.
	if m.entryDelayOn && ev.Type == sensor.EventProximityBreach {
		return nil
	}

	switch ev.Type {
	case sensor.EventMotionOuter:
		switch m.state {
		case ArmedAway:
			return m.triggerAlarm(MsgMotion, "motion", now)
		case ArmedHome:
			return m.triggerAlarm(MsgOutsideMotion, "motion", now)
		}
	case sensor.EventMotionInner:
		if m.state == ArmedAway {
			return m.triggerAlarm(MsgMotion, "motion", now)
		}
	case sensor.EventDoorOpened:
		switch m.state {
		case ArmedAway:
			if !m.entryDelayOn {
				return m.startEntryDelay(now)
			}
		case ArmedHome:
			return m.notice(NoticeDoorOpened, now)
		}
	case sensor.EventProximityBreach:
		switch m.state {
		case ArmedAway:
			return m.triggerAlarm(MsgWindowBreach, "proximity", now)
		case ArmedHome:
			return m.notice(NoticeProximity, now)
		}
	}
	return nil
}

// Tick advances time-driven behavior: notice expiry, the entry delay
// countdown, the alarm pulse and the idle clock line.
func (m *Machine) Tick(now time.Time) []Event {
	if !m.noticeUntil.IsZero() && !now.Before(m.noticeUntil) {
		m.noticeUntil = time.Time{}
		m.restoreView(now)
	}

	var events []Event
	if m.entryDelayOn {
		if now.Sub(m.entryDelayStart) >= m.cfg.EntryDelay {
			events = m.triggerAlarm("", "door_timeout", now)
		} else if m.noticeUntil.IsZero() && now.Sub(m.lastCountdownDraw) >= time.Second {
			m.drawCountdown(now)
		}
	}

	if m.state == Alarm {
		m.tickAlarmPulse(now)
	} else if m.ctx == NoContext && m.noticeUntil.IsZero() {
		if now.Sub(m.lastClockDraw) >= time.Second {
			m.lastClockDraw = now
			m.disp.ShowClock(now)
		}
	}

	return events
}

// tickAlarmPulse flips the alarm indication phase: red LED on with the
// siren tone, then dark and quiet, every pulse period. It keeps running
// through a disarm attempt.
func (m *Machine) tickAlarmPulse(now time.Time) {
	if now.Sub(m.lastAlarmFlip) < AlarmPulsePeriod {
		return
	}
	m.lastAlarmFlip = now
	m.alarmPhaseOn = !m.alarmPhaseOn
	m.leds.Set(m.alarmPhaseOn, false, false)
	if m.alarmPhaseOn {
		m.tones.Play(ToneAlarmHz, ToneAlarmDur)
	}
}

// startEntryDelay arms the countdown after a door-open edge while armed
// away. Re-opening the door during an active delay must not reach here;
// the caller guards on EntryDelayActive.
func (m *Machine) startEntryDelay(now time.Time) []Event {
	m.entryDelayOn = true
	m.entryDelayStart = now
	m.ctx = EntryDelayReentry
	m.buf.Clear()

	m.drawCountdown(now)
	return m.emit(now, KindNotice, m.state, NoticeEntryStarted)
}

// notice shows a transient notice, chimes once and reports the event.
func (m *Machine) notice(text string, now time.Time) []Event {
	m.showNotice(text, now)
	events := m.emit(now, KindNotice, m.state, text)
	m.tones.Play(ToneChimeHz, ToneChimeDur)
	return events
}

// triggerAlarm performs the transition into Alarm from any state. An
// empty cause (entry delay expiry) logs only the trigger line.
func (m *Machine) triggerAlarm(cause, label string, now time.Time) []Event {
	prior := m.state
	m.setState(Alarm)
	m.ctx = NoContext
	m.buf.Clear()
	m.resetEntryDelay()

	var events []Event
	if cause != "" {
		events = append(events, m.emit(now, KindAlarm, prior, cause)...)
	}
	m.showStatusView()
	events = append(events, m.emit(now, KindAlarm, prior, MsgAlarmTriggered)...)

	m.alarmPhaseOn = true
	m.lastAlarmFlip = now
	m.leds.Set(true, false, false)
	m.tones.Play(ToneAlarmHz, ToneAlarmDur)
	metrics.IncAlarm(label)
	return events
}

// emit builds the event, counts it and writes the event log line. A
// failed write degrades: warn once on the display, count the failure,
// and piggyback a fault event for remote consumers.
func (m *Machine) emit(now time.Time, kind EventKind, prior ArmState, message string) []Event {
	ev := Event{Time: now, Kind: kind, State: m.state, Prior: prior, Message: message}
	metrics.IncEvent(string(kind))

	events := []Event{ev}
	line := now.Format(logLineLayout) + " - " + message + "\n"
	if err := m.eventLog.Append(line); err != nil {
		metrics.IncLogWriteFailure()
		m.logger.Warn().Err(err).Str("message", message).Msg("event log write failed")
		if !m.storageFaultNoted {
			m.storageFaultNoted = true
			m.showNotice(NoticeLogFailed, now)
			metrics.IncEvent(string(KindFault))
			events = append(events, Event{Time: now, Kind: KindFault, State: m.state, Prior: prior, Message: NoticeLogFailed})
		}
	}
	return events
}

// showNotice puts a transient line on the display and schedules the
// view restore.
func (m *Machine) showNotice(text string, now time.Time) {
	m.disp.ShowStatus(text)
	m.noticeUntil = now.Add(NoticeDuration)
}

// showStatusView repaints the steady state view and cancels any pending
// notice it covers.
func (m *Machine) showStatusView() {
	m.noticeUntil = time.Time{}
	m.disp.ShowStatus(m.statusText())
}

// restoreView redraws whatever the notice covered. Digits typed while
// the notice held the display keep their progress view.
func (m *Machine) restoreView(now time.Time) {
	if m.entryDelayOn {
		m.drawCountdown(now)
		return
	}
	if m.ctx != NoContext && m.buf.Len() > 0 {
		m.disp.ShowCodeProgress(m.buf.Len())
		return
	}
	m.disp.ShowStatus(m.statusText())
}

func (m *Machine) drawCountdown(now time.Time) {
	m.lastCountdownDraw = now
	m.disp.ShowEntryCountdown(m.EntryDelayRemaining(now), m.buf.Len())
}

func (m *Machine) setState(s ArmState) {
	m.state = s
	metrics.SetArmState(int(s))
}

func (m *Machine) resetEntryDelay() {
	m.entryDelayOn = false
	m.entryDelayStart = time.Time{}
}

func (m *Machine) updateLED() {
	switch m.state {
	case Disarmed:
		m.leds.Set(false, true, false)
	case ArmedHome:
		m.leds.Set(true, false, true)
	case ArmedAway:
		m.leds.Set(false, false, true)
	case Alarm:
		m.leds.Set(true, false, false)
	}
}

func (m *Machine) statusText() string {
	switch m.state {
	case ArmedHome:
		return StatusArmedHome
	case ArmedAway:
		return StatusArmedAway
	case Alarm:
		return StatusAlarm
	default:
		return StatusDisarmed
	}
}
