package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/alarm-panel/internal/display"
	"github.com/sweeney/alarm-panel/internal/eventlog"
	"github.com/sweeney/alarm-panel/internal/keypad"
	"github.com/sweeney/alarm-panel/internal/led"
	"github.com/sweeney/alarm-panel/internal/sensor"
	"github.com/sweeney/alarm-panel/internal/tone"
)

// harness wires a Machine to fakes and walks time forward in control
// loop sized steps.
type harness struct {
	m     *Machine
	disp  *display.Fake
	tones *tone.Fake
	leds  *led.Fake
	log   *eventlog.Memory
	now   time.Time
}

func newHarness() *harness {
	h := &harness{
		disp:  &display.Fake{},
		tones: &tone.Fake{},
		leds:  &led.Fake{},
		log:   &eventlog.Memory{},
		now:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	h.m = NewMachine(Config{Code: "2580"}, h.disp, h.tones, h.leds, h.log)
	return h
}

// press feeds keys 50ms apart and returns every event produced.
func (h *harness) press(keys ...keypad.Key) []Event {
	var events []Event
	for _, k := range keys {
		events = append(events, h.m.HandleKey(k, h.now)...)
		h.now = h.now.Add(50 * time.Millisecond)
	}
	return events
}

func (h *harness) sense(typ sensor.EventType) []Event {
	return h.m.HandleSensor(sensor.Event{Time: h.now, Type: typ}, h.now)
}

// advance ticks the machine at the 50ms loop cadence for d.
func (h *harness) advance(d time.Duration) []Event {
	var events []Event
	deadline := h.now.Add(d)
	for h.now.Before(deadline) {
		h.now = h.now.Add(50 * time.Millisecond)
		events = append(events, h.m.Tick(h.now)...)
	}
	return events
}

func (h *harness) notes(freqHz float64) int {
	count := 0
	for _, n := range h.tones.Notes {
		if n.FreqHz == freqHz {
			count++
		}
	}
	return count
}

func TestStartLogsAndDrawsDisarmed(t *testing.T) {
	h := newHarness()
	events := h.m.Start(h.now)

	if len(events) != 1 || events[0].Kind != KindNotice || events[0].Message != MsgSystemStarted {
		t.Fatalf("Start events: got %+v", events)
	}
	if !h.log.Contains(MsgSystemStarted) {
		t.Error("event log should contain the startup line")
	}
	if h.disp.LastStatus() != StatusDisarmed {
		t.Errorf("display: got %q, want %q", h.disp.LastStatus(), StatusDisarmed)
	}
	if h.leds.Current != (led.Color{G: true}) {
		t.Errorf("led: got %+v, want green", h.leds.Current)
	}
}

func TestWrongCodeKeepsDisarmed(t *testing.T) {
	h := newHarness()
	events := h.press('A', '1', '2', '3', '4', '#')

	if len(events) != 0 {
		t.Errorf("wrong code should emit no events, got %+v", events)
	}
	if h.m.State() != Disarmed {
		t.Errorf("state: got %v, want Disarmed", h.m.State())
	}
	if h.disp.LastStatus() != NoticeWrongCode {
		t.Errorf("display: got %q, want %q", h.disp.LastStatus(), NoticeWrongCode)
	}
	if h.notes(ToneErrorHz) != 1 {
		t.Errorf("expected one error tone, got %d", h.notes(ToneErrorHz))
	}
	// The pending context survives so the user can retry directly.
	if h.m.Context() != ArmHomePending {
		t.Errorf("context: got %v, want ArmHomePending", h.m.Context())
	}

	if events := h.press('2', '5', '8', '0', '#'); len(events) != 1 || events[0].Kind != KindArmed {
		t.Fatalf("retry should arm, got %+v", events)
	}
	if h.m.State() != ArmedHome {
		t.Errorf("state after retry: got %v", h.m.State())
	}
}

func TestArmHome(t *testing.T) {
	h := newHarness()
	events := h.press('A', '2', '5', '8', '0', '#')

	if h.m.State() != ArmedHome {
		t.Fatalf("state: got %v, want ArmedHome", h.m.State())
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %+v", events)
	}
	ev := events[0]
	if ev.Kind != KindArmed || ev.State != ArmedHome || ev.Prior != Disarmed || ev.Message != MsgArmedHome {
		t.Errorf("event: got %+v", ev)
	}
	if !h.log.Contains(MsgArmedHome) {
		t.Error("event log should contain the armed line")
	}
	if h.disp.LastStatus() != StatusArmedHome {
		t.Errorf("display: got %q", h.disp.LastStatus())
	}
	if h.leds.Current != (led.Color{R: true, B: true}) {
		t.Errorf("led: got %+v, want red+blue", h.leds.Current)
	}
	if h.notes(ToneSuccessHz) != 1 {
		t.Errorf("expected one success tone, got %d", h.notes(ToneSuccessHz))
	}
}

func TestArmAwayAndDisarm(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')
	if h.m.State() != ArmedAway {
		t.Fatalf("state: got %v, want ArmedAway", h.m.State())
	}
	if h.leds.Current != (led.Color{B: true}) {
		t.Errorf("led: got %+v, want blue", h.leds.Current)
	}

	events := h.press('C', '2', '5', '8', '0', '#')
	if h.m.State() != Disarmed {
		t.Fatalf("state: got %v, want Disarmed", h.m.State())
	}
	if len(events) != 1 || events[0].Kind != KindDisarmed || events[0].Message != MsgDisarmed {
		t.Fatalf("disarm events: got %+v", events)
	}
	if !h.log.Contains(MsgDisarmed) {
		t.Error("event log should contain the disarmed line")
	}
}

func TestEntryDelayExpiryEscalates(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')

	events := h.sense(sensor.EventDoorOpened)
	if !h.m.EntryDelayActive() {
		t.Fatal("door open while armed away should start the entry delay")
	}
	if len(events) != 1 || events[0].Message != NoticeEntryStarted {
		t.Fatalf("entry events: got %+v", events)
	}
	if h.m.Context() != EntryDelayReentry {
		t.Errorf("context: got %v", h.m.Context())
	}
	if len(h.disp.Countdowns) == 0 || h.disp.Countdowns[0].Remaining != 30 {
		t.Fatalf("countdown: got %+v", h.disp.Countdowns)
	}

	events = h.advance(30 * time.Second)
	if h.m.State() != Alarm {
		t.Fatalf("state after 30s: got %v, want Alarm", h.m.State())
	}
	if h.m.EntryDelayActive() {
		t.Error("entry delay should clear on expiry")
	}
	if !h.log.Contains(MsgAlarmTriggered) {
		t.Error("event log should contain the alarm line")
	}
	if h.disp.LastStatus() != StatusAlarm {
		t.Errorf("display: got %q", h.disp.LastStatus())
	}

	alarms := 0
	for _, ev := range events {
		if ev.Kind == KindAlarm {
			alarms++
		}
	}
	if alarms != 1 {
		t.Errorf("expected exactly one alarm event from expiry, got %d", alarms)
	}

	// Exactly armed, entry started, alarm triggered: expiry logs no
	// separate cause line.
	if len(h.log.Lines) != 3 {
		t.Errorf("log lines: got %v", h.log.Lines)
	}
}

func TestEntryDelayCountdownRedrawsAtOneHertz(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')
	h.sense(sensor.EventDoorOpened)

	h.advance(2 * time.Second)
	n := len(h.disp.Countdowns)
	if n < 3 {
		t.Fatalf("expected initial countdown plus 1Hz redraws, got %+v", h.disp.Countdowns)
	}
	if last := h.disp.Countdowns[n-1]; last.Remaining != 28 {
		t.Errorf("after 2s remaining: got %d, want 28", last.Remaining)
	}
}

func TestEntryDelayDisarm(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')
	h.sense(sensor.EventDoorOpened)
	h.advance(5 * time.Second)

	events := h.press('2', '5', '8', '0', '#')
	if h.m.State() != Disarmed {
		t.Fatalf("state: got %v, want Disarmed", h.m.State())
	}
	if h.m.EntryDelayActive() {
		t.Error("entry delay should clear on disarm")
	}
	if len(events) != 1 || events[0].Message != MsgDisarmed {
		t.Fatalf("events: got %+v", events)
	}
	if h.notes(ToneSuccessHz) != 2 {
		t.Errorf("expected success tones for arm and disarm, got %d", h.notes(ToneSuccessHz))
	}
}

func TestEntryDelayWrongCodeKeepsCounting(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')
	h.sense(sensor.EventDoorOpened)

	h.press('1', '1', '1', '1', '#')
	if h.m.State() != ArmedAway || !h.m.EntryDelayActive() {
		t.Fatal("wrong code must leave the delay running")
	}
	if h.disp.LastStatus() != NoticeWrongCode {
		t.Errorf("display: got %q", h.disp.LastStatus())
	}

	// The countdown is restored once the notice expires.
	before := len(h.disp.Countdowns)
	h.advance(1100 * time.Millisecond)
	if len(h.disp.Countdowns) <= before {
		t.Fatal("countdown should redraw after the notice")
	}

	h.press('2', '5', '8', '0', '#')
	if h.m.State() != Disarmed {
		t.Errorf("state after correct code: got %v", h.m.State())
	}
}

func TestEntryDelayReopenDoesNotRestart(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')
	h.sense(sensor.EventDoorOpened)

	h.advance(10 * time.Second)
	h.sense(sensor.EventDoorClosed)
	if events := h.sense(sensor.EventDoorOpened); len(events) != 0 {
		t.Errorf("re-open during delay should be silent, got %+v", events)
	}
	if got := h.m.EntryDelayRemaining(h.now); got != 20 {
		t.Errorf("remaining after re-open: got %d, want 20", got)
	}
}

func TestEntryDelayMotionEscalatesImmediately(t *testing.T) {
	for _, typ := range []sensor.EventType{sensor.EventMotionOuter, sensor.EventMotionInner} {
		t.Run(string(typ), func(t *testing.T) {
			h := newHarness()
			h.press('B', '2', '5', '8', '0', '#')
			h.sense(sensor.EventDoorOpened)
			h.advance(5 * time.Second)

			h.sense(typ)
			if h.m.State() != Alarm {
				t.Fatalf("%s during the grace period: state %v, want Alarm", typ, h.m.State())
			}
			if h.m.EntryDelayActive() {
				t.Error("alarm entry must clear the delay")
			}
			if !h.log.Contains(MsgMotion) {
				t.Errorf("log: got %v", h.log.Lines)
			}
		})
	}
}

func TestEntryDelaySuppressesProximityBreach(t *testing.T) {
	h := newHarness()
	h.press('B', '2', '5', '8', '0', '#')
	h.sense(sensor.EventDoorOpened)
	h.advance(5 * time.Second)

	if events := h.sense(sensor.EventProximityBreach); len(events) != 0 {
		t.Errorf("breach during the grace period: got %+v, want none", events)
	}
	if h.m.State() != ArmedAway || !h.m.EntryDelayActive() {
		t.Fatalf("state %v delay=%v, want armed away with delay running",
			h.m.State(), h.m.EntryDelayActive())
	}

	// The countdown still escalates on schedule.
	events := h.advance(26 * time.Second)
	alarms := 0
	for _, ev := range events {
		if ev.Kind == KindAlarm {
			alarms++
		}
	}
	if alarms != 1 {
		t.Errorf("alarm events after expiry: got %d, want 1", alarms)
	}
}

func TestPanicEscalatesFromEveryState(t *testing.T) {
	stages := []struct {
		name  string
		setup func(h *harness)
	}{
		{"disarmed", func(h *harness) {}},
		{"armed_home", func(h *harness) { h.press('A', '2', '5', '8', '0', '#') }},
		{"armed_away", func(h *harness) { h.press('B', '2', '5', '8', '0', '#') }},
		{"entry_delay", func(h *harness) {
			h.press('B', '2', '5', '8', '0', '#')
			h.sense(sensor.EventDoorOpened)
		}},
	}

	for _, st := range stages {
		t.Run(st.name, func(t *testing.T) {
			h := newHarness()
			st.setup(h)

			h.press('D')
			if h.m.State() != Alarm {
				t.Fatalf("state: got %v, want Alarm", h.m.State())
			}
			if !h.log.Contains(MsgPanic) || !h.log.Contains(MsgAlarmTriggered) {
				t.Errorf("log: got %v", h.log.Lines)
			}
			if h.m.EntryDelayActive() {
				t.Error("alarm entry must clear the delay")
			}
		})
	}
}

func TestMotionRouting(t *testing.T) {
	t.Run("armed_home_inner_ignored", func(t *testing.T) {
		h := newHarness()
		h.press('A', '2', '5', '8', '0', '#')
		if events := h.sense(sensor.EventMotionInner); len(events) != 0 {
			t.Errorf("inner motion while armed home: got %+v", events)
		}
		if h.m.State() != ArmedHome {
			t.Errorf("state: got %v", h.m.State())
		}
	})

	t.Run("armed_home_outer_alarms", func(t *testing.T) {
		h := newHarness()
		h.press('A', '2', '5', '8', '0', '#')
		h.sense(sensor.EventMotionOuter)
		if h.m.State() != Alarm {
			t.Fatalf("state: got %v, want Alarm", h.m.State())
		}
		if !h.log.Contains(MsgOutsideMotion) {
			t.Errorf("log: got %v", h.log.Lines)
		}
	})

	t.Run("armed_away_any_motion_alarms", func(t *testing.T) {
		h := newHarness()
		h.press('B', '2', '5', '8', '0', '#')
		h.sense(sensor.EventMotionInner)
		if h.m.State() != Alarm {
			t.Fatalf("state: got %v, want Alarm", h.m.State())
		}
		if !h.log.Contains(MsgMotion) {
			t.Errorf("log: got %v", h.log.Lines)
		}
	})

	t.Run("disarmed_ignores_motion", func(t *testing.T) {
		h := newHarness()
		if events := h.sense(sensor.EventMotionOuter); len(events) != 0 {
			t.Errorf("got %+v", events)
		}
	})
}

func TestProximityRouting(t *testing.T) {
	t.Run("armed_home_notice", func(t *testing.T) {
		h := newHarness()
		h.press('A', '2', '5', '8', '0', '#')
		events := h.sense(sensor.EventProximityBreach)
		if h.m.State() != ArmedHome {
			t.Fatalf("state: got %v, breach must not escalate at home", h.m.State())
		}
		if len(events) != 1 || events[0].Kind != KindNotice || events[0].Message != NoticeProximity {
			t.Fatalf("events: got %+v", events)
		}
		// 880Hz twice: the arming success tone, then the notice chime.
		if h.notes(ToneChimeHz) != 2 {
			t.Errorf("880Hz notes: got %d, want 2", h.notes(ToneChimeHz))
		}
		h.advance(1100 * time.Millisecond)
		if h.disp.LastStatus() != StatusArmedHome {
			t.Errorf("display after notice: got %q", h.disp.LastStatus())
		}
	})

	t.Run("armed_away_alarms", func(t *testing.T) {
		h := newHarness()
		h.press('B', '2', '5', '8', '0', '#')
		h.sense(sensor.EventProximityBreach)
		if h.m.State() != Alarm {
			t.Fatalf("state: got %v, want Alarm", h.m.State())
		}
		if !h.log.Contains(MsgWindowBreach) {
			t.Errorf("log: got %v", h.log.Lines)
		}
	})

	t.Run("clear_is_ignored", func(t *testing.T) {
		h := newHarness()
		h.press('B', '2', '5', '8', '0', '#')
		if events := h.sense(sensor.EventProximityClear); len(events) != 0 {
			t.Errorf("got %+v", events)
		}
	})
}

func TestDoorNoticeWhileArmedHome(t *testing.T) {
	h := newHarness()
	h.press('A', '2', '5', '8', '0', '#')

	events := h.sense(sensor.EventDoorOpened)
	if h.m.State() != ArmedHome {
		t.Fatalf("state: got %v", h.m.State())
	}
	if len(events) != 1 || events[0].Message != NoticeDoorOpened {
		t.Fatalf("events: got %+v", events)
	}
	if h.disp.LastStatus() != NoticeDoorOpened {
		t.Errorf("display: got %q", h.disp.LastStatus())
	}

	h.advance(1100 * time.Millisecond)
	if h.disp.LastStatus() != StatusArmedHome {
		t.Errorf("display after notice: got %q", h.disp.LastStatus())
	}
}

func TestAlarmDisarmRequiresAttempt(t *testing.T) {
	h := newHarness()
	h.press('D')

	// Digits before C are dead keys during an alarm.
	if events := h.press('2', '5', '8', '0', '#'); len(events) != 0 {
		t.Fatalf("digits without C: got %+v", events)
	}
	if h.m.State() != Alarm {
		t.Fatal("alarm should persist")
	}

	h.press('C')
	if h.m.Context() != AlarmDisarmAttempt {
		t.Fatalf("context: got %v", h.m.Context())
	}

	events := h.press('2', '5', '8', '0', '#')
	if h.m.State() != Disarmed {
		t.Fatalf("state: got %v, want Disarmed", h.m.State())
	}
	if len(events) != 1 || events[0].Message != MsgAlarmDisarmed || events[0].Prior != Alarm {
		t.Fatalf("events: got %+v", events)
	}
	if h.leds.Current != (led.Color{G: true}) {
		t.Errorf("led: got %+v, want green", h.leds.Current)
	}
}

func TestAlarmWrongCodeResumesIndication(t *testing.T) {
	h := newHarness()
	h.press('D')
	h.press('C')

	events := h.press('1', '2', '3', '4', '#')
	if h.m.State() != Alarm {
		t.Fatal("wrong code must not clear the alarm")
	}
	if len(events) != 1 || events[0].Message != MsgWrongCodeAlarm {
		t.Fatalf("events: got %+v", events)
	}
	// The attempt closes; C is required again.
	if h.m.Context() != NoContext {
		t.Errorf("context: got %v", h.m.Context())
	}
	if h.disp.LastStatus() != NoticeWrongCode {
		t.Errorf("display: got %q", h.disp.LastStatus())
	}

	h.advance(1100 * time.Millisecond)
	if h.disp.LastStatus() != StatusAlarm {
		t.Errorf("display after notice: got %q", h.disp.LastStatus())
	}
}

func TestAlarmIgnoresSensors(t *testing.T) {
	h := newHarness()
	h.press('D')
	before := len(h.log.Lines)

	for _, typ := range []sensor.EventType{
		sensor.EventMotionOuter, sensor.EventMotionInner,
		sensor.EventDoorOpened, sensor.EventDoorClosed,
		sensor.EventProximityBreach, sensor.EventProximityClear,
	} {
		if events := h.sense(typ); len(events) != 0 {
			t.Errorf("%s during alarm: got %+v", typ, events)
		}
	}
	if h.m.State() != Alarm {
		t.Error("alarm must persist")
	}
	if len(h.log.Lines) != before {
		t.Errorf("log grew during alarm: %v", h.log.Lines)
	}
	if h.m.SensorsActive() {
		t.Error("SensorsActive should be false during an alarm")
	}
}

func TestAlarmPulseFlipsLEDAndTone(t *testing.T) {
	h := newHarness()
	h.press('D')

	if h.leds.Current != (led.Color{R: true}) {
		t.Fatalf("led at trigger: got %+v, want red", h.leds.Current)
	}
	start := h.notes(ToneAlarmHz)
	if start != 1 {
		t.Fatalf("expected one alarm tone at trigger, got %d", start)
	}

	h.advance(400 * time.Millisecond)
	if got := h.notes(ToneAlarmHz); got != 3 {
		t.Errorf("alarm tones after 400ms: got %d, want 3", got)
	}

	// The LED must have gone dark on the off phases.
	dark := false
	for _, c := range h.leds.History {
		if c == (led.Color{}) {
			dark = true
		}
	}
	if !dark {
		t.Error("led never went dark during the pulse")
	}
}

func TestBufferLimitsAndBackspace(t *testing.T) {
	h := newHarness()
	h.press('A', '1', '2', '3', '4', '5')

	// The fifth digit is dropped: progress shows 0..4 only.
	want := []int{0, 1, 2, 3, 4}
	if len(h.disp.Progress) != len(want) {
		t.Fatalf("progress: got %v, want %v", h.disp.Progress, want)
	}
	for i := range want {
		if h.disp.Progress[i] != want[i] {
			t.Fatalf("progress: got %v, want %v", h.disp.Progress, want)
		}
	}

	// Backspace twice, finish with the right code.
	h.press('*', '*', '*', '*', '*')
	h.press('2', '5', '8', '0', '#')
	if h.m.State() != ArmedHome {
		t.Errorf("state: got %v, want ArmedHome", h.m.State())
	}
}

func TestConfirmWithoutContextDropsDigits(t *testing.T) {
	h := newHarness()
	h.m.Start(h.now)
	events := h.press('2', '5', '8', '0', '#')

	if len(events) != 0 {
		t.Errorf("events: got %+v", events)
	}
	if h.m.State() != Disarmed {
		t.Errorf("state: got %v", h.m.State())
	}
	if h.disp.LastStatus() != StatusDisarmed {
		t.Errorf("display: got %q", h.disp.LastStatus())
	}
	if h.notes(ToneSuccessHz) != 0 || h.notes(ToneErrorHz) != 0 {
		t.Error("no validation tone should play without a pending context")
	}
}

func TestConfirmIncompleteIsIgnored(t *testing.T) {
	h := newHarness()
	h.press('A', '2', '5', '#')

	if h.m.Context() != ArmHomePending {
		t.Errorf("context: got %v", h.m.Context())
	}
	if h.m.State() != Disarmed {
		t.Errorf("state: got %v", h.m.State())
	}
	if h.notes(ToneErrorHz) != 0 {
		t.Error("incomplete confirm should not play the error tone")
	}
}

func TestCommandKeySwitchesContext(t *testing.T) {
	h := newHarness()
	h.press('A', '2', '5')
	h.press('C')

	if h.m.Context() != DisarmPending {
		t.Fatalf("context: got %v, want DisarmPending", h.m.Context())
	}
	// The buffer restarts with the new context.
	if h.disp.Progress[len(h.disp.Progress)-1] != 0 {
		t.Errorf("progress after switch: got %v", h.disp.Progress)
	}

	h.press('2', '5', '8', '0', '#')
	if h.m.State() != Disarmed {
		t.Errorf("state: got %v", h.m.State())
	}
	if !h.log.Contains(MsgDisarmed) {
		t.Error("log should contain the disarmed line")
	}
}

func TestStorageFaultNotedOnce(t *testing.T) {
	h := newHarness()
	h.log.Err = errors.New("card removed")

	events := h.press('A', '2', '5', '8', '0', '#')
	if h.m.State() != ArmedHome {
		t.Fatalf("state: got %v, log faults must not block arming", h.m.State())
	}
	faults := 0
	for _, ev := range events {
		if ev.Kind == KindFault {
			faults++
		}
	}
	if faults != 1 {
		t.Fatalf("expected one fault event, got %+v", events)
	}

	// Later failures stay quiet on the display and the event stream.
	events = h.press('C', '2', '5', '8', '0', '#')
	for _, ev := range events {
		if ev.Kind == KindFault {
			t.Errorf("second fault event emitted: %+v", ev)
		}
	}
	if h.m.State() != Disarmed {
		t.Errorf("state: got %v", h.m.State())
	}
}

func TestClockDrawsOnlyWhenIdle(t *testing.T) {
	h := newHarness()
	h.m.Start(h.now)

	h.advance(2 * time.Second)
	idle := len(h.disp.Clocks)
	if idle < 2 {
		t.Fatalf("expected 1Hz clock refreshes while idle, got %d", idle)
	}

	h.press('A')
	h.advance(2 * time.Second)
	if len(h.disp.Clocks) != idle {
		t.Errorf("clock drew during code entry: %d -> %d", idle, len(h.disp.Clocks))
	}
}

func TestTransitionTotality(t *testing.T) {
	keys := []keypad.Key{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'A', 'B', 'C', 'D', '*', '#'}
	sensors := []sensor.EventType{
		sensor.EventMotionOuter, sensor.EventMotionInner,
		sensor.EventDoorOpened, sensor.EventDoorClosed,
		sensor.EventProximityBreach, sensor.EventProximityClear,
	}
	states := []struct {
		name  string
		setup func(h *harness)
	}{
		{"disarmed", func(h *harness) {}},
		{"armed_home", func(h *harness) { h.press('A', '2', '5', '8', '0', '#') }},
		{"armed_away", func(h *harness) { h.press('B', '2', '5', '8', '0', '#') }},
		{"alarm", func(h *harness) { h.press('D') }},
	}

	valid := map[ArmState]bool{Disarmed: true, ArmedHome: true, ArmedAway: true, Alarm: true}

	for _, st := range states {
		for _, k := range keys {
			h := newHarness()
			st.setup(h)
			h.press(k)
			if !valid[h.m.State()] {
				t.Fatalf("state %s key %q: invalid state %v", st.name, k, h.m.State())
			}
		}
		for _, typ := range sensors {
			h := newHarness()
			st.setup(h)
			h.sense(typ)
			if !valid[h.m.State()] {
				t.Fatalf("state %s sensor %s: invalid state %v", st.name, typ, h.m.State())
			}
		}
	}
}

func TestEntryDelayRemainingClamps(t *testing.T) {
	h := newHarness()
	if got := h.m.EntryDelayRemaining(h.now); got != 0 {
		t.Errorf("no delay: got %d", got)
	}

	h.press('B', '2', '5', '8', '0', '#')
	h.sense(sensor.EventDoorOpened)
	start := h.now

	if got := h.m.EntryDelayRemaining(start); got != 30 {
		t.Errorf("at start: got %d, want 30", got)
	}
	if got := h.m.EntryDelayRemaining(start.Add(29500 * time.Millisecond)); got != 1 {
		t.Errorf("at 29.5s: got %d, want 1", got)
	}
	if got := h.m.EntryDelayRemaining(start.Add(31 * time.Second)); got != 0 {
		t.Errorf("past expiry: got %d, want 0", got)
	}
}
