// Package status provides a thread-safe status tracker for the alarm
// panel daemon. It is read by HTTP handlers and the MQTT publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/alarm-panel/internal/panel"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs            int64
	EntryDelaySeconds int64
	Broker            string
	Panel             string // panel id used in MQTT topic paths
	HTTPAddr          string
	LogPath           string
	WSBroker          string // Websocket broker URL for browser MQTT (empty = disabled)
}

// EventCounts tallies panel events by kind since startup.
type EventCounts struct {
	Armed    int
	Disarmed int
	Alarms   int
	Notices  int
	Faults   int
}

// Snapshot is a point-in-time view of daemon state. It is copied out
// under the lock; the Network pointer is replaced wholesale on update,
// never mutated in place.
type Snapshot struct {
	State               panel.ArmState
	Context             panel.CodeContext
	EntryDelayActive    bool
	EntryDelayRemaining int
	ProximityLatched    bool
	Ready               bool
	Counts              EventCounts
	LastEvent           string
	LastEventTime       time.Time
	StartTime           time.Time
	Now                 time.Time
	MQTTConnected       bool
	Network             *NetworkInfo
	Config              Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the machine-derived fields. Called from the control loop
// on every tick.
func (t *Tracker) Update(state panel.ArmState, ctx panel.CodeContext, delayActive bool, delayRemaining int, proximityLatched bool) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Context = ctx
	t.snap.EntryDelayActive = delayActive
	t.snap.EntryDelayRemaining = delayRemaining
	t.snap.ProximityLatched = proximityLatched
	t.mu.Unlock()
}

// RecordEvent tallies one panel event and remembers it as the most
// recent.
func (t *Tracker) RecordEvent(ev panel.Event) {
	t.mu.Lock()
	switch ev.Kind {
	case panel.KindArmed:
		t.snap.Counts.Armed++
	case panel.KindDisarmed:
		t.snap.Counts.Disarmed++
	case panel.KindAlarm:
		t.snap.Counts.Alarms++
	case panel.KindNotice:
		t.snap.Counts.Notices++
	case panel.KindFault:
		t.snap.Counts.Faults++
	}
	t.snap.LastEvent = ev.Message
	t.snap.LastEventTime = ev.Time
	t.mu.Unlock()
}

// SetReady marks the hardware as opened and scanning.
func (t *Tracker) SetReady(ready bool) {
	t.mu.Lock()
	t.snap.Ready = ready
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
