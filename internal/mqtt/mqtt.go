// Package mqtt publishes panel events, the retained arm state and
// lifecycle messages to the home automation broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/alarm-panel/internal/panel"
)

// EventTopic returns the topic for panel events.
func EventTopic(panelID string) string {
	return "home/security/" + panelID + "/event"
}

// StateTopic returns the topic for the retained arm state summary.
func StateTopic(panelID string) string {
	return "home/security/" + panelID + "/state"
}

// SystemTopic returns the topic for system lifecycle events.
func SystemTopic(panelID string) string {
	return "home/security/" + panelID + "/system"
}

// Publisher publishes panel traffic to MQTT. Errors are reported, not
// fatal: the panel keeps protecting the house when telemetry is down.
type Publisher interface {
	// PublishEvent sends one panel event to the broker.
	PublishEvent(event panel.Event) error

	// PublishState sends the retained arm state summary.
	PublishState(st State) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// State is the panel state summary published, retained, on the state
// topic so late subscribers see the current arm state immediately.
type State struct {
	Time                time.Time
	ArmState            panel.ArmState
	EntryDelayActive    bool
	EntryDelayRemaining int
}

// SystemEvent is a panel lifecycle message: STARTUP, SHUTDOWN or
// HEARTBEAT.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // STARTUP, SHUTDOWN or HEARTBEAT
	Reason     string // shutdown only: SIGINT, SIGTERM, MQTT_DISCONNECT
	RawPayload []byte // pre-rendered JSON; when set it is published as-is
	Retained   bool
}

// EventPayload represents the MQTT message payload for a panel event.
type EventPayload struct {
	Event EventInner `json:"event"`
}

// EventInner contains the panel event details.
type EventInner struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	State     string `json:"state"`
	Prior     string `json:"prior"`
	Message   string `json:"message"`
}

// FormatEventPayload creates the JSON payload for a panel event. The
// id tags this occurrence so consumers can deduplicate replays.
func FormatEventPayload(event panel.Event, id string) ([]byte, error) {
	payload := EventPayload{
		Event: EventInner{
			ID:        id,
			Timestamp: event.Time.UTC().Format(time.RFC3339),
			Kind:      string(event.Kind),
			State:     event.State.String(),
			Prior:     event.Prior.String(),
			Message:   event.Message,
		},
	}
	return json.Marshal(payload)
}

// StatePayload represents the MQTT message payload for the retained
// state summary.
type StatePayload struct {
	State StateInner `json:"state"`
}

// StateInner contains the state summary details.
type StateInner struct {
	Timestamp           string `json:"timestamp"`
	State               string `json:"state"`
	EntryDelayActive    bool   `json:"entry_delay_active"`
	EntryDelayRemaining int    `json:"entry_delay_remaining_seconds"`
}

// FormatStatePayload creates the JSON payload for the state summary.
func FormatStatePayload(st State) ([]byte, error) {
	payload := StatePayload{
		State: StateInner{
			Timestamp:           st.Time.UTC().Format(time.RFC3339),
			State:               st.ArmState.String(),
			EntryDelayActive:    st.EntryDelayActive,
			EntryDelayRemaining: st.EntryDelayRemaining,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the wire shape for lifecycle events that carry no
// status snapshot (the broker's last-will message and plain shutdowns).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner carries the lifecycle fields.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload renders a lifecycle event. RawPayload wins when
// set: startup and heartbeat attach a full status snapshot instead of
// the plain shape.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
