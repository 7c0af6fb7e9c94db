package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string         `json:"event,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	State            string         `json:"state"`
	CodeContext      string         `json:"code_context"`
	EntryDelay       EntryDelayJSON `json:"entry_delay"`
	ProximityLatched bool           `json:"proximity_latched"`
	Ready            bool           `json:"ready"`
	UptimeSeconds    int64          `json:"uptime_seconds"`
	StartTime        string         `json:"start_time"`
	Timestamp        string         `json:"timestamp"`
	MQTT             MQTTStatus     `json:"mqtt"`
	Counts           CountsJSON     `json:"event_counts"`
	LastEvent        *LastEventJSON `json:"last_event,omitempty"`
	Network          *NetworkJSON   `json:"network,omitempty"`
	Config           ConfigJSON     `json:"config"`
}

// EntryDelayJSON is the JSON representation of the entry delay.
type EntryDelayJSON struct {
	Active           bool `json:"active"`
	RemainingSeconds int  `json:"remaining_seconds"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Armed    int `json:"armed"`
	Disarmed int `json:"disarmed"`
	Alarms   int `json:"alarms"`
	Notices  int `json:"notices"`
	Faults   int `json:"faults"`
}

// LastEventJSON is the JSON representation of the most recent event.
type LastEventJSON struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs            int64  `json:"tick_ms"`
	EntryDelaySeconds int64  `json:"entry_delay_seconds"`
	Broker            string `json:"broker"`
	Panel             string `json:"panel"`
	HTTPAddr          string `json:"http_addr"`
	LogPath           string `json:"log_path"`
	WSBroker          string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State:       snap.State.String(),
		CodeContext: snap.Context.String(),
		EntryDelay: EntryDelayJSON{
			Active:           snap.EntryDelayActive,
			RemainingSeconds: snap.EntryDelayRemaining,
		},
		ProximityLatched: snap.ProximityLatched,
		Ready:            snap.Ready,
		UptimeSeconds:    int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		MQTT:             MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Armed:    snap.Counts.Armed,
			Disarmed: snap.Counts.Disarmed,
			Alarms:   snap.Counts.Alarms,
			Notices:  snap.Counts.Notices,
			Faults:   snap.Counts.Faults,
		},
		Config: ConfigJSON{
			TickMs:            snap.Config.TickMs,
			EntryDelaySeconds: snap.Config.EntryDelaySeconds,
			Broker:            snap.Config.Broker,
			Panel:             snap.Config.Panel,
			HTTPAddr:          snap.Config.HTTPAddr,
			LogPath:           snap.Config.LogPath,
			WSBroker:          snap.Config.WSBroker,
		},
	}

	if snap.LastEvent != "" {
		inner.LastEvent = &LastEventJSON{
			Time:    snap.LastEventTime.UTC().Format(time.RFC3339),
			Message: snap.LastEvent,
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
