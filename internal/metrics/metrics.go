// Package metrics exposes prometheus collectors for the alarm-panel daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	armState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alarm_panel_arm_state",
		Help: "Current arm state (0=disarmed, 1=armed home, 2=armed away, 3=alarm)",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_panel_events_total",
		Help: "Panel events by kind",
	}, []string{"kind"}) // kind=armed|disarmed|alarm|notice|fault

	alarmsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_panel_alarms_total",
		Help: "Alarm activations by cause",
	}, []string{"cause"}) // cause=panic|motion|door_timeout|proximity

	codeAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_panel_code_attempts_total",
		Help: "Security code confirmations by outcome",
	}, []string{"outcome"}) // outcome=accepted|rejected

	sensorFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_panel_sensor_faults_total",
		Help: "Sensor reads degraded to the clear value, by channel",
	}, []string{"channel"}) // channel=motion_outer|motion_inner|door|range|keypad

	logWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alarm_panel_eventlog_write_failures_total",
		Help: "Event log append failures (system keeps running without persistence)",
	})

	mqttPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_panel_mqtt_publish_total",
		Help: "MQTT publish attempts by outcome",
	}, []string{"outcome"}) // outcome=ok|timeout|error|buffered|replayed

	mqttBufferDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alarm_panel_mqtt_buffer_depth",
		Help: "Messages held for replay while the broker is unreachable",
	})
)

// SetArmState records the current arm state ordinal.
func SetArmState(ordinal int) { armState.Set(float64(ordinal)) }

// IncEvent counts a panel event by kind.
func IncEvent(kind string) { eventsTotal.WithLabelValues(kind).Inc() }

// IncAlarm counts an alarm activation by cause.
func IncAlarm(cause string) { alarmsTotal.WithLabelValues(cause).Inc() }

// IncCodeAttempt counts a code confirmation outcome.
func IncCodeAttempt(outcome string) { codeAttemptsTotal.WithLabelValues(outcome).Inc() }

// IncSensorFault counts a degraded sensor read.
func IncSensorFault(channel string) { sensorFaultsTotal.WithLabelValues(channel).Inc() }

// IncLogWriteFailure counts an event log append failure.
func IncLogWriteFailure() { logWriteFailures.Inc() }

// IncMQTTPublish counts an MQTT publish attempt outcome.
func IncMQTTPublish(outcome string) { mqttPublishTotal.WithLabelValues(outcome).Inc() }

// SetMQTTBufferDepth records the reconnect buffer depth.
func SetMQTTBufferDepth(n int) { mqttBufferDepth.Set(float64(n)) }
