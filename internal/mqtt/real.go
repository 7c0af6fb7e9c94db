package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sweeney/alarm-panel/internal/log"
	"github.com/sweeney/alarm-panel/internal/metrics"
	"github.com/sweeney/alarm-panel/internal/panel"
)

// bufferCapacity bounds how many messages survive a broker outage.
// Beyond this the oldest are dropped; the event log on disk remains the
// source of truth.
const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker. Messages that
// cannot be delivered are queued and replayed once the connection
// returns.
type RealPublisher struct {
	client      paho.Client
	eventTopic  string
	stateTopic  string
	systemTopic string
	logger      zerolog.Logger

	mu    sync.Mutex
	queue *replayQueue
}

// NewRealPublisher creates a publisher for the given broker. An
// unreachable broker is not fatal: the client keeps dialing in the
// background and publishes buffer until the connection lands. The will
// publishes a SHUTDOWN system event if the broker loses us without a
// clean disconnect.
func NewRealPublisher(broker, panelID string) (*RealPublisher, error) {
	p := &RealPublisher{
		eventTopic:  EventTopic(panelID),
		stateTopic:  StateTopic(panelID),
		systemTopic: SystemTopic(panelID),
		logger:      log.WithComponent("mqtt"),
		queue:       newReplayQueue(bufferCapacity),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("alarm-panel-" + panelID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(p.systemTopic, will, 1, false).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	client := paho.NewClient(opts)
	p.client = client

	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		// ConnectRetry keeps dialing; the panel must protect the house
		// whether or not telemetry is up.
		p.logger.Warn().Str("broker", broker).Msg("broker not reachable yet, continuing with buffered publishes")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// PublishEvent sends one panel event, tagged with a fresh ID so
// consumers can deduplicate replays.
func (p *RealPublisher) PublishEvent(event panel.Event) error {
	payload, err := FormatEventPayload(event, uuid.NewString())
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}
	// QoS 1: losing an alarm event is worse than the odd duplicate.
	return p.publish(p.eventTopic, 1, false, payload)
}

// PublishState sends the retained arm state summary.
func (p *RealPublisher) PublishState(st State) error {
	payload, err := FormatStatePayload(st)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	return p.publish(p.stateTopic, 1, true, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(p.systemTopic, 1, event.Retained, payload)
}

// publish delivers one message, queuing it for replay when the broker
// is unreachable. A queued message is not an error: the caller's work
// is deferred, not lost.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.enqueue(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.enqueue(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		metrics.IncMQTTPublish("timeout")
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.enqueue(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		metrics.IncMQTTPublish("error")
		return fmt.Errorf("publish: %w", err)
	}

	metrics.IncMQTTPublish("ok")
	return nil
}

func (p *RealPublisher) enqueue(msg queuedMsg) {
	p.mu.Lock()
	dropped := p.queue.add(msg)
	depth := p.queue.depth()
	p.mu.Unlock()

	if dropped {
		p.logger.Warn().Int("capacity", bufferCapacity).Msg("offline queue full, dropping oldest messages")
	}
	metrics.IncMQTTPublish("buffered")
	metrics.SetMQTTBufferDepth(depth)
}

// onConnect replays messages queued while the broker was away, oldest
// first. A replay failure requeues the remainder for the next
// reconnect.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	msgs := p.queue.drain()
	p.mu.Unlock()
	metrics.SetMQTTBufferDepth(0)

	if len(msgs) == 0 {
		return
	}
	p.logger.Info().Int("count", len(msgs)).Msg("replaying queued messages")

	for i, msg := range msgs {
		token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			p.mu.Lock()
			for _, m := range msgs[i:] {
				p.queue.add(m)
			}
			depth := p.queue.depth()
			p.mu.Unlock()
			metrics.SetMQTTBufferDepth(depth)
			p.logger.Warn().Int("requeued", len(msgs)-i).Msg("replay interrupted")
			return
		}
		metrics.IncMQTTPublish("replayed")
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.logger.Warn().Err(err).Msg("broker connection lost")
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
