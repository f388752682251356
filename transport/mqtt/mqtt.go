// Package mqtt implements transport.Transport over MQTT 3.1.x using
// eclipse/paho.mqtt.golang. Grounded on
// Chris-Alexander-Pop-microservices-library's pkg/iot/protocols/mqtt
// wrapper, generalized from one fixed topic set to one subscription per
// registered inport.
package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/msgflo/msgflo-cpp/engine"
	"github.com/msgflo/msgflo-cpp/message"
	"github.com/msgflo/msgflo-cpp/participant"
	"github.com/msgflo/msgflo-cpp/transport"
)

const qosAtMostOnce = 0

const defaultConnectTimeout = 10 * time.Second

// Transport is the MQTT implementation of transport.Transport. Ack/Nack on
// deliveries are no-ops: QoS 0 has no subscriber-side acknowledgement, and
// this transport deliberately doesn't expose QoS 1/2.
type Transport struct {
	opts   engine.MQTTOptions
	logger *zap.Logger

	mu        sync.Mutex
	client    paho.Client
	connected bool

	deliveries chan transport.Delivery

	// portsByTopic supports exact-match dispatch only; wildcard topics
	// ("+", "#") are unsupported.
	portsByTopic map[string]portRef
}

type portRef struct {
	role   string
	portID string
}

// New builds an unconnected MQTT transport from parsed broker options.
func New(opts engine.MQTTOptions, logger *zap.Logger) *Transport {
	return &Transport{
		opts:         opts,
		logger:       logger,
		deliveries:   make(chan transport.Delivery, 64),
		portsByTopic: make(map[string]portRef),
	}
}

// Connect dials the broker and blocks until CONNACK or failure.
func (t *Transport) Connect() error {
	acquireLib(nil)

	clientOpts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", t.opts.Host, t.opts.Port)).
		SetCleanSession(t.opts.CleanSession).
		SetKeepAlive(secondsDuration(t.opts.KeepAlive)).
		SetAutoReconnect(true)

	if t.opts.ClientID != "" {
		clientOpts.SetClientID(t.opts.ClientID)
	}
	if t.opts.Username != "" {
		clientOpts.SetUsername(t.opts.Username)
		clientOpts.SetPassword(t.opts.Password)
	}

	clientOpts.SetOnConnectHandler(func(paho.Client) {
		t.mu.Lock()
		t.connected = true
		t.mu.Unlock()
	})
	clientOpts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		t.logger.Warn("mqtt connection lost", zap.Error(err))
	})

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	t.mu.Lock()
	t.client = client
	t.connected = true
	t.mu.Unlock()

	return nil
}

// Wire subscribes to every inport's topic at QoS 0 and records the
// role/port it dispatches to.
func (t *Transport) Wire(reg participant.Registration) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return fmt.Errorf("mqtt transport not connected")
	}

	for _, port := range reg.Definition.Inports {
		topic := port.Queue
		t.mu.Lock()
		t.portsByTopic[topic] = portRef{role: reg.Definition.Role, portID: port.ID}
		t.mu.Unlock()

		token := client.Subscribe(topic, qosAtMostOnce, t.onMessage)
		if !token.WaitTimeout(defaultConnectTimeout) {
			return fmt.Errorf("subscribe to %q timed out", topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe to %q: %w", topic, err)
		}
	}

	return nil
}

// onMessage dispatches an inbound PUBLISH by exact topic match: the first
// (only) port whose queue equals the publish topic. Ack/Nack are no-ops.
func (t *Transport) onMessage(_ paho.Client, msg paho.Message) {
	t.mu.Lock()
	ref, ok := t.portsByTopic[msg.Topic()]
	t.mu.Unlock()
	if !ok {
		return
	}

	t.deliveries <- transport.Delivery{
		Role:    ref.role,
		PortID:  ref.portID,
		Payload: msg.Payload(),
		Ack:     message.NoopAcker{}.Ack,
		Nack:    message.NoopAcker{}.Nack,
	}
}

// Publish sends payload to topic queue at QoS 0, retain false. MQTT 3.1.x
// has no header concept, so headers is ignored.
func (t *Transport) Publish(queue string, payload []byte, headers map[string]interface{}) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return fmt.Errorf("mqtt transport not connected")
	}

	token := client.Publish(queue, qosAtMostOnce, false, payload)
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("publish to %q timed out", queue)
	}
	return token.Error()
}

// Deliveries returns the channel the engine drains for inbound messages.
func (t *Transport) Deliveries() <-chan transport.Delivery {
	return t.deliveries
}

// Connected reports whether CONNACK has succeeded and no loss has been
// observed since.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Close disconnects the client and releases the process-wide library
// reference.
func (t *Transport) Close() error {
	t.mu.Lock()
	client := t.client
	t.connected = false
	t.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
	releaseLib(nil)
	return nil
}

func secondsDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

var _ transport.Transport = (*Transport)(nil)
