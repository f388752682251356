// Package amqp implements transport.Transport over AMQP 0-9-1. Grounded on
// common/broker.Connect and kitchen/consumer.go's declare-bind-consume
// sequence, generalized from a fixed set of order-service queues to one
// queue/exchange pair per registered port.
package amqp

import (
	"context"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/msgflo/msgflo-cpp/participant"
	"github.com/msgflo/msgflo-cpp/transport"
)

// defaultExchange is AMQP's unnamed direct exchange, used for discovery
// publishes routed by queue name.
const defaultExchange = ""

// discoveryRoutingKey is the routing key discovery messages are published
// with on the default exchange.
const discoveryRoutingKey = "fbp"

// Transport is the AMQP implementation of transport.Transport. One
// Transport owns one connection and one channel; QoS is prefetch=1 so
// deliveries are processed strictly serially.
type Transport struct {
	url    string
	logger *zap.Logger

	mu            sync.Mutex
	conn          *amqp.Connection
	ch            *amqp.Channel
	connected     bool
	closed        bool
	registrations []participant.Registration

	deliveries chan transport.Delivery
}

// New builds an unconnected AMQP transport for the given broker URL.
func New(url string, logger *zap.Logger) *Transport {
	return &Transport{
		url:        url,
		logger:     logger,
		deliveries: make(chan transport.Delivery, 64),
	}
}

// Connect dials the broker, opens a channel, and sets prefetch=1. Safe to
// call again after a connection loss to reconnect.
func (t *Transport) Connect() error {
	conn, err := amqp.Dial(t.url)
	if err != nil {
		return fmt.Errorf("dial amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open amqp channel: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("set amqp qos: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.ch = ch
	t.connected = true
	t.mu.Unlock()

	go t.watchConnectionLoss(conn)

	return nil
}

// watchConnectionLoss marks the transport disconnected once the broker
// connection closes, so discovery ticks stop firing, then reconnects with
// backoff and re-wires every previously registered participant: the
// exchange and queue declarations and the consumers repeat as if connecting
// for the first time. Discovery announcements resume on the engine's next
// discovery tick once Connected reports true again.
func (t *Transport) watchConnectionLoss(conn *amqp.Connection) {
	err := <-conn.NotifyClose(make(chan *amqp.Error, 1))

	t.mu.Lock()
	stillCurrent := t.conn == conn
	if stillCurrent {
		t.connected = false
	}
	registrations := append([]participant.Registration(nil), t.registrations...)
	t.mu.Unlock()

	if !stillCurrent {
		return
	}
	if err != nil {
		t.logger.Warn("amqp connection lost, reconnecting", zap.Error(err))
	}

	t.reconnect(registrations)
}

// reconnect retries Connect with exponential backoff until it succeeds,
// then re-declares and re-consumes every registration's ports.
func (t *Transport) reconnect(registrations []participant.Registration) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // retry indefinitely; Close stops the transport from outside

	err := backoff.Retry(func() error {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return backoff.Permanent(fmt.Errorf("transport closed"))
		}
		if connErr := t.Connect(); connErr != nil {
			t.logger.Warn("amqp reconnect attempt failed", zap.Error(connErr))
			return connErr
		}
		return nil
	}, b)
	if err != nil {
		t.logger.Error("amqp reconnect gave up", zap.Error(err))
		return
	}

	for _, reg := range registrations {
		if err := t.Wire(reg); err != nil {
			t.logger.Error("failed to re-wire participant after reconnect", zap.String("role", reg.Definition.Role), zap.Error(err))
		}
	}
}

// Wire declares a durable queue per inport and a durable fanout exchange
// per outport, then arms a consumer on every inport queue.
func (t *Transport) Wire(reg participant.Registration) error {
	t.mu.Lock()
	ch := t.ch
	t.mu.Unlock()
	if ch == nil {
		return fmt.Errorf("amqp transport not connected")
	}

	for _, port := range reg.Definition.Outports {
		if err := ch.ExchangeDeclare(port.Queue, "fanout", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %q: %w", port.Queue, err)
		}
	}

	for _, port := range reg.Definition.Inports {
		if _, err := ch.QueueDeclare(port.Queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %q: %w", port.Queue, err)
		}

		deliveries, err := ch.Consume(port.Queue, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume queue %q: %w", port.Queue, err)
		}
		go t.relay(reg.Definition.Role, port.ID, deliveries)
	}

	t.mu.Lock()
	alreadyTracked := false
	for _, existing := range t.registrations {
		if existing.Definition.ID == reg.Definition.ID {
			alreadyTracked = true
			break
		}
	}
	if !alreadyTracked {
		t.registrations = append(t.registrations, reg)
	}
	t.mu.Unlock()

	return nil
}

// relay forwards one port's AMQP deliveries onto the shared Deliveries
// channel, wrapping each with ack/nack closures over its delivery tag.
func (t *Transport) relay(role, portID string, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		d := d
		t.deliveries <- transport.Delivery{
			Role:    role,
			PortID:  portID,
			Payload: d.Body,
			Headers: map[string]interface{}(d.Headers),
			Ack: func() error {
				return d.Ack(false)
			},
			Nack: func() error {
				// Reject without requeue rather than leaving the delivery
				// unacked forever.
				return d.Reject(false)
			},
		}
	}
}

// Publish sends payload to the fanout exchange named queue (an outport's
// queue), or to the default exchange with routing key queue for the fixed
// "fbp" discovery destination.
func (t *Transport) Publish(queue string, payload []byte, headers map[string]interface{}) error {
	t.mu.Lock()
	ch := t.ch
	t.mu.Unlock()
	if ch == nil {
		return fmt.Errorf("amqp transport not connected")
	}

	exchange := queue
	routingKey := ""
	if queue == discoveryRoutingKey {
		exchange = defaultExchange
		routingKey = discoveryRoutingKey
	}

	return ch.PublishWithContext(context.Background(), exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		Body:        payload,
		Headers:     amqp.Table(headers),
	})
}

// Deliveries returns the channel the engine drains for inbound messages.
func (t *Transport) Deliveries() <-chan transport.Delivery {
	return t.deliveries
}

// Connected reports whether the AMQP connection is currently up.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Close shuts down the channel and connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	ch, conn := t.ch, t.conn
	t.connected = false
	t.closed = true
	t.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}

var _ transport.Transport = (*Transport)(nil)
