// Package message implements the per-delivery view handed to a
// participant's Handler: a single struct plus a small Acker capability
// interface, rather than a per-broker message subclass hierarchy.
package message

import "encoding/json"

// Acker is implemented by whatever owns the broker delivery tag: the AMQP
// transport acks/rejects a delivery tag, the MQTT transport's Ack/Nack are
// no-ops.
type Acker interface {
	Ack() error
	Nack() error
}

// Message is the view a Handler receives. It satisfies participant.Message
// without importing that package, so neither package depends on the other
// (engine wires the two together).
type Message struct {
	port    string
	payload []byte
	acker   Acker
}

// New wraps payload with the port it arrived on and the Acker that owns its
// delivery tag (or a no-op Acker for MQTT).
func New(port string, payload []byte, acker Acker) Message {
	return Message{port: port, payload: payload, acker: acker}
}

// Port is the inport id the message was delivered on.
func (m Message) Port() string {
	return m.port
}

// Payload returns the raw delivery bytes.
func (m Message) Payload() []byte {
	return m.payload
}

// AsString decodes the payload as UTF-8 text.
func (m Message) AsString() string {
	return string(m.payload)
}

// AsJSON unmarshals the payload into v, surfacing a SerializationError-class
// failure to the caller rather than panicking.
func (m Message) AsJSON(v interface{}) error {
	return json.Unmarshal(m.payload, v)
}

// Ack acknowledges successful processing. Exactly one of Ack/Nack must be
// called per delivery.
func (m Message) Ack() error {
	return m.acker.Ack()
}

// Nack signals failed processing; on AMQP this rejects the delivery
// without requeue, on MQTT it is a no-op.
func (m Message) Nack() error {
	return m.acker.Nack()
}

// NoopAcker is the Acker used by the MQTT transport, where QoS 0 deliveries
// have no broker-level ack/nack.
type NoopAcker struct{}

func (NoopAcker) Ack() error  { return nil }
func (NoopAcker) Nack() error { return nil }
