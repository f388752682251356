// Package transport defines a small broker capability set in place of a
// per-broker Engine subclass hierarchy: connect, wire a participant's ports
// to broker primitives, publish, and report connection state.
// transport/amqp and transport/mqtt each implement Transport.
package transport

import "github.com/msgflo/msgflo-cpp/participant"

// Delivery is handed from a transport to the engine for every inbound
// broker message; the engine wraps it in a message.Message and invokes the
// owning registration's Handler.
type Delivery struct {
	Role    string
	PortID  string
	Payload []byte
	// Headers carries broker message headers, used to propagate an
	// OpenTelemetry span context into the engine's dispatch loop (AMQP only;
	// MQTT 3.1.x has no header concept and Headers is always nil there).
	Headers map[string]interface{}
	Ack     func() error
	Nack    func() error
}

// DiscoveryMessage is the fixed envelope published to "fbp".
type DiscoveryMessage struct {
	Protocol string      `json:"protocol"`
	Command  string      `json:"command"`
	Payload  interface{} `json:"payload"`
}

// NewDiscoveryMessage wraps a normalized Definition in its discovery
// envelope.
func NewDiscoveryMessage(def participant.Definition) DiscoveryMessage {
	return DiscoveryMessage{Protocol: "discovery", Command: "participant", Payload: def}
}

// Transport is implemented once per broker family. The engine calls Connect
// and Wire from its Launch goroutine and reads Deliveries on that same loop;
// the AMQP transport also calls its own Connect and Wire from its reconnect
// goroutine.
type Transport interface {
	// Connect establishes the broker connection. It may be called again
	// after a connection loss to reconnect.
	Connect() error

	// Wire declares/subscribes the broker primitives for one registration's
	// ports and arms its consumer(s).
	Wire(reg participant.Registration) error

	// Publish sends payload to the broker address named by queue. headers
	// carries trace-context propagation data; transports without a header
	// concept (MQTT) ignore it.
	Publish(queue string, payload []byte, headers map[string]interface{}) error

	// Deliveries returns the channel the engine drains for inbound
	// messages. A transport must keep delivering on it after a reconnect.
	Deliveries() <-chan Delivery

	// Connected reports current connection state.
	Connected() bool

	// Close tears the transport down, releasing its connection and any
	// process-wide resources it holds (e.g. the MQTT library refcount).
	Close() error
}
