package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/msgflo/msgflo-cpp/engine"
)

func TestNewTransportStartsDisconnected(t *testing.T) {
	tr := New(engine.MQTTOptions{Host: "localhost", Port: 1883}, zap.NewNop())
	assert.False(t, tr.Connected())
}

func TestPublishBeforeConnectFails(t *testing.T) {
	tr := New(engine.MQTTOptions{Host: "localhost", Port: 1883}, zap.NewNop())
	err := tr.Publish("repeat.OUT", []byte("hi"), nil)
	assert.Error(t, err)
}

func TestWireBeforeConnectFails(t *testing.T) {
	tr := New(engine.MQTTOptions{Host: "localhost", Port: 1883}, zap.NewNop())
	err := tr.Wire(makeTestRegistration())
	assert.Error(t, err)
}

func TestOnMessageIgnoresUnknownTopic(t *testing.T) {
	tr := New(engine.MQTTOptions{Host: "localhost", Port: 1883}, zap.NewNop())
	tr.onMessage(nil, fakeMessage{topic: "unregistered.TOPIC", payload: []byte("x")})

	select {
	case <-tr.Deliveries():
		t.Fatal("expected no delivery for an unregistered topic")
	default:
	}
}

func TestOnMessageDispatchesKnownTopic(t *testing.T) {
	tr := New(engine.MQTTOptions{Host: "localhost", Port: 1883}, zap.NewNop())
	tr.portsByTopic["repeat.IN"] = portRef{role: "repeat", portID: "in"}

	tr.onMessage(nil, fakeMessage{topic: "repeat.IN", payload: []byte("hello")})

	d := <-tr.Deliveries()
	assert.Equal(t, "repeat", d.Role)
	assert.Equal(t, "in", d.PortID)
	assert.Equal(t, []byte("hello"), d.Payload)
	assert.NoError(t, d.Ack())
	assert.NoError(t, d.Nack())
}
