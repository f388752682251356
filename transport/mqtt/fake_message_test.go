package mqtt

import "github.com/msgflo/msgflo-cpp/participant"

// fakeMessage is a minimal paho.Message stand-in for exercising onMessage
// without a live broker connection.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool     { return false }
func (m fakeMessage) Qos() byte           { return 0 }
func (m fakeMessage) Retained() bool      { return false }
func (m fakeMessage) Topic() string       { return m.topic }
func (m fakeMessage) MessageID() uint16   { return 0 }
func (m fakeMessage) Payload() []byte     { return m.payload }
func (m fakeMessage) Ack()                {}

func makeTestRegistration() participant.Registration {
	def := participant.Normalize(participant.NewDefinition("repeat", "CppRepeat"))
	return participant.NewRegistration(def, func(string, participant.Message) {})
}
