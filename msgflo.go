// Package msgflo is the library's public entry point: it wires the
// transport-neutral engine package to the concrete AMQP and MQTT transports
// and re-exports the handful of types a host needs to declare a
// participant: build a Definition, CreateEngine, RegisterParticipant,
// Launch.
package msgflo

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/msgflo/msgflo-cpp/engine"
	"github.com/msgflo/msgflo-cpp/participant"
	"github.com/msgflo/msgflo-cpp/transport"
	transportamqp "github.com/msgflo/msgflo-cpp/transport/amqp"
	transportmqtt "github.com/msgflo/msgflo-cpp/transport/mqtt"
)

// Re-exported data model types, so a host only imports this one package for
// the common case.
type (
	Definition = participant.Definition
	Port       = participant.Port
	Handler    = participant.Handler
	Message    = participant.Message
	Config     = engine.Config
)

// NewDefinition builds a Definition with the conventional default ports.
func NewDefinition(role, component string) Definition {
	return participant.NewDefinition(role, component)
}

// NewConfig builds a Config with its env-driven and numeric defaults.
func NewConfig() Config {
	return engine.NewConfig()
}

// CreateEngine checks that config's broker URL resolves and returns an
// Engine ready for RegisterParticipant calls. The matching transport is
// built by selectTransport when Launch runs. logger may be nil, in which
// case nothing is logged.
func CreateEngine(config Config, logger *zap.Logger) (*engine.Engine, error) {
	return engine.New(config, logger, selectTransport)
}

// selectTransport is the engine.TransportFactory implementation: it lives
// here, not in package engine, because transport/mqtt imports engine for
// MQTTOptions, and engine must not import the transports back.
func selectTransport(broker engine.BrokerURL, logger *zap.Logger) (transport.Transport, error) {
	switch broker.Scheme {
	case engine.SchemeAMQP:
		return transportamqp.New(broker.AMQPURL, logger), nil
	case engine.SchemeMQTT:
		return transportmqtt.New(broker.MQTT, logger), nil
	default:
		return nil, fmt.Errorf("unhandled broker scheme %v", broker.Scheme)
	}
}
