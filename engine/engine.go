// Package engine is the broker-agnostic core of the library: the
// participant registry, the message-delivery/ack pipeline, the
// discovery-announcement loop, and the broker-URL dispatch that picks a
// transport. Grounded on the service bootstrap style of common/broker and
// kitchen/main.go, generalized from a fixed order-service wiring to an
// arbitrary set of registered participants.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/msgflo/msgflo-cpp/internal/metrics"
	"github.com/msgflo/msgflo-cpp/internal/tracing"
	"github.com/msgflo/msgflo-cpp/message"
	"github.com/msgflo/msgflo-cpp/participant"
	"github.com/msgflo/msgflo-cpp/transport"
)

// State is the engine's lifecycle: Created -> Configured -> Running ->
// Terminated.
type State int

const (
	StateCreated State = iota
	StateConfigured
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateConfigured:
		return "Configured"
	case StateRunning:
		return "Running"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// TransportFactory builds the Transport selected by a resolved broker URL.
// engine.New takes one so transport/amqp and transport/mqtt stay free of an
// import cycle back onto engine.
type TransportFactory func(BrokerURL, *zap.Logger) (transport.Transport, error)

// Engine is the transport-neutral participant host: register participants,
// then Launch to connect, wire, and run the single-threaded dispatch loop.
type Engine struct {
	config  Config
	logger  *zap.Logger
	metrics *metrics.Engine
	factory TransportFactory

	mu            sync.Mutex
	state         State
	registrations []participant.Registration
	tr            transport.Transport

	stop     chan struct{}
	stopOnce sync.Once
}

// New validates config enough to resolve a broker URL and returns an Engine
// in the Created state. It does not connect; that happens in Launch.
func New(config Config, logger *zap.Logger, factory TransportFactory) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := ResolveBrokerURL(config.URL); err != nil {
		return nil, err
	}
	return &Engine{
		config:  config,
		logger:  logger,
		metrics: metrics.New("engine"),
		factory: factory,
		state:   StateCreated,
		stop:    make(chan struct{}),
	}, nil
}

// RegisterParticipant normalizes def, validates it against the Definition
// invariants plus cross-registration id uniqueness, and appends it to the
// registry. Must be called before Launch.
func (e *Engine) RegisterParticipant(def participant.Definition, handler participant.Handler) (participant.Registration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateCreated && e.state != StateConfigured {
		return participant.Registration{}, errInvalidConfig("participants must be registered before launch", nil)
	}

	reg := participant.NewRegistration(def, handler)
	if err := participant.Validate(reg.Definition); err != nil {
		return participant.Registration{}, errInvalidConfig(err.Error(), nil)
	}
	for _, existing := range e.registrations {
		if existing.Definition.ID == reg.Definition.ID {
			return participant.Registration{}, errInvalidConfig(fmt.Sprintf("participant id %q already registered", reg.Definition.ID), nil)
		}
	}

	e.registrations = append(e.registrations, reg)
	e.state = StateConfigured
	return reg, nil
}

// Connected reports the transport's current connection state. Before
// Launch it always reports false.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tr != nil && e.tr.Connected()
}

// Send publishes payload on the named outport of role. It fails with
// KindUnknownPort if the participant or its port doesn't exist.
func (e *Engine) Send(role, portID string, payload []byte) error {
	e.mu.Lock()
	reg, ok := e.findRegistration(role)
	tr := e.tr
	e.mu.Unlock()

	if !ok {
		return errUnknownPort(fmt.Sprintf("no participant registered with role %q", role))
	}
	port, ok := reg.Definition.OutportByID(portID)
	if !ok {
		return errUnknownPort(fmt.Sprintf("participant %q has no outport %q", role, portID))
	}
	if tr == nil {
		return errTransport("engine not launched", nil)
	}
	headers := tracing.Inject(context.Background())
	if err := tr.Publish(port.Queue, payload, headers); err != nil {
		e.metrics.MessagesNacked.WithLabelValues(role).Inc()
		return errTransport(fmt.Sprintf("publish to %q failed", port.Queue), err)
	}
	e.metrics.MessagesPublished.WithLabelValues(role).Inc()
	return nil
}

func (e *Engine) findRegistration(role string) (participant.Registration, bool) {
	for _, reg := range e.registrations {
		if reg.Definition.Role == role {
			return reg, true
		}
	}
	return participant.Registration{}, false
}

// Launch connects the transport, wires every registration's ports, starts
// the discovery loop, and runs the single-threaded dispatch loop until Close
// is called. At-most-once per Engine.
func (e *Engine) Launch() error {
	e.mu.Lock()
	if e.state == StateRunning || e.state == StateTerminated {
		e.mu.Unlock()
		return errInvalidConfig("launch called more than once", nil)
	}

	brokerURL, err := ResolveBrokerURL(e.config.URL)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	tr, err := e.factory(brokerURL, e.logger)
	if err != nil {
		e.mu.Unlock()
		return errTransport("failed to build transport", err)
	}
	e.tr = tr
	e.state = StateRunning
	registrations := append([]participant.Registration(nil), e.registrations...)
	e.mu.Unlock()

	if err := tr.Connect(); err != nil {
		return errTransport("initial connect failed", err)
	}
	for _, reg := range registrations {
		if err := tr.Wire(reg); err != nil {
			return errTransport(fmt.Sprintf("failed to wire participant %q", reg.Definition.Role), err)
		}
	}
	e.metrics.Connected.Set(1)

	discovery := newDiscoveryLoop(e.config.announceInterval(), tr, registrations, e.logger, e.metrics)
	discovery.announceNow()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			e.metrics.Connected.Set(0)
			e.setState(StateTerminated)
			return nil
		case d, ok := <-tr.Deliveries():
			if !ok {
				e.setState(StateTerminated)
				return nil
			}
			e.dispatch(registrations, d)
		case <-ticker.C:
			if tr.Connected() {
				e.metrics.Connected.Set(1)
			} else {
				e.metrics.Connected.Set(0)
			}
			discovery.tick()
		}
	}
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// dispatch invokes the handler owning d.Role/d.PortID. A panicking handler
// is recovered and logged, and the delivery is left unacked — the loop
// itself must never die from a bad handler.
func (e *Engine) dispatch(registrations []participant.Registration, d transport.Delivery) {
	var reg participant.Registration
	found := false
	for _, r := range registrations {
		if r.Definition.Role == d.Role {
			reg = r
			found = true
			break
		}
	}
	if !found {
		e.logger.Warn("delivery for unknown participant", zap.String("role", d.Role))
		return
	}

	msg := message.New(d.PortID, d.Payload, ackerFromDelivery(d))

	ctx := tracing.Extract(context.Background(), d.Headers)
	_, span := tracing.Tracer("msgflo-engine").Start(ctx, "participant.handle",
		trace.WithAttributes(attribute.String("msgflo.role", d.Role), attribute.String("msgflo.port", d.PortID)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, fmt.Sprintf("handler panicked: %v", r))
			e.logger.Error("handler panicked", zap.String("role", d.Role), zap.Any("panic", r))
			e.metrics.MessagesNacked.WithLabelValues(d.Role).Inc()
		}
	}()

	e.metrics.MessagesConsumed.WithLabelValues(d.Role).Inc()
	reg.Handler(d.PortID, msg)
}

type delegatingAcker struct {
	ack  func() error
	nack func() error
}

func (a delegatingAcker) Ack() error  { return a.ack() }
func (a delegatingAcker) Nack() error { return a.nack() }

func ackerFromDelivery(d transport.Delivery) message.Acker {
	return delegatingAcker{ack: d.Ack, nack: d.Nack}
}

// Close stops the dispatch loop and releases the transport. It is safe to
// call once after Launch returns control to another goroutine, or to signal
// a running Launch to stop.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.state == StateTerminated {
		e.mu.Unlock()
		return nil
	}
	tr := e.tr
	e.mu.Unlock()

	e.stopOnce.Do(func() { close(e.stop) })
	if tr != nil {
		return tr.Close()
	}
	return nil
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
