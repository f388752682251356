package participant

import "fmt"

// Handler processes one inbound message on one of a participant's inports.
// Handlers run synchronously on the engine's event loop and must call Ack
// or Nack on the message exactly once before returning.
type Handler func(portID string, msg Message)

// Message is the minimal view a Handler needs of an inbound delivery; it is
// satisfied by message.Message (neither package imports the other; the
// engine wires the two together).
type Message interface {
	Payload() []byte
	AsString() string
	AsJSON(v interface{}) error
	Ack() error
	Nack() error
}

// Registration is the immutable record created by an engine when a
// participant is registered: its normalized Definition and its handler.
// It caches no per-transport state; the discovery message is serialized
// again on every announcement. Registration is never mutated after
// construction.
type Registration struct {
	Definition Definition
	Handler    Handler
}

// NewRegistration normalizes def and pairs it with handler. It does not
// validate invariants — callers (engine.RegisterParticipant) do that against
// the full set of existing registrations, since uniqueness is a cross-
// registration property this constructor can't see.
func NewRegistration(def Definition, handler Handler) Registration {
	return Registration{
		Definition: Normalize(def),
		Handler:    handler,
	}
}

// Validate checks the per-definition invariants that don't require
// knowledge of sibling registrations: non-empty port queues,
// non-empty id/role, and unique port ids within each direction.
func Validate(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("participant id must not be empty after normalization")
	}
	if def.Role == "" {
		return fmt.Errorf("participant role must not be empty")
	}

	seenIn := make(map[string]bool, len(def.Inports))
	for _, p := range def.Inports {
		if p.Queue == "" {
			return fmt.Errorf("inport %q has empty queue after normalization", p.ID)
		}
		if seenIn[p.ID] {
			return fmt.Errorf("duplicate inport id %q", p.ID)
		}
		seenIn[p.ID] = true
	}

	seenOut := make(map[string]bool, len(def.Outports))
	for _, p := range def.Outports {
		if p.Queue == "" {
			return fmt.Errorf("outport %q has empty queue after normalization", p.ID)
		}
		if seenOut[p.ID] {
			return fmt.Errorf("duplicate outport id %q", p.ID)
		}
		seenOut[p.ID] = true
	}

	return nil
}

// OutportByID looks up an outport by id, returning ok=false if the participant has
// no such outport (engine.Send's UnknownPort case).
func (d Definition) OutportByID(id string) (Port, bool) {
	for _, p := range d.Outports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// InportByID looks up an inport by id.
func (d Definition) InportByID(id string) (Port, bool) {
	for _, p := range d.Inports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}
