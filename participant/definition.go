// Package participant holds the broker-agnostic data model of an FBP
// participant: Port, Definition, and their normalization into a form safe
// to register with an engine.
package participant

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Port is a named input or output of a participant, bound to a broker
// address (an AMQP queue/exchange name or an MQTT topic).
type Port struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Queue string `json:"queue"`
}

// Definition describes a participant: its identity in the flow graph and
// its ports. Field order here is load-bearing — it is the exact wire order
// of the discovery JSON.
type Definition struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Component string `json:"component"`
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	Inports   []Port `json:"inports"`
	Outports  []Port `json:"outports"`
}

// NewDefinition returns a Definition with the conventional default ports
// and icon: one inport "in:any" and two outports "out:any", "error:error".
func NewDefinition(role, component string) Definition {
	return Definition{
		Role:      role,
		Component: component,
		Icon:      "file-word-o",
		Inports: []Port{
			{ID: "in", Type: "any"},
		},
		Outports: []Port{
			{ID: "out", Type: "any"},
			{ID: "error", Type: "error"},
		},
	}
}

// Normalize returns a copy of def with its id and every port queue filled
// in. It never mutates def. Calling Normalize on an already-normalized
// Definition returns an equal value (idempotent).
func Normalize(def Definition) Definition {
	out := def
	out.Inports = append([]Port(nil), def.Inports...)
	out.Outports = append([]Port(nil), def.Outports...)

	if out.ID == "" {
		out.ID = fmt.Sprintf("%s-%s", out.Role, randomSuffix())
	}

	for i := range out.Inports {
		out.Inports[i] = normalizePort(out.Inports[i], out.Role)
	}
	for i := range out.Outports {
		out.Outports[i] = normalizePort(out.Outports[i], out.Role)
	}

	return out
}

func normalizePort(p Port, role string) Port {
	if p.Queue == "" {
		p.Queue = fmt.Sprintf("%s.%s", role, strings.ToUpper(p.ID))
	}
	return p
}

// randomSuffix returns 8 alphanumeric characters, used to build a
// participant id when none was supplied. Built from a uuid so collisions
// within a process are effectively impossible without hand-rolling an RNG.
func randomSuffix() string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	if len(hex) > 8 {
		return hex[:8]
	}
	return hex
}
