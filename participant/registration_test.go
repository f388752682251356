package participant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsNormalizedDefinition(t *testing.T) {
	def := Normalize(NewDefinition("repeat", "CppRepeat"))
	assert.NoError(t, Validate(def))
}

func TestValidateRejectsEmptyQueue(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")
	// deliberately skip Normalize: queues are still empty. The id is set by
	// hand so Validate gets past its id check to the queue check.
	def.ID = "repeat-1"
	err := Validate(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue")
}

func TestValidateRejectsEmptyRole(t *testing.T) {
	def := Normalize(NewDefinition("", "CppRepeat"))
	err := Validate(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role")
}

func TestValidateRejectsDuplicatePortIDs(t *testing.T) {
	def := Normalize(NewDefinition("repeat", "CppRepeat"))
	def.Outports = append(def.Outports, Port{ID: "out", Type: "any", Queue: "repeat.OUT2"})

	err := Validate(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestOutportByID(t *testing.T) {
	def := Normalize(NewDefinition("repeat", "CppRepeat"))

	p, ok := def.OutportByID("out")
	require.True(t, ok)
	assert.Equal(t, "repeat.OUT", p.Queue)

	_, ok = def.OutportByID("nope")
	assert.False(t, ok)
}

func TestInportByID(t *testing.T) {
	def := Normalize(NewDefinition("repeat", "CppRepeat"))

	p, ok := def.InportByID("in")
	require.True(t, ok)
	assert.Equal(t, "repeat.IN", p.Queue)
}
