package participant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefinitionDefaults(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")

	require.Len(t, def.Inports, 1)
	assert.Equal(t, "in", def.Inports[0].ID)
	assert.Equal(t, "any", def.Inports[0].Type)

	require.Len(t, def.Outports, 2)
	assert.Equal(t, "out", def.Outports[0].ID)
	assert.Equal(t, "error", def.Outports[1].ID)
	assert.Equal(t, "error", def.Outports[1].Type)

	assert.Equal(t, "file-word-o", def.Icon)
	assert.Equal(t, "", def.Label)
}

func TestNormalizeAssignsID(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")
	norm := Normalize(def)

	assert.NotEmpty(t, norm.ID)
	assert.Contains(t, norm.ID, "repeat-")
	assert.Equal(t, "", def.ID, "original definition must not be mutated")
}

func TestNormalizeKeepsExplicitID(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")
	def.ID = "repeat-fixed"

	norm := Normalize(def)

	assert.Equal(t, "repeat-fixed", norm.ID)
}

func TestNormalizeDerivesPortQueues(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")
	norm := Normalize(def)

	assert.Equal(t, "repeat.IN", norm.Inports[0].Queue)
	assert.Equal(t, "repeat.OUT", norm.Outports[0].Queue)
	assert.Equal(t, "repeat.ERROR", norm.Outports[1].Queue)
}

func TestNormalizeKeepsExplicitQueue(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")
	def.Inports[0].Queue = "custom.queue"

	norm := Normalize(def)

	assert.Equal(t, "custom.queue", norm.Inports[0].Queue)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")

	once := Normalize(def)
	twice := Normalize(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeNeverMutatesCaller(t *testing.T) {
	def := NewDefinition("repeat", "CppRepeat")
	original := def.Inports[0].Queue

	_ = Normalize(def)

	assert.Equal(t, original, def.Inports[0].Queue)
}

func TestDefinitionJSONFieldOrder(t *testing.T) {
	def := Normalize(NewDefinition("repeat", "CppRepeat"))

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// encoding/json.Marshal on a struct emits fields in declaration order;
	// this test pins that order against the discovery wire contract.
	expectedPrefix := `{"id":`
	assert.Contains(t, string(data)[:len(expectedPrefix)], "id")

	order := []string{"id", "role", "component", "label", "icon", "inports", "outports"}
	idx := 0
	for _, key := range order {
		pos := indexOfKey(string(data), key)
		require.GreaterOrEqual(t, pos, idx, "key %q out of order", key)
		idx = pos
	}
}

func TestDefinitionJSONRoundTrip(t *testing.T) {
	def := Normalize(NewDefinition("repeat", "CppRepeat"))

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var roundTripped Definition
	require.NoError(t, json.Unmarshal(data, &roundTripped))

	assert.Equal(t, def, roundTripped)
}

func TestPortJSONFields(t *testing.T) {
	p := Port{ID: "in", Type: "any", Queue: "repeat.IN"}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"in","type":"any","queue":"repeat.IN"}`, string(data))
}

func indexOfKey(s, key string) int {
	marker := `"` + key + `"`
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return i
		}
	}
	return -1
}
