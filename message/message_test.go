package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAcker struct {
	acked  bool
	nacked bool
}

func (a *recordingAcker) Ack() error {
	a.acked = true
	return nil
}

func (a *recordingAcker) Nack() error {
	a.nacked = true
	return nil
}

func TestMessagePayloadAndString(t *testing.T) {
	m := New("in", []byte("hello"), NoopAcker{})

	assert.Equal(t, "in", m.Port())
	assert.Equal(t, []byte("hello"), m.Payload())
	assert.Equal(t, "hello", m.AsString())
}

func TestMessageAsJSON(t *testing.T) {
	m := New("in", []byte(`{"x":1}`), NoopAcker{})

	var v struct {
		X int `json:"x"`
	}
	require.NoError(t, m.AsJSON(&v))
	assert.Equal(t, 1, v.X)
}

func TestMessageAsJSONSerializationError(t *testing.T) {
	m := New("in", []byte("not json"), NoopAcker{})

	var v struct{}
	assert.Error(t, m.AsJSON(&v))
}

func TestMessageAckDelegatesToAcker(t *testing.T) {
	acker := &recordingAcker{}
	m := New("in", []byte("x"), acker)

	require.NoError(t, m.Ack())
	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
}

func TestMessageNackDelegatesToAcker(t *testing.T) {
	acker := &recordingAcker{}
	m := New("in", []byte("x"), acker)

	require.NoError(t, m.Nack())
	assert.True(t, acker.nacked)
}

func TestNoopAckerIsInert(t *testing.T) {
	var a NoopAcker
	assert.NoError(t, a.Ack())
	assert.NoError(t, a.Nack())
}
