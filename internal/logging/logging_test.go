package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBuildsALogger(t *testing.T) {
	logger := New(false)
	assert.NotNil(t, logger)
}

func TestNoopDiscardsOutput(t *testing.T) {
	logger := Noop()
	assert.NotNil(t, logger)
}

func TestDebugFromEnv(t *testing.T) {
	os.Unsetenv("MSGFLO_CPP_DEBUG")
	assert.False(t, DebugFromEnv())

	t.Setenv("MSGFLO_CPP_DEBUG", "1")
	assert.True(t, DebugFromEnv())
}
