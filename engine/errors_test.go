package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		KindMissingConfig:     "MissingConfig",
		KindUnsupportedScheme: "UnsupportedScheme",
		KindInvalidConfig:     "InvalidConfig",
		KindUnknownPort:       "UnknownPort",
		KindSerializationError: "SerializationError",
		KindTransportError:    "TransportError",
		KindHandlerError:      "HandlerError",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := errUnknownPort(`participant "repeat-1" has no outport "bogus"`)
	assert.Equal(t, `[UnknownPort] participant "repeat-1" has no outport "bogus"`, err.Error())
}

func TestErrorMessageWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errTransport("failed to publish", cause)
	assert.Equal(t, "[TransportError] failed to publish: connection refused", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := errHandler("handler panicked", cause)

	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestErrorAsRecoversKind(t *testing.T) {
	var wrapped error = errInvalidConfig("bad keepAlive", nil)

	var engErr *Error
	require.True(t, errors.As(wrapped, &engErr))
	assert.Equal(t, KindInvalidConfig, engErr.Kind)
}
