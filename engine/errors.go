package engine

import "fmt"

// ErrorKind is a closed taxonomy of the engine's failure categories.
// Unlike the open string-code AppError used for HTTP/gRPC services
// elsewhere (Chris-Alexander-Pop-microservices-library/pkg/errors), this
// engine's error surface is small and fixed, so Kind is an enum rather
// than a free-form string.
type ErrorKind int

const (
	// KindMissingConfig: URL resolution found nothing to connect to.
	KindMissingConfig ErrorKind = iota
	// KindUnsupportedScheme: the broker URL's scheme isn't amqp or mqtt.
	KindUnsupportedScheme
	// KindInvalidConfig: URL parsing or definition-invariant checks failed.
	KindInvalidConfig
	// KindUnknownPort: Send named a port the participant doesn't have.
	KindUnknownPort
	// KindSerializationError: Message.AsJSON on a non-JSON body.
	KindSerializationError
	// KindTransportError: broker I/O failed.
	KindTransportError
	// KindHandlerError: the user handler returned/panicked with an error.
	KindHandlerError
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingConfig:
		return "MissingConfig"
	case KindUnsupportedScheme:
		return "UnsupportedScheme"
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindUnknownPort:
		return "UnknownPort"
	case KindSerializationError:
		return "SerializationError"
	case KindTransportError:
		return "TransportError"
	case KindHandlerError:
		return "HandlerError"
	default:
		return "Unknown"
	}
}

// Error is the engine's error type, carrying a Kind so callers can branch
// on failure category with errors.As — e.g. KindTransportError is worth
// retrying, KindInvalidConfig never is.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func errMissingConfig(msg string) *Error     { return newError(KindMissingConfig, msg, nil) }
func errUnsupportedScheme(msg string) *Error { return newError(KindUnsupportedScheme, msg, nil) }
func errInvalidConfig(msg string, cause error) *Error {
	return newError(KindInvalidConfig, msg, cause)
}
func errUnknownPort(msg string) *Error { return newError(KindUnknownPort, msg, nil) }
func errTransport(msg string, cause error) *Error {
	return newError(KindTransportError, msg, cause)
}
func errHandler(msg string, cause error) *Error {
	return newError(KindHandlerError, msg, cause)
}
