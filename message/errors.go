package message

import "errors"

// Error kinds from the SRFC error taxonomy. The reader loop never
// propagates these upward; they are named here so conn/listener/wire can
// wrap them with fmt.Errorf("...: %w", ...) and callers can errors.Is against
// a stable sentinel.
var (
	// ErrMalformedFrame is returned by wire.Parse when called on a buffer
	// that validate() would have rejected, or when a cursor would read past
	// the declared frame length.
	ErrMalformedFrame = errors.New("srfc: malformed frame")

	// ErrLogic signals API misuse: sending on an unconnected connection,
	// shutting down a connection or listener that is not up, connecting or
	// listening twice, invoking deferred without a handle. Surfaced to the
	// caller immediately.
	ErrLogic = errors.New("srfc: logic error")

	// ErrTransport wraps a transport-level read/write/shutdown/close
	// failure.
	ErrTransport = errors.New("srfc: transport error")

	// ErrPeerClosed names an orderly peer close. No package in this module
	// returns it: transport.Stream.Receive reports that case as an empty
	// read with a nil error, which triggers local shutdown of the reader.
	ErrPeerClosed = errors.New("srfc: peer closed connection")
)
