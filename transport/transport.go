// Package transport is the abstract byte-stream layer the connection and
// listener engines consume. Any reliable, ordered, bidirectional byte
// stream satisfying this contract is admissible; this package ships the
// net.Conn/net.Listener-backed implementation used by every other
// package in this module.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"

	"srfc/message"
)

// Stream is a single established byte-stream handle: connect/accept
// produce one, send/receive/shutdown/close operate on it.
type Stream interface {
	// Send writes all of b or returns an error wrapping
	// message.ErrTransport.
	Send(b []byte) error
	// Receive blocks until at least one byte is available and returns
	// what was read. A zero-length, nil-error return means the peer
	// closed orderly.
	Receive() ([]byte, error)
	// Shutdown half-closes both directions, unblocking a concurrent
	// Receive with an empty buffer or an error.
	Shutdown() error
	// Close releases the handle's resources. Safe to call after
	// Shutdown.
	Close() error
	// RemoteAddr returns the peer address, for logging.
	RemoteAddr() string
}

// Listener binds a network address and accepts inbound Streams.
type Listener interface {
	Accept() (Stream, error)
	Shutdown() error
	Close() error
	Addr() string
}

// netStream adapts a net.Conn to the Stream interface.
type netStream struct {
	conn net.Conn
}

// Dial establishes a new TCP connection to address and wraps it as a
// Stream.
func Dial(network, address string) (Stream, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial: %w: %v", message.ErrTransport, err)
	}
	return &netStream{conn: conn}, nil
}

// Adopt wraps an already-established net.Conn, obtained outside this
// package, as a Stream.
func Adopt(conn net.Conn) Stream {
	return &netStream{conn: conn}
}

const readBufSize = 64 * 1024

func (s *netStream) Send(b []byte) error {
	n, err := s.conn.Write(b)
	if err != nil {
		return fmt.Errorf("transport: send: %w: %v", message.ErrTransport, err)
	}
	if n != len(b) {
		return fmt.Errorf("transport: send: %w: short write %d/%d", message.ErrTransport, n, len(b))
	}
	return nil
}

func (s *netStream) Receive() ([]byte, error) {
	buf := make([]byte, readBufSize)
	n, err := s.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil {
		if isOrderlyClose(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("transport: receive: %w: %v", message.ErrTransport, err)
	}
	return nil, nil
}

func (s *netStream) Shutdown() error {
	if tc, ok := s.conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err != nil {
			return fmt.Errorf("transport: shutdown: %w: %v", message.ErrTransport, err)
		}
		if err := tc.CloseRead(); err != nil {
			return fmt.Errorf("transport: shutdown: %w: %v", message.ErrTransport, err)
		}
		return nil
	}
	// Not every net.Conn implementation supports half-close (e.g. in-memory
	// pipes used in tests). Falling back to a full close is the one place
	// this package can't stay purely interface-driven.
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("transport: shutdown: %w: %v", message.ErrTransport, err)
	}
	return nil
}

func (s *netStream) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("transport: close: %w: %v", message.ErrTransport, err)
	}
	return nil
}

func (s *netStream) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

func isOrderlyClose(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}

// netListener adapts a net.Listener to the Listener interface.
type netListener struct {
	ln net.Listener
}

// Listen binds address and returns a Listener.
func Listen(network, address string) (Listener, error) {
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("transport: listen: %w: %v", message.ErrTransport, err)
	}
	return &netListener{ln: ln}, nil
}

func (l *netListener) Accept() (Stream, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w: %v", message.ErrTransport, err)
	}
	return &netStream{conn: conn}, nil
}

func (l *netListener) Shutdown() error {
	if err := l.ln.Close(); err != nil {
		return fmt.Errorf("transport: shutdown: %w: %v", message.ErrTransport, err)
	}
	return nil
}

func (l *netListener) Close() error {
	return l.ln.Close()
}

func (l *netListener) Addr() string {
	return l.ln.Addr().String()
}
