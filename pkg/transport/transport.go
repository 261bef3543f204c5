/*
Package transport moves whole JSON-RPC payloads across byte streams using
Content-Length framing.
*/
package transport

import (
	"errors"
	"fmt"
	"os"
)

// Transport kinds selectable at startup.
const (
	KindStdio      = "stdio"
	KindUnixSocket = "unix-socket"
)

// Transport reads and writes framed payloads. Read returns io.EOF once the
// peer closes the stream at a frame boundary.
type Transport interface {
	// Read blocks until the next complete payload arrives.
	Read() (string, error)
	// Write sends one payload to the peer.
	Write(payload string) error
	// Close releases the underlying stream.
	Close() error
}

// Framing failure modes. Each leaves the reader usable: the caller may log,
// drop the frame, and keep reading.
var (
	ErrMissingContentLength = errors.New("missing Content-Length header")
	ErrInvalidContentLength = errors.New("invalid Content-Length header")
	ErrInvalidPayload       = errors.New("frame payload is not valid UTF-8")
)

// FrameError marks a malformed frame on an otherwise healthy stream.
type FrameError struct {
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("malformed frame: %v", e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the reader survived err and may keep
// serving. I/O failures and EOF are not recoverable.
func IsRecoverable(err error) bool {
	var frameErr *FrameError
	return errors.As(err, &frameErr)
}

// New builds the transport for kind. The unix-socket kind is recognized but
// not available; selecting it reports the requested path so callers can
// surface it.
func New(kind, socketPath string) (Transport, error) {
	switch kind {
	case KindStdio:
		return NewStdio(os.Stdin, os.Stdout), nil
	case KindUnixSocket:
		if socketPath == "" {
			return nil, fmt.Errorf("a socket path is required for the %s transport", KindUnixSocket)
		}
		return nil, fmt.Errorf("unix domain socket transport is not implemented yet (requested path: %s)", socketPath)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
}
