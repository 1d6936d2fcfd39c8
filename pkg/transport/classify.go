package transport

import (
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/bassosimone/errclass"
	"github.com/gorilla/websocket"
)

// SocketErrorClass is the category of a socket termination.
type SocketErrorClass int

const (
	// SocketErrorNone means no error.
	SocketErrorNone SocketErrorClass = iota

	// SocketErrorEnd means the peer ended the stream (EOF).
	SocketErrorEnd

	// SocketErrorReset means the connection was reset or aborted by the peer.
	SocketErrorReset

	// SocketErrorBrokenPipe means a write hit a stream the peer closed.
	SocketErrorBrokenPipe

	// SocketErrorClosed means the socket was closed locally.
	SocketErrorClosed

	// SocketErrorOther is any other failure.
	SocketErrorOther
)

// String returns the class name.
func (c SocketErrorClass) String() string {
	switch c {
	case SocketErrorNone:
		return "NONE"
	case SocketErrorEnd:
		return "END"
	case SocketErrorReset:
		return "ECONNRESET"
	case SocketErrorBrokenPipe:
		return "EPIPE"
	case SocketErrorClosed:
		return "CLOSED"
	default:
		return "OTHER"
	}
}

// ClassifySocketError maps err onto a SocketErrorClass.
func ClassifySocketError(err error) SocketErrorClass {
	if err == nil {
		return SocketErrorNone
	}
	if errors.Is(err, net.ErrClosed) {
		return SocketErrorClosed
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return SocketErrorEnd
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return SocketErrorEnd
	}
	if errors.Is(err, syscall.EPIPE) {
		return SocketErrorBrokenPipe
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return SocketErrorReset
	}
	switch errclass.New(err) {
	case errclass.ECONNRESET, errclass.ECONNABORTED:
		return SocketErrorReset
	}
	if websocket.IsUnexpectedCloseError(err) {
		return SocketErrorReset
	}
	return SocketErrorOther
}

// IsConnectionBreak reports whether err means the peer vanished, as opposed
// to a local close or an unrelated failure.
func IsConnectionBreak(err error) bool {
	switch ClassifySocketError(err) {
	case SocketErrorEnd, SocketErrorReset, SocketErrorBrokenPipe:
		return true
	default:
		return false
	}
}
