package transport

import (
	"context"
	"io"
	"net"
)

// Socket is a connected, ordered byte stream. Reads may return any prefix
// of the data sent by the peer. net.Conn satisfies it.
type Socket interface {
	io.ReadWriteCloser

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// SocketListener accepts inbound sockets for one binding.
type SocketListener interface {
	// Accept blocks until a socket arrives or the listener closes.
	Accept() (Socket, error)

	// Close stops accepting. Sockets already accepted are unaffected.
	Close() error

	// Addr returns the bound address.
	Addr() net.Addr
}

// Binding opens sockets for one family of endpoint schemes.
type Binding interface {
	// Name identifies the binding in logs.
	Name() string

	// Dial connects to the endpoint.
	Dial(ctx context.Context, ep Endpoint) (Socket, error)

	// Listen binds address. path is used by bindings that multiplex on a
	// request path and ignored by the others.
	Listen(ctx context.Context, address, path string) (SocketListener, error)
}

// socketReadSize is the read buffer handed to the socket per call.
const socketReadSize = 32 * 1024
