package transport

import "context"

// ClientTransport is the client side of a transport as seen by the layers
// above it. Implemented by Connection.
type ClientTransport interface {
	Connect(endpointURL string, cb func(error))
	Dial(ctx context.Context, endpointURL string) error
	Disconnect(cb func())
	Dispose()
	IsValid() bool
	Write(chunk []byte) error
}

// ServerTransport accepts passive connections. Implemented by Listener.
type ServerTransport interface {
	Listen(ctx context.Context) error
	Close() error
	IsListening() bool
	SetAcceptHandler(fn func(c *Connection))
}

// Compile-time interface satisfaction checks.
var (
	_ ClientTransport = (*Connection)(nil)
	_ ServerTransport = (*Listener)(nil)
	_ CancelHook      = (*closeWatch)(nil)
	_ Binding         = (*TCPBinding)(nil)
	_ Binding         = (*WebSocketBinding)(nil)
	_ Binding         = fakeBinding{}
	_ SocketListener  = (*tcpListener)(nil)
	_ SocketListener  = (*wsListener)(nil)
	_ Socket          = (*wsSocket)(nil)
)
