package transport

// Event is delivered to a connection's EventHandler. The concrete type is
// one of Connected, HandshakeDone, MessageReceived, Closed or
// ConnectionBreak.
type Event interface {
	eventName() string
}

// Connected is emitted when a socket is attached and the handshake starts.
type Connected struct {
	RemoteAddr string
}

// HandshakeDone is emitted once the connection is Handshaked.
type HandshakeDone struct {
	Negotiation Negotiation
}

// MessageReceived carries one complete chunk (header included) received
// after the handshake. The handler owns Chunk.
type MessageReceived struct {
	Chunk []byte
}

// Closed is emitted exactly once per socket when the connection returns to
// Closed. Err is nil for a caller-initiated disconnect.
type Closed struct {
	Err error
}

// ConnectionBreak is emitted before Closed when a handshaked connection
// loses its peer abruptly (reset, broken pipe or unsolicited end).
type ConnectionBreak struct {
	Err error
}

func (Connected) eventName() string       { return "connected" }
func (HandshakeDone) eventName() string   { return "handshake_done" }
func (MessageReceived) eventName() string { return "message" }
func (Closed) eventName() string          { return "closed" }
func (ConnectionBreak) eventName() string { return "connection_break" }

// EventHandler receives connection events. It runs on the connection's
// event loop: it may call any Connection method except the blocking
// wrappers Dial and Close.
type EventHandler func(c *Connection, ev Event)
