package log

import (
	"time"
)

// Event represents a protocol log event captured by the transport.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this side dialed or accepted.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// EndpointURL is the endpoint the connection was opened for.
	EndpointURL string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Completed chunk
	Handshake   *HandshakeEvent   `cbor:"11,keyasint,omitempty"` // HEL/ACK/ERR outcome
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/listener state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming chunk.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing chunk.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which part of the transport captured the event.
type Layer uint8

const (
	// LayerSocket is the stream binding (TCP, WebSocket).
	LayerSocket Layer = 0
	// LayerTransport is the chunk framing layer.
	LayerTransport Layer = 1
	// LayerHandshake is the HEL/ACK/ERR exchange.
	LayerHandshake Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerSocket:
		return "SOCKET"
	case LayerTransport:
		return "TRANSPORT"
	case LayerHandshake:
		return "HANDSHAKE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a completed chunk.
	CategoryMessage Category = 0
	// CategoryHandshake indicates a handshake outcome.
	CategoryHandshake Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryHandshake:
		return "HANDSHAKE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates whether the local endpoint initiated the connection.
type Role uint8

const (
	// RoleClient indicates a client-initiated connection.
	RoleClient Role = 0
	// RoleServer indicates a server-accepted (passive) connection.
	RoleServer Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "CLIENT"
	case RoleServer:
		return "SERVER"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures one complete chunk at the transport layer.
type FrameEvent struct {
	// Size is the chunk size in bytes (including the 8-byte header).
	Size int `cbor:"1,keyasint"`

	// Data is the raw chunk bytes (may be truncated for large chunks).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// MessageType is the 3-letter message type from the header.
	MessageType string `cbor:"4,keyasint,omitempty"`

	// ChunkType is the chunk-type tag from the header.
	ChunkType string `cbor:"5,keyasint,omitempty"`
}

// HandshakeEvent captures the outcome of a HEL/ACK/ERR exchange.
type HandshakeEvent struct {
	// Success is true when both sides agreed on the limits below.
	Success bool `cbor:"1,keyasint"`

	ProtocolVersion   uint32 `cbor:"2,keyasint,omitempty"`
	ReceiveBufferSize uint32 `cbor:"3,keyasint,omitempty"`
	SendBufferSize    uint32 `cbor:"4,keyasint,omitempty"`
	MaxMessageSize    uint32 `cbor:"5,keyasint,omitempty"`
	MaxChunkCount     uint32 `cbor:"6,keyasint,omitempty"`

	// StatusCode is set when the handshake was aborted.
	StatusCode *uint32 `cbor:"7,keyasint,omitempty"`

	// Reason accompanies StatusCode.
	Reason string `cbor:"8,keyasint,omitempty"`
}

// StateChangeEvent captures connection and listener lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityListener indicates a listener state change.
	StateEntityListener StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityListener:
		return "LISTENER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the status code (if applicable).
	Code *uint32 `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`

	// Break is true when the error was classified as abrupt peer loss.
	Break bool `cbor:"5,keyasint,omitempty"`
}
