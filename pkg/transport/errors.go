package transport

import (
	"errors"

	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// Misuse errors. These indicate a programming error in the caller.
var (
	// ErrChunkPending is returned by CreateChunk when the previous chunk
	// has not been written yet.
	ErrChunkPending = errors.New("createChunk called before previous chunk was written")

	// ErrChunkMismatch is returned by Write when a chunk is pending and a
	// different buffer is written.
	ErrChunkMismatch = errors.New("write must use the buffer returned by CreateChunk")

	// ErrOperationPending is returned by OperationTimer.Start when an
	// operation is already outstanding.
	ErrOperationPending = errors.New("operation already pending")

	// ErrNotInitialized is returned when writing on a connection without
	// an open socket.
	ErrNotInitialized = errors.New("connection not initialized")

	// ErrInvalidState is returned when an operation is not allowed in the
	// current connection or listener state.
	ErrInvalidState = errors.New("invalid state for operation")
)

// Runtime errors.
var (
	// ErrProtocolViolation indicates a frame that is not allowed at this
	// point of the conversation.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrTimeout is the error delivered when a pending operation expires.
	// Any *wire.StatusError carrying BadTimeout matches it with errors.Is.
	ErrTimeout = wire.NewStatusError(wire.StatusBadTimeout, "operation timed out")

	// ErrConnectionClosed indicates the socket was closed while an
	// operation was in progress or without the caller asking for it.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrConnectionAborted indicates the connection was disposed or
	// disconnected while connecting.
	ErrConnectionAborted = errors.New("connection aborted")

	// ErrUnsupportedScheme indicates an endpoint scheme with no binding.
	ErrUnsupportedScheme = errors.New("transport protocol not supported")

	// ErrInvalidEndpointURL indicates a malformed endpoint URL.
	ErrInvalidEndpointURL = errors.New("invalid endpoint url")
)
