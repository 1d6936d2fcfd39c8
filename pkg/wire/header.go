package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of the chunk header in bytes.
const HeaderSize = 8

// MessageType is the 3-letter ASCII message type carried in the header.
type MessageType string

// Connection layer and secure channel message types.
const (
	MessageHello       MessageType = "HEL"
	MessageAcknowledge MessageType = "ACK"
	MessageError       MessageType = "ERR"
	MessageOpen        MessageType = "OPN"
	MessageMessage     MessageType = "MSG"
	MessageClose       MessageType = "CLO"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageHello, MessageAcknowledge, MessageError,
		MessageOpen, MessageMessage, MessageClose:
		return true
	default:
		return false
	}
}

// ChunkType is the 1-byte chunk-type tag.
type ChunkType byte

const (
	// ChunkFinal marks the last (or only) chunk of a message.
	ChunkFinal ChunkType = 'F'

	// ChunkContinuation marks an intermediate chunk.
	ChunkContinuation ChunkType = 'C'

	// ChunkAbort marks a chunk that aborts the message in progress.
	ChunkAbort ChunkType = 'A'
)

// Valid reports whether c is one of the three chunk-type tags.
func (c ChunkType) Valid() bool {
	return c == ChunkFinal || c == ChunkContinuation || c == ChunkAbort
}

// String returns the tag as a one-letter string.
func (c ChunkType) String() string {
	return string(rune(c))
}

// Header errors.
var (
	// ErrHeaderTruncated indicates fewer than HeaderSize bytes were available.
	ErrHeaderTruncated = errors.New("chunk header truncated")

	// ErrInvalidMessageType indicates an unknown message type.
	ErrInvalidMessageType = errors.New("invalid message type")

	// ErrInvalidChunkType indicates a chunk-type tag other than F, C or A.
	ErrInvalidChunkType = errors.New("invalid chunk type")

	// ErrInvalidLength indicates a declared length below HeaderSize.
	ErrInvalidLength = errors.New("invalid chunk length")
)

// Header is the decoded 8-byte chunk header.
type Header struct {
	MessageType MessageType
	ChunkType   ChunkType

	// Length is the total chunk length including the header.
	Length uint32
}

// ReadHeader parses the header at the start of b.
// Only the first HeaderSize bytes are examined; no field is validated.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrHeaderTruncated
	}
	return Header{
		MessageType: MessageType(b[0:3]),
		ChunkType:   ChunkType(b[3]),
		Length:      binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// Validate checks the message type, the chunk type and the minimum length.
func (h Header) Validate() error {
	if !h.MessageType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMessageType, string(h.MessageType))
	}
	if !h.ChunkType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChunkType, byte(h.ChunkType))
	}
	if h.Length < HeaderSize {
		return fmt.Errorf("%w: %d", ErrInvalidLength, h.Length)
	}
	return nil
}

// PutHeader writes h into the first HeaderSize bytes of b.
func PutHeader(b []byte, h Header) error {
	if len(b) < HeaderSize {
		return ErrHeaderTruncated
	}
	if len(h.MessageType) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidMessageType, string(h.MessageType))
	}
	copy(b[0:3], h.MessageType)
	b[3] = byte(h.ChunkType)
	binary.LittleEndian.PutUint32(b[4:8], h.Length)
	return nil
}
