package wire

import (
	"fmt"
)

// HelloMessage is the HEL payload sent by the client to open a connection.
type HelloMessage struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32

	// MaxMessageSize and MaxChunkCount are 0 when the client sets no limit.
	MaxMessageSize uint32
	MaxChunkCount  uint32

	EndpointURL string
}

// AcknowledgeMessage is the ACK payload carrying the negotiated limits.
type AcknowledgeMessage struct {
	ProtocolVersion   uint32
	ReceiveBufferSize uint32
	SendBufferSize    uint32
	MaxMessageSize    uint32
	MaxChunkCount     uint32
}

// ErrorMessage is the ERR payload used to abort a connection.
type ErrorMessage struct {
	StatusCode StatusCode
	Reason     string
}

// Err converts the message into a *StatusError.
func (m *ErrorMessage) Err() *StatusError {
	return NewStatusError(m.StatusCode, m.Reason)
}

// Encode appends the HEL payload.
func (m *HelloMessage) Encode(e *Encoder) {
	e.PutUint32(m.ProtocolVersion)
	e.PutUint32(m.ReceiveBufferSize)
	e.PutUint32(m.SendBufferSize)
	e.PutUint32(m.MaxMessageSize)
	e.PutUint32(m.MaxChunkCount)
	e.PutString(m.EndpointURL)
}

// Decode reads the HEL payload.
func (m *HelloMessage) Decode(d *Decoder) error {
	var err error
	if m.ProtocolVersion, err = d.Uint32(); err != nil {
		return err
	}
	if m.ReceiveBufferSize, err = d.Uint32(); err != nil {
		return err
	}
	if m.SendBufferSize, err = d.Uint32(); err != nil {
		return err
	}
	if m.MaxMessageSize, err = d.Uint32(); err != nil {
		return err
	}
	if m.MaxChunkCount, err = d.Uint32(); err != nil {
		return err
	}
	m.EndpointURL, err = d.String()
	return err
}

// Encode appends the ACK payload.
func (m *AcknowledgeMessage) Encode(e *Encoder) {
	e.PutUint32(m.ProtocolVersion)
	e.PutUint32(m.ReceiveBufferSize)
	e.PutUint32(m.SendBufferSize)
	e.PutUint32(m.MaxMessageSize)
	e.PutUint32(m.MaxChunkCount)
}

// Decode reads the ACK payload.
func (m *AcknowledgeMessage) Decode(d *Decoder) error {
	var err error
	if m.ProtocolVersion, err = d.Uint32(); err != nil {
		return err
	}
	if m.ReceiveBufferSize, err = d.Uint32(); err != nil {
		return err
	}
	if m.SendBufferSize, err = d.Uint32(); err != nil {
		return err
	}
	if m.MaxMessageSize, err = d.Uint32(); err != nil {
		return err
	}
	m.MaxChunkCount, err = d.Uint32()
	return err
}

// Encode appends the ERR payload.
func (m *ErrorMessage) Encode(e *Encoder) {
	e.PutUint32(uint32(m.StatusCode))
	e.PutString(m.Reason)
}

// Decode reads the ERR payload.
func (m *ErrorMessage) Decode(d *Decoder) error {
	code, err := d.Uint32()
	if err != nil {
		return err
	}
	m.StatusCode = StatusCode(code)
	m.Reason, err = d.String()
	return err
}

// Payload is implemented by the connection layer messages.
type Payload interface {
	Encode(e *Encoder)
	Decode(d *Decoder) error
}

// PackMessage encodes p into a single final chunk of type msgType.
// The header length always equals the returned buffer length.
func PackMessage(msgType MessageType, p Payload) ([]byte, error) {
	if !msgType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMessageType, string(msgType))
	}
	e := NewEncoder(make([]byte, HeaderSize, HeaderSize+64))
	p.Encode(e)
	buf := e.Bytes()
	if err := PutHeader(buf, Header{
		MessageType: msgType,
		ChunkType:   ChunkFinal,
		Length:      uint32(len(buf)),
	}); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeMessage decodes a complete chunk. An ERR chunk always decodes as
// *ErrorMessage regardless of the expected type; otherwise the header must
// carry the expected type.
func DecodeMessage(chunk []byte, expected MessageType) (Payload, Header, error) {
	h, err := ReadHeader(chunk)
	if err != nil {
		return nil, h, err
	}
	if int(h.Length) != len(chunk) {
		return nil, h, fmt.Errorf("%w: header says %d, chunk has %d", ErrInvalidLength, h.Length, len(chunk))
	}

	var p Payload
	switch {
	case h.MessageType == MessageError:
		p = &ErrorMessage{}
	case h.MessageType != expected:
		return nil, h, fmt.Errorf("%w: got %q, want %q", ErrInvalidMessageType, string(h.MessageType), string(expected))
	case expected == MessageHello:
		p = &HelloMessage{}
	case expected == MessageAcknowledge:
		p = &AcknowledgeMessage{}
	default:
		return nil, h, fmt.Errorf("%w: %q has no connection layer payload", ErrInvalidMessageType, string(expected))
	}

	if err := p.Decode(NewDecoder(chunk[HeaderSize:])); err != nil {
		return nil, h, fmt.Errorf("failed to decode %s: %w", h.MessageType, err)
	}
	return p, h, nil
}
