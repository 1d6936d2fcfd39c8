package transport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// handshake is the HEL/ACK/ERR exchange run while a connection is Established.
type handshake interface {
	// start arms timer and begins the exchange. cb receives nil on success
	// or the reason the handshake failed.
	start(cb func(error), timer *OperationTimer, endpointURL string) error

	// result returns the negotiated values. Valid after cb(nil).
	result() Negotiation
}

type handshakeConfig struct {
	protocolVersion   uint32
	receiveBufferSize uint32
	sendBufferSize    uint32
	limits            Limits
	timeout           time.Duration
	logger            *slog.Logger
}

// newHandshake returns the server variant for passive connections and the
// client variant otherwise. send is the serializer write path.
func newHandshake(passive bool, send func([]byte) error, config handshakeConfig) handshake {
	if config.logger == nil {
		config.logger = slog.New(slog.DiscardHandler)
	}
	base := handshakeBase{
		send:   send,
		config: config,
		logger: config.logger,
	}
	if passive {
		return &serverHandshake{handshakeBase: base}
	}
	return &clientHandshake{handshakeBase: base}
}

// handshakeBase holds the negotiation result and the abort logic shared by
// both variants.
type handshakeBase struct {
	send       func([]byte) error
	config     handshakeConfig
	logger     *slog.Logger
	negotiated Negotiation
	aborted    bool
}

func (h *handshakeBase) result() Negotiation {
	return h.negotiated
}

// abort sends an ERR frame and fails the handshake. Only the first abort
// sends a frame; later ones just report the status.
func (h *handshakeBase) abort(code wire.StatusCode, detail string, cb func(error)) {
	if h.aborted {
		cb(wire.NewStatusError(code, detail))
		return
	}
	h.aborted = true

	h.logger.Warn("aborting handshake",
		slog.String("status", code.String()),
		slog.String("detail", detail))

	chunk, err := wire.PackMessage(wire.MessageError, &wire.ErrorMessage{
		StatusCode: code,
		Reason:     code.Description(),
	})
	if err == nil {
		err = h.send(chunk)
	}
	if err != nil {
		h.logger.Error("failed to send ERR", slog.Any("error", err))
	}

	cb(wire.NewStatusError(code, detail))
}

// clientHandshake sends HEL and waits for ACK or ERR.
type clientHandshake struct {
	handshakeBase
}

func (h *clientHandshake) start(cb func(error), timer *OperationTimer, endpointURL string) error {
	if endpointURL == "" {
		return fmt.Errorf("%w: empty endpoint url", ErrInvalidEndpointURL)
	}

	if err := timer.Start(func(err error, data []byte) {
		h.onResponse(cb, err, data)
	}, h.config.timeout); err != nil {
		return err
	}

	chunk, err := wire.PackMessage(wire.MessageHello, &wire.HelloMessage{
		ProtocolVersion:   h.config.protocolVersion,
		ReceiveBufferSize: h.config.receiveBufferSize,
		SendBufferSize:    h.config.sendBufferSize,
		MaxMessageSize:    0, // no limit
		MaxChunkCount:     0, // no limit
		EndpointURL:       endpointURL,
	})
	if err == nil {
		err = h.send(chunk)
	}
	if err != nil {
		timer.Cancel(fmt.Errorf("failed to send HEL: %w", err), nil)
	}
	return nil
}

func (h *clientHandshake) onResponse(cb func(error), err error, chunk []byte) {
	if err != nil {
		cb(err)
		return
	}

	header, err := wire.ReadHeader(chunk)
	if err != nil {
		cb(fmt.Errorf("%w: %w", ErrProtocolViolation, err))
		return
	}
	if header.ChunkType != wire.ChunkFinal {
		cb(fmt.Errorf("%w: handshake response with chunk type %s", ErrProtocolViolation, header.ChunkType))
		return
	}

	switch header.MessageType {
	case wire.MessageError, wire.MessageAcknowledge:
	default:
		cb(fmt.Errorf("%w: expected ACK or ERR, got %s", ErrProtocolViolation, header.MessageType))
		return
	}

	payload, _, err := wire.DecodeMessage(chunk, wire.MessageAcknowledge)
	if err != nil {
		cb(wire.NewStatusError(wire.StatusBadDecodingError, err.Error()))
		return
	}

	switch msg := payload.(type) {
	case *wire.ErrorMessage:
		cb(msg.Err())
	case *wire.AcknowledgeMessage:
		if msg.ProtocolVersion != h.config.protocolVersion {
			if msg.ProtocolVersion == TestOnlyProtocolVersion || msg.ProtocolVersion < h.config.protocolVersion {
				cb(wire.NewStatusError(wire.StatusBadProtocolVersionUnsupported,
					fmt.Sprintf("server protocol version 0x%X", msg.ProtocolVersion)))
				return
			}
			h.logger.Warn("server acknowledged a different protocol version",
				slog.Uint64("client", uint64(h.config.protocolVersion)),
				slog.Uint64("server", uint64(msg.ProtocolVersion)))
		}
		h.negotiated = Negotiation{
			ProtocolVersion:   msg.ProtocolVersion,
			ReceiveBufferSize: msg.ReceiveBufferSize,
			SendBufferSize:    msg.SendBufferSize,
			MaxMessageSize:    msg.MaxMessageSize,
			MaxChunkCount:     msg.MaxChunkCount,
		}
		cb(nil)
	}
}

// serverHandshake waits for HEL, validates it and answers ACK or ERR.
type serverHandshake struct {
	handshakeBase
	helloReceived bool
}

func (h *serverHandshake) start(cb func(error), timer *OperationTimer, _ string) error {
	return timer.Start(func(err error, data []byte) {
		if err != nil {
			h.logger.Debug("no HEL received", slog.Any("error", err))
			cb(err)
			return
		}
		h.onHello(data, cb)
	}, h.config.timeout)
}

func (h *serverHandshake) onHello(chunk []byte, cb func(error)) {
	header, err := wire.ReadHeader(chunk)
	if err != nil || header.MessageType != wire.MessageHello || h.helloReceived {
		h.abort(wire.StatusBadCommunicationError, "expecting HEL message to initiate communication", cb)
		return
	}

	payload, _, err := wire.DecodeMessage(chunk, wire.MessageHello)
	if err != nil {
		h.abort(wire.StatusBadCommunicationError, fmt.Sprintf("malformed HEL: %v", err), cb)
		return
	}
	hello := payload.(*wire.HelloMessage)

	if hello.ProtocolVersion != h.config.protocolVersion {
		h.logger.Warn("client requested a different protocol version",
			slog.Uint64("client", uint64(hello.ProtocolVersion)),
			slog.Uint64("server", uint64(h.config.protocolVersion)))
	}
	if hello.ProtocolVersion == TestOnlyProtocolVersion || hello.ProtocolVersion < h.config.protocolVersion {
		h.abort(wire.StatusBadProtocolVersionUnsupported,
			fmt.Sprintf("protocol version 0x%X not supported, server speaks 0x%X", hello.ProtocolVersion, h.config.protocolVersion), cb)
		return
	}

	if hello.ReceiveBufferSize < MinBufferSize || hello.SendBufferSize < MinBufferSize {
		h.abort(wire.StatusBadConnectionRejected,
			fmt.Sprintf("buffer size too small (receive %d, send %d, minimum %d)",
				hello.ReceiveBufferSize, hello.SendBufferSize, MinBufferSize), cb)
		return
	}

	h.helloReceived = true
	h.negotiated = Negotiate(h.config.protocolVersion, Negotiation{
		ReceiveBufferSize: hello.ReceiveBufferSize,
		SendBufferSize:    hello.SendBufferSize,
		MaxMessageSize:    hello.MaxMessageSize,
		MaxChunkCount:     hello.MaxChunkCount,
	}, h.config.limits)

	ack, err := wire.PackMessage(wire.MessageAcknowledge, &wire.AcknowledgeMessage{
		ProtocolVersion:   h.negotiated.ProtocolVersion,
		ReceiveBufferSize: h.negotiated.ReceiveBufferSize,
		SendBufferSize:    h.negotiated.SendBufferSize,
		MaxMessageSize:    h.negotiated.MaxMessageSize,
		MaxChunkCount:     h.negotiated.MaxChunkCount,
	})
	if err == nil {
		err = h.send(ack)
	}
	if err != nil {
		cb(fmt.Errorf("failed to send ACK: %w", err))
		return
	}
	cb(nil)
}
