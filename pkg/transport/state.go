package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// State is the lifecycle state of a Connection.
type State int32

const (
	// StateClosed means no socket is owned.
	StateClosed State = iota

	// StateEstablished means a socket is open and the handshake runs.
	StateEstablished

	// StateHandshaked means limits are negotiated and messages flow.
	StateHandshaked
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateEstablished:
		return "ESTABLISHED"
	case StateHandshaked:
		return "HANDSHAKED"
	default:
		return "UNKNOWN"
	}
}

// connState is the closed set of state values a Connection holds. Every
// method runs on the connection's event loop. Socket events reach a state
// only through Connection.cur, so a replaced state never sees another
// event.
type connState interface {
	id() State

	// onChunk handles a complete inbound chunk.
	onChunk(c *Connection, chunk []byte)

	// onSocketEnd handles termination of the owned socket. The socket is
	// already detached and closed.
	onSocketEnd(c *Connection, err error)

	// shutdown releases state-owned resources without signalling anyone.
	shutdown()
}

// dialAttempt is an outbound connect in flight.
type dialAttempt struct {
	endpoint string
	cancel   context.CancelFunc
	cb       func(error)
}

// closedState owns no socket. dialing is set while a client dial runs.
type closedState struct {
	dialing *dialAttempt
}

func (*closedState) id() State { return StateClosed }

func (*closedState) onChunk(c *Connection, chunk []byte) {
	c.logger.Debug("dropping chunk on closed connection", slog.Int("size", len(chunk)))
}

func (*closedState) onSocketEnd(*Connection, error) {}

func (s *closedState) shutdown() {
	if s.dialing != nil {
		s.dialing.cancel()
		s.dialing = nil
	}
}

// establishedState runs the handshake over a freshly attached socket.
type establishedState struct {
	hs        handshake
	timer     *OperationTimer
	watch     *closeWatch
	connectCb func(error)
}

func (*establishedState) id() State { return StateEstablished }

func (s *establishedState) onChunk(c *Connection, chunk []byte) {
	if s.timer.Cancel(nil, chunk) {
		return
	}
	// The handshake already failed and the owner has not disconnected yet.
	c.logger.Debug("dropping chunk outside handshake", slog.Int("size", len(chunk)))
}

func (s *establishedState) onSocketEnd(c *Connection, err error) {
	s.watch.fire(err)
	s.timer.Reset()
	c.enterClosed(closeError(err))
}

func (s *establishedState) shutdown() {
	s.timer.Reset()
}

// handshakedState surfaces chunks as messages.
type handshakedState struct{}

func (*handshakedState) id() State { return StateHandshaked }

func (*handshakedState) onChunk(c *Connection, chunk []byte) {
	h, err := wire.ReadHeader(chunk)
	if err != nil {
		c.fail(err)
		return
	}
	switch h.MessageType {
	case wire.MessageMessage, wire.MessageOpen, wire.MessageClose:
		c.emit(MessageReceived{Chunk: chunk})
	case wire.MessageError:
		payload, _, err := wire.DecodeMessage(chunk, wire.MessageError)
		if err != nil {
			c.fail(wire.NewStatusError(wire.StatusBadDecodingError, err.Error()))
			return
		}
		c.fail(payload.(*wire.ErrorMessage).Err())
	default:
		c.fail(fmt.Errorf("%w: %s after handshake", ErrProtocolViolation, h.MessageType))
	}
}

func (*handshakedState) onSocketEnd(c *Connection, err error) {
	if IsConnectionBreak(err) {
		c.logger.Warn("connection break", slog.Any("error", err))
		c.logError(err, true)
		c.emit(ConnectionBreak{Err: err})
	}
	c.enterClosed(closeError(err))
}

func (*handshakedState) shutdown() {}

// closeWatch cancels the pending handshake operation when the socket ends
// before the response arrives.
type closeWatch struct {
	armed *OperationTimer
}

// Arm implements CancelHook.
func (w *closeWatch) Arm(t *OperationTimer) {
	w.armed = t
}

// Disarm implements CancelHook.
func (w *closeWatch) Disarm() {
	w.armed = nil
}

func (w *closeWatch) fire(err error) {
	t := w.armed
	if t == nil {
		return
	}
	t.Cancel(fmt.Errorf("%w: socket closed while waiting for data: %w", ErrConnectionClosed, err), nil)
}

// closeError is the Closed event error for a socket termination.
func closeError(err error) error {
	if err == nil {
		return ErrConnectionClosed
	}
	return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
}
