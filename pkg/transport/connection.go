package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/uacp-protocol/uacp-go/pkg/log"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// DefaultDialTimeout bounds the socket connect of Connect and Dial.
const DefaultDialTimeout = 10 * time.Second

// ConnectionConfig configures a Connection.
type ConnectionConfig struct {
	// ProtocolVersion is sent in HEL (client) or required as minimum (server).
	ProtocolVersion uint32

	// ReceiveBufferSize and SendBufferSize are requested by a client
	// (default: 65536).
	ReceiveBufferSize uint32
	SendBufferSize    uint32

	// HandshakeTimeout bounds the wait for ACK or HEL (default: 30s).
	HandshakeTimeout time.Duration

	// DialTimeout bounds the socket connect (default: 10s).
	DialTimeout time.Duration

	// Limits bound what a server acknowledges.
	Limits Limits

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// ProtocolLogger receives protocol events. Nil disables capture.
	ProtocolLogger log.Logger

	// Handler receives connection events on the event loop.
	Handler EventHandler
}

// DefaultConnectionConfig returns the default connection configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		ReceiveBufferSize: DefaultBufferSize,
		SendBufferSize:    DefaultBufferSize,
		HandshakeTimeout:  DefaultOperationTimeout,
		DialTimeout:       DefaultDialTimeout,
		Limits:            DefaultLimits(),
	}
}

func (c ConnectionConfig) withDefaults() ConnectionConfig {
	d := DefaultConnectionConfig()
	if c.ReceiveBufferSize == 0 {
		c.ReceiveBufferSize = d.ReceiveBufferSize
	}
	if c.SendBufferSize == 0 {
		c.SendBufferSize = d.SendBufferSize
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = d.DialTimeout
	}
	c.Limits = c.Limits.withDefaults()
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// subscription ties socket events to one attachment of a socket. Events
// carrying a stale subscription are dropped.
type subscription struct{}

// Connection is one client-initiated or server-accepted peer relationship.
//
// All state changes happen on a per-connection event loop; the public
// methods post work to it and return. Write and CreateChunk are safe for
// concurrent use. Callbacks and events never run on the caller's stack.
type Connection struct {
	id      string
	passive bool
	binding Binding
	config  ConnectionConfig
	logger  *slog.Logger

	stats      Statistics
	serializer *ChunkSerializer
	mb         mailbox

	// Mirrors of loop state, readable from any goroutine.
	state      atomic.Int32
	valid      atomic.Bool
	negotiated atomic.Pointer[Negotiation]

	// Owned by the event loop.
	cur  connState
	sock Socket
	sub  *subscription
	plog log.Logger
}

// NewConnection creates a client connection in state Closed that dials
// through binding.
func NewConnection(binding Binding, config ConnectionConfig) *Connection {
	return newConnection(binding, config, false)
}

// newPassiveConnection creates a server-side connection. It does nothing
// until accept hands it a socket.
func newPassiveConnection(config ConnectionConfig) *Connection {
	return newConnection(nil, config, true)
}

// accept enters Established with sock on the event loop and runs the
// server handshake; cb receives the outcome.
func (c *Connection) accept(sock Socket, cb func(error)) {
	c.post(func() {
		c.establish(sock, "", cb)
	})
}

func newConnection(binding Binding, config ConnectionConfig, passive bool) *Connection {
	config = config.withDefaults()
	id := uuid.New().String()

	role := "client"
	if passive {
		role = "server"
	}

	c := &Connection{
		id:      id,
		passive: passive,
		binding: binding,
		config:  config,
		logger:  config.Logger.With(slog.String("conn_id", id), slog.String("role", role)),
		cur:     &closedState{},
	}
	c.serializer = NewChunkSerializer(&c.stats)
	return c
}

// ID returns the connection ID used in logs.
func (c *Connection) ID() string {
	return c.id
}

// IsPassive returns true for server-accepted connections.
func (c *Connection) IsPassive() bool {
	return c.passive
}

// State returns the current state.
func (c *Connection) State() State {
	return State(c.state.Load())
}

// IsValid returns true if a socket is owned and the state is not Closed.
func (c *Connection) IsValid() bool {
	return c.valid.Load() && c.State() != StateClosed
}

// Negotiated returns the handshake result of the current or last socket.
func (c *Connection) Negotiated() (Negotiation, bool) {
	n := c.negotiated.Load()
	if n == nil {
		return Negotiation{}, false
	}
	return *n, true
}

// Stats returns the chunk counters.
func (c *Connection) Stats() *Statistics {
	return &c.stats
}

// BytesRead returns the total size of completed inbound chunks.
func (c *Connection) BytesRead() uint64 { return c.stats.BytesRead() }

// BytesWritten returns the total size of written chunks.
func (c *Connection) BytesWritten() uint64 { return c.stats.BytesWritten() }

// ChunksRead returns the number of completed inbound chunks.
func (c *Connection) ChunksRead() uint64 { return c.stats.ChunksRead() }

// ChunksWritten returns the number of written chunks.
func (c *Connection) ChunksWritten() uint64 { return c.stats.ChunksWritten() }

// Connect dials endpointURL and runs the client handshake. cb receives nil
// once the connection is Handshaked, or the reason it is not. After a
// handshake failure the connection stays Established until Disconnect.
func (c *Connection) Connect(endpointURL string, cb func(error)) {
	c.post(func() {
		c.connect(context.Background(), endpointURL, cb)
	})
}

// Disconnect cancels the pending operation without reporting it, closes the
// socket and, on a later turn of the event loop, enters Closed, emits
// Closed with a nil error and calls cb. cb may be nil. A connect still
// waiting for its handshake receives ErrConnectionAborted.
func (c *Connection) Disconnect(cb func()) {
	c.post(func() {
		c.disconnect(cb)
	})
}

// Dispose closes the socket and aborts a dial without emitting events.
func (c *Connection) Dispose() {
	c.post(c.dispose)
}

// Dial is the blocking form of Connect. If ctx ends first the connection
// is disposed. A failed handshake disconnects the connection.
// Must not be called from an EventHandler.
func (c *Connection) Dial(ctx context.Context, endpointURL string) error {
	done := make(chan error, 1)
	c.post(func() {
		c.connect(ctx, endpointURL, func(err error) {
			done <- err
		})
	})

	select {
	case err := <-done:
		if err != nil && c.State() == StateEstablished {
			c.Disconnect(nil)
		}
		return err
	case <-ctx.Done():
		c.Dispose()
		return ctx.Err()
	}
}

// Close is the blocking form of Disconnect.
// Must not be called from an EventHandler.
func (c *Connection) Close() error {
	done := make(chan struct{})
	c.Disconnect(func() {
		close(done)
	})
	<-done
	return nil
}

// CreateChunk allocates an outbound chunk with its header written. The
// returned buffer must be passed to Write before the next CreateChunk.
func (c *Connection) CreateChunk(msgType wire.MessageType, chunkType wire.ChunkType, payloadLen int) ([]byte, error) {
	if c.State() != StateHandshaked {
		return nil, fmt.Errorf("%w: create chunk in state %s", ErrInvalidState, c.State())
	}
	return c.serializer.CreateChunk(msgType, chunkType, payloadLen)
}

// Write sends one chunk.
func (c *Connection) Write(chunk []byte) error {
	if c.State() != StateHandshaked {
		return fmt.Errorf("%w: write in state %s", ErrInvalidState, c.State())
	}
	return c.serializer.Write(chunk)
}

// WriteMessage sends payload as a single final chunk of msgType.
func (c *Connection) WriteMessage(msgType wire.MessageType, payload []byte) error {
	chunk, err := c.CreateChunk(msgType, wire.ChunkFinal, len(payload))
	if err != nil {
		return err
	}
	copy(chunk[wire.HeaderSize:], payload)
	return c.Write(chunk)
}

func (c *Connection) post(fn func()) {
	c.mb.post(fn)
}

// connect runs on the event loop.
func (c *Connection) connect(ctx context.Context, endpointURL string, cb func(error)) {
	st, ok := c.cur.(*closedState)
	if c.passive || !ok || st.dialing != nil {
		cb(fmt.Errorf("%w: connect in state %s", ErrInvalidState, c.cur.id()))
		return
	}
	ep, err := ParseEndpointURL(endpointURL)
	if err != nil {
		cb(err)
		return
	}

	dctx, cancel := context.WithTimeout(ctx, c.config.DialTimeout)
	att := &dialAttempt{endpoint: endpointURL, cancel: cancel, cb: cb}
	st.dialing = att

	c.logger.Debug("connecting",
		slog.String("endpoint", endpointURL),
		slog.String("binding", c.binding.Name()))

	go func() {
		sock, err := c.binding.Dial(dctx, ep)
		c.post(func() {
			c.onDialed(att, sock, err)
		})
	}()
}

func (c *Connection) onDialed(att *dialAttempt, sock Socket, err error) {
	att.cancel()

	st, ok := c.cur.(*closedState)
	if !ok || st.dialing != att {
		if sock != nil {
			_ = sock.Close()
		}
		att.cb(ErrConnectionAborted)
		return
	}
	st.dialing = nil

	if err != nil {
		c.logger.Info("connect failed",
			slog.String("endpoint", att.endpoint),
			slog.Any("error", err))
		att.cb(fmt.Errorf("connect to %s: %w", att.endpoint, err))
		return
	}
	c.establish(sock, att.endpoint, att.cb)
}

// establish attaches sock, enters Established and starts the handshake.
func (c *Connection) establish(sock Socket, endpointURL string, cb func(error)) {
	remote := addrString(sock.RemoteAddr())

	c.plog = nil
	c.serializer.SetLogger(nil, "")
	if c.config.ProtocolLogger != nil {
		c.plog = &connLogger{
			next:        c.config.ProtocolLogger,
			connID:      c.id,
			role:        c.role(),
			remoteAddr:  remote,
			endpointURL: endpointURL,
		}
		c.serializer.SetLogger(c.plog, c.id)
	}

	sub := c.attach(sock)
	c.serializer.Init(c.onChunk, c.socketWriter(sub, sock), c.initialChunkLimit())

	watch := &closeWatch{}
	timer := NewOperationTimer(c.post, watch)
	hs := newHandshake(c.passive, c.serializer.Write, handshakeConfig{
		protocolVersion:   c.config.ProtocolVersion,
		receiveBufferSize: c.config.ReceiveBufferSize,
		sendBufferSize:    c.config.SendBufferSize,
		limits:            c.config.Limits,
		timeout:           c.config.HandshakeTimeout,
		logger:            c.logger,
	})
	st := &establishedState{hs: hs, timer: timer, watch: watch, connectCb: cb}

	c.transition(st, "socket connected")
	c.logger.Info("connection established", slog.String("remote", remote))
	c.emit(Connected{RemoteAddr: remote})

	if err := hs.start(func(err error) {
		c.onHandshake(st, err)
	}, timer, endpointURL); err != nil {
		c.onHandshake(st, err)
	}
}

func (c *Connection) onHandshake(st *establishedState, err error) {
	if c.cur != st {
		return
	}
	cb := st.connectCb
	st.connectCb = nil

	if err != nil {
		c.logger.Info("handshake failed", slog.Any("error", err))
		c.logHandshake(Negotiation{}, err)
		if cb != nil {
			cb(err)
		}
		return
	}

	neg := st.hs.result()
	c.negotiated.Store(&neg)
	c.serializer.SetMaxChunkSize(chunkLimit(neg))

	c.transition(&handshakedState{}, "handshake complete")
	c.logger.Info("handshake complete",
		slog.Uint64("receive_buffer", uint64(neg.ReceiveBufferSize)),
		slog.Uint64("send_buffer", uint64(neg.SendBufferSize)),
		slog.Uint64("max_message", uint64(neg.MaxMessageSize)),
		slog.Uint64("max_chunks", uint64(neg.MaxChunkCount)))
	c.logHandshake(neg, nil)
	c.emit(HandshakeDone{Negotiation: neg})
	if cb != nil {
		cb(nil)
	}
}

func (c *Connection) disconnect(cb func()) {
	done := func() {
		if cb != nil {
			cb()
		}
	}

	if c.cur.id() == StateClosed {
		c.cur.shutdown()
		c.post(done)
		return
	}

	pending := c.takeConnectCb()
	c.cur.shutdown()
	c.detach()
	c.serializer.Release()

	c.post(func() {
		if c.cur.id() != StateClosed {
			c.transition(&closedState{}, "disconnect")
			c.logger.Info("connection closed")
			c.emit(Closed{})
		}
		if pending != nil {
			pending(ErrConnectionAborted)
		}
		done()
	})
}

func (c *Connection) dispose() {
	pending := c.takeConnectCb()
	c.cur.shutdown()
	c.detach()
	c.serializer.Release()
	if c.cur.id() != StateClosed {
		c.transition(&closedState{}, "disposed")
	}
	if pending != nil {
		c.post(func() {
			pending(ErrConnectionAborted)
		})
	}
}

// takeConnectCb detaches the connect callback of a handshake in flight.
// The handshake's own timer callback is dropped by shutdown.
func (c *Connection) takeConnectCb() func(error) {
	st, ok := c.cur.(*establishedState)
	if !ok {
		return nil
	}
	cb := st.connectCb
	st.connectCb = nil
	return cb
}

// enterClosed finishes an unrequested termination.
func (c *Connection) enterClosed(err error) {
	c.serializer.Release()
	c.transition(&closedState{}, "socket closed")
	c.logger.Info("connection closed", slog.Any("error", err))
	c.emit(Closed{Err: err})
}

// fail closes the connection because of err.
func (c *Connection) fail(err error) {
	c.logger.Error("closing connection", slog.Any("error", err))
	c.logError(err, false)
	c.terminate(err)
}

// terminate detaches the socket and lets the current state react.
func (c *Connection) terminate(err error) {
	c.detach()
	c.cur.onSocketEnd(c, err)
}

// attach takes ownership of sock and starts its reader.
func (c *Connection) attach(sock Socket) *subscription {
	sub := &subscription{}
	c.sock = sock
	c.sub = sub
	c.valid.Store(true)
	go c.readLoop(sub, sock)
	return sub
}

// detach drops the subscription before closing, so the reader's own close
// error is never dispatched.
func (c *Connection) detach() {
	c.sub = nil
	if c.sock != nil {
		_ = c.sock.Close()
		c.sock = nil
	}
	c.valid.Store(false)
}

// readLoop reads the next block only after the event loop consumed the
// previous one, so a busy connection stops draining its socket.
func (c *Connection) readLoop(sub *subscription, sock Socket) {
	buf := make([]byte, socketReadSize)
	consumed := make(chan struct{}, 1)
	for {
		n, err := sock.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			c.post(func() {
				c.onSocketData(sub, data)
				consumed <- struct{}{}
			})
			<-consumed
		}
		if err != nil {
			c.post(func() {
				c.onSocketEnd(sub, err)
			})
			return
		}
	}
}

func (c *Connection) socketWriter(sub *subscription, sock Socket) ChunkWriter {
	return func(chunk []byte) error {
		if _, err := sock.Write(chunk); err != nil {
			c.post(func() {
				c.onSocketEnd(sub, err)
			})
			return err
		}
		return nil
	}
}

func (c *Connection) onSocketData(sub *subscription, data []byte) {
	if sub != c.sub {
		return
	}
	if err := c.serializer.Read(data); err != nil && sub == c.sub {
		c.sendError(err)
		c.fail(err)
	}
}

func (c *Connection) onSocketEnd(sub *subscription, err error) {
	if sub != c.sub {
		return
	}
	class := ClassifySocketError(err)
	c.logger.Debug("socket ended", slog.String("class", class.String()), slog.Any("error", err))
	c.terminate(err)
}

func (c *Connection) onChunk(chunk []byte) {
	c.cur.onChunk(c, chunk)
}

// sendError reports an inbound framing error to the peer with ERR.
func (c *Connection) sendError(err error) {
	var se *wire.StatusError
	if !errors.As(err, &se) {
		return
	}
	chunk, perr := wire.PackMessage(wire.MessageError, &wire.ErrorMessage{
		StatusCode: se.Code,
		Reason:     se.Code.Description(),
	})
	if perr != nil {
		return
	}
	if werr := c.serializer.Write(chunk); werr != nil {
		c.logger.Debug("failed to send ERR", slog.Any("error", werr))
	}
}

func (c *Connection) transition(next connState, reason string) {
	old := c.cur.id()
	c.cur = next
	c.state.Store(int32(next.id()))
	if old == next.id() {
		return
	}

	c.logger.Debug("state change",
		slog.String("from", old.String()),
		slog.String("to", next.id().String()))
	c.logEvent(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: old.String(),
			NewState: next.id().String(),
			Reason:   reason,
		},
	})
}

func (c *Connection) emit(ev Event) {
	if c.config.Handler != nil {
		c.config.Handler(c, ev)
	}
}

func (c *Connection) role() log.Role {
	if c.passive {
		return log.RoleServer
	}
	return log.RoleClient
}

// initialChunkLimit bounds inbound chunks before negotiation.
func (c *Connection) initialChunkLimit() int {
	if c.passive {
		return int(max(c.config.Limits.MaxReceiveBufferSize, c.config.Limits.MaxSendBufferSize))
	}
	return int(max(c.config.ReceiveBufferSize, MinBufferSize))
}

// chunkLimit bounds inbound chunks after negotiation.
func chunkLimit(n Negotiation) int {
	return int(max(n.ReceiveBufferSize, n.SendBufferSize))
}

func (c *Connection) logEvent(ev log.Event) {
	if c.plog == nil {
		return
	}
	ev.Timestamp = time.Now()
	c.plog.Log(ev)
}

func (c *Connection) logHandshake(n Negotiation, err error) {
	if c.plog == nil {
		return
	}
	hs := &log.HandshakeEvent{Success: err == nil}
	if err == nil {
		hs.ProtocolVersion = n.ProtocolVersion
		hs.ReceiveBufferSize = n.ReceiveBufferSize
		hs.SendBufferSize = n.SendBufferSize
		hs.MaxMessageSize = n.MaxMessageSize
		hs.MaxChunkCount = n.MaxChunkCount
	} else {
		code := uint32(wire.StatusOf(err))
		hs.StatusCode = &code
		hs.Reason = err.Error()
	}
	c.logEvent(log.Event{
		Layer:     log.LayerHandshake,
		Category:  log.CategoryHandshake,
		Handshake: hs,
	})
}

func (c *Connection) logError(err error, brk bool) {
	if c.plog == nil {
		return
	}
	code := uint32(wire.StatusOf(err))
	c.logEvent(log.Event{
		Layer:    log.LayerSocket,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSocket,
			Message: err.Error(),
			Code:    &code,
			Context: ClassifySocketError(err).String(),
			Break:   brk,
		},
	})
}

// connLogger stamps connection identity onto protocol events.
type connLogger struct {
	next        log.Logger
	connID      string
	role        log.Role
	remoteAddr  string
	endpointURL string
}

func (l *connLogger) Log(ev log.Event) {
	if ev.ConnectionID == "" {
		ev.ConnectionID = l.connID
	}
	ev.LocalRole = l.role
	ev.RemoteAddr = l.remoteAddr
	ev.EndpointURL = l.endpointURL
	l.next.Log(ev)
}

func addrString(a interface{ String() string }) string {
	if a == nil {
		return ""
	}
	return a.String()
}
