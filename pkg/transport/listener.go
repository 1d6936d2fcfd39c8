package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/uacp-protocol/uacp-go/pkg/log"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

// DefaultMaxConnections is the default limit of concurrent passive connections.
const DefaultMaxConnections = 20

// DefaultPort is the registered port for opc.tcp endpoints.
const DefaultPort = 4840

// ListenerState is the lifecycle state of a Listener.
type ListenerState int

const (
	// ListenerClosed means no socket is bound.
	ListenerClosed ListenerState = iota

	// ListenerListening means sockets are being accepted.
	ListenerListening
)

// String returns the state name.
func (s ListenerState) String() string {
	switch s {
	case ListenerClosed:
		return "CLOSED"
	case ListenerListening:
		return "LISTENING"
	default:
		return "UNKNOWN"
	}
}

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	// Address to listen on (e.g., ":4840" or "127.0.0.1:0").
	Address string

	// Path is the HTTP path for WebSocket upgrades (default: "/").
	Path string

	// MaxConnections limits concurrent passive connections (default: 20).
	// Sockets beyond the limit receive ERR BadTcpServerTooBusy.
	MaxConnections int

	// Connection configures every accepted connection. Its Handler sees
	// all events of all accepted connections.
	Connection ConnectionConfig

	// OnAccept is called on the connection's event loop once an accepted
	// connection is Handshaked.
	OnAccept func(c *Connection)
}

// Listener accepts sockets and runs one passive Connection per socket.
type Listener struct {
	binding Binding
	config  ListenerConfig
	logger  *slog.Logger

	mu       sync.Mutex
	state    ListenerState
	sl       SocketListener
	stop     chan struct{}
	conns    map[*Connection]struct{}
	onAccept func(c *Connection)

	wg sync.WaitGroup
}

// NewListener creates a listener in state Closed.
func NewListener(binding Binding, config ListenerConfig) *Listener {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxConnections <= 0 {
		config.MaxConnections = DefaultMaxConnections
	}
	config.Connection = config.Connection.withDefaults()

	return &Listener{
		binding:  binding,
		config:   config,
		logger:   config.Connection.Logger.With(slog.String("binding", binding.Name())),
		conns:    make(map[*Connection]struct{}),
		onAccept: config.OnAccept,
	}
}

// Listen binds the address and starts accepting.
func (l *Listener) Listen(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != ListenerClosed {
		return fmt.Errorf("%w: listen in state %s", ErrInvalidState, l.state)
	}

	sl, err := l.binding.Listen(ctx, l.config.Address, l.config.Path)
	if err != nil {
		return err
	}
	l.sl = sl
	l.stop = make(chan struct{})
	l.setState(ListenerListening, "listen")
	l.logger.Info("listening", slog.String("addr", sl.Addr().String()))

	l.wg.Add(1)
	go l.acceptLoop(sl, l.stop)
	return nil
}

// Close stops accepting. Connections already accepted stay open.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.state != ListenerListening {
		l.mu.Unlock()
		return nil
	}
	sl := l.sl
	l.sl = nil
	close(l.stop)
	l.setState(ListenerClosed, "close")
	l.mu.Unlock()

	err := sl.Close()
	l.wg.Wait()
	l.logger.Info("listener closed")
	return err
}

// State returns the listener state.
func (l *Listener) State() ListenerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsListening returns true while sockets are accepted.
func (l *Listener) IsListening() bool {
	return l.State() == ListenerListening
}

// SetAcceptHandler replaces OnAccept.
func (l *Listener) SetAcceptHandler(fn func(c *Connection)) {
	l.mu.Lock()
	l.onAccept = fn
	l.mu.Unlock()
}

// Addr returns the bound address, or nil when closed.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sl == nil {
		return nil
	}
	return l.sl.Addr()
}

// ConnectionCount returns the number of open passive connections.
func (l *Listener) ConnectionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}

// Connections returns a snapshot of the open passive connections.
func (l *Listener) Connections() []*Connection {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Connection, 0, len(l.conns))
	for c := range l.conns {
		out = append(out, c)
	}
	return out
}

func (l *Listener) acceptLoop(sl SocketListener, stop <-chan struct{}) {
	defer l.wg.Done()

	// Accept errors such as EMFILE persist until a socket is released.
	retry := &backoff.Backoff{
		Factor: 2,
		Jitter: true,
		Min:    5 * time.Millisecond,
		Max:    time.Second,
	}
	for {
		sock, err := sl.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || !l.IsListening() {
				return
			}
			delay := retry.Duration()
			l.logger.Error("accept failed",
				slog.Any("error", err),
				slog.Duration("retry_in", delay))
			select {
			case <-stop:
				return
			case <-time.After(delay):
			}
			continue
		}
		retry.Reset()
		l.handleSocket(sock)
	}
}

func (l *Listener) handleSocket(sock Socket) {
	l.mu.Lock()
	if len(l.conns) >= l.config.MaxConnections {
		l.mu.Unlock()
		l.rejectBusy(sock)
		return
	}

	cfg := l.config.Connection
	cfg.Handler = l.handleEvent
	c := newPassiveConnection(cfg)
	l.conns[c] = struct{}{}
	l.mu.Unlock()

	l.logger.Debug("socket accepted",
		slog.String("conn_id", c.ID()),
		slog.String("remote", addrString(sock.RemoteAddr())))

	c.accept(sock, func(err error) {
		if err != nil {
			// ERR has been written by the handshake; drop the socket.
			c.Disconnect(nil)
			return
		}
		l.mu.Lock()
		fn := l.onAccept
		l.mu.Unlock()
		if fn != nil {
			fn(c)
		}
	})
}

// handleEvent tracks passive connections and forwards their events.
func (l *Listener) handleEvent(c *Connection, ev Event) {
	if _, ok := ev.(Closed); ok {
		l.mu.Lock()
		delete(l.conns, c)
		l.mu.Unlock()
	}
	if h := l.config.Connection.Handler; h != nil {
		h(c, ev)
	}
}

// rejectBusy answers a socket over the connection limit.
func (l *Listener) rejectBusy(sock Socket) {
	l.logger.Warn("too many connections, rejecting socket",
		slog.String("remote", addrString(sock.RemoteAddr())),
		slog.Int("max", l.config.MaxConnections))

	chunk, err := wire.PackMessage(wire.MessageError, &wire.ErrorMessage{
		StatusCode: wire.StatusBadTcpServerTooBusy,
		Reason:     wire.StatusBadTcpServerTooBusy.Description(),
	})
	if err == nil {
		_, _ = sock.Write(chunk)
	}
	_ = sock.Close()
}

// setState must be called with l.mu held.
func (l *Listener) setState(next ListenerState, reason string) {
	old := l.state
	l.state = next
	if l.config.Connection.ProtocolLogger == nil {
		return
	}
	l.config.Connection.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerTransport,
		Category:  log.CategoryState,
		LocalRole: log.RoleServer,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityListener,
			OldState: old.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
}
