package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketBinding carries chunks as binary WebSocket messages (ws://).
// Message boundaries carry no meaning; the receiver reassembles chunks
// from the concatenated payloads exactly as it does for TCP.
type WebSocketBinding struct {
	// HandshakeTimeout bounds the HTTP upgrade. 0 means 10s.
	HandshakeTimeout time.Duration
}

// Name implements Binding.
func (b *WebSocketBinding) Name() string {
	return "websocket"
}

func (b *WebSocketBinding) handshakeTimeout() time.Duration {
	if b.HandshakeTimeout > 0 {
		return b.HandshakeTimeout
	}
	return 10 * time.Second
}

// Dial implements Binding.
func (b *WebSocketBinding) Dial(ctx context.Context, ep Endpoint) (Socket, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: b.handshakeTimeout(),
		ReadBufferSize:   socketReadSize,
		WriteBufferSize:  socketReadSize,
	}
	path := ep.Address
	if path == "" {
		path = "/"
	}
	url := "ws://" + ep.HostPort() + path
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return newWSSocket(conn), nil
}

// Listen implements Binding. Upgrades are accepted on path only ("/" when
// empty).
func (b *WebSocketBinding) Listen(ctx context.Context, address, path string) (SocketListener, error) {
	if path == "" {
		path = "/"
	}
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	wl := &wsListener{
		addr:   l.Addr(),
		connCh: make(chan Socket),
		doneCh: make(chan struct{}),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: b.handshakeTimeout(),
			ReadBufferSize:   socketReadSize,
			WriteBufferSize:  socketReadSize,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, wl.handleUpgrade)
	wl.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: b.handshakeTimeout(),
	}
	go func() {
		if err := wl.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wl.closeOnce.Do(func() { close(wl.doneCh) })
		}
	}()
	return wl, nil
}

type wsListener struct {
	addr     net.Addr
	srv      *http.Server
	upgrader websocket.Upgrader

	connCh    chan Socket
	doneCh    chan struct{}
	closeOnce sync.Once
}

func (l *wsListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		return
	}
	sock := newWSSocket(conn)
	select {
	case l.connCh <- sock:
	case <-l.doneCh:
		_ = sock.Close()
	}
}

func (l *wsListener) Accept() (Socket, error) {
	select {
	case sock := <-l.connCh:
		return sock, nil
	case <-l.doneCh:
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Close() error {
	l.closeOnce.Do(func() { close(l.doneCh) })
	// Hijacked connections are not tracked by the server and stay open.
	return l.srv.Close()
}

func (l *wsListener) Addr() net.Addr {
	return l.addr
}

// wsSocket adapts a message-oriented WebSocket to a byte stream.
type wsSocket struct {
	conn *websocket.Conn

	readMu sync.Mutex
	cur    io.Reader

	writeMu sync.Mutex
}

func newWSSocket(conn *websocket.Conn) *wsSocket {
	return &wsSocket{conn: conn}
}

func (s *wsSocket) Read(p []byte) (int, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	for {
		if s.cur == nil {
			mt, r, err := s.conn.NextReader()
			if err != nil {
				return 0, err
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			s.cur = r
		}
		n, err := s.cur.Read(p)
		if errors.Is(err, io.EOF) {
			s.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsSocket) Write(p []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsSocket) Close() error {
	return s.conn.Close()
}

func (s *wsSocket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *wsSocket) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}
